package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderPaymentTransitions(t *testing.T) {
	assert.True(t, OrderPaymentPending.CanTransition(OrderPaymentApproved))
	assert.True(t, OrderPaymentPending.CanTransition(OrderPaymentRejected))

	// approved and rejected are terminal
	assert.False(t, OrderPaymentApproved.CanTransition(OrderPaymentPending))
	assert.False(t, OrderPaymentApproved.CanTransition(OrderPaymentRejected))
	assert.False(t, OrderPaymentRejected.CanTransition(OrderPaymentApproved))
}

func TestServiceBookingTransitionsAreStrictlyOrdered(t *testing.T) {
	order := []ServiceBookingStatus{
		ServiceBookingPending,
		ServiceBookingApproved,
		ServiceBookingAssigned,
		ServiceBookingCompleted,
		ServiceBookingConfirmed,
	}

	for i, from := range order {
		for j, to := range order {
			got := from.CanTransition(to)
			want := j == i+1
			assert.Equal(t, want, got, "%s -> %s", from, to)
		}
	}
}

func TestServicePaymentTransitions(t *testing.T) {
	assert.True(t, ServicePaymentPending.CanTransition(ServicePaymentApproved))
	assert.True(t, ServicePaymentApproved.CanTransition(ServicePaymentReleased))

	// no skipping straight to released
	assert.False(t, ServicePaymentPending.CanTransition(ServicePaymentReleased))
	assert.False(t, ServicePaymentReleased.CanTransition(ServicePaymentApproved))
}

func TestProcurementTransitions(t *testing.T) {
	assert.True(t, ProcurementPending.CanTransition(ProcurementApproved))
	assert.True(t, ProcurementApproved.CanTransition(ProcurementPaid))

	assert.False(t, ProcurementPending.CanTransition(ProcurementPaid))
	assert.False(t, ProcurementPaid.CanTransition(ProcurementPending))
}

func TestSingleStepLifecycles(t *testing.T) {
	assert.True(t, EventBookingReserved.CanTransition(EventBookingConfirmed))
	assert.False(t, EventBookingConfirmed.CanTransition(EventBookingReserved))

	assert.True(t, SupplierPaymentPending.CanTransition(SupplierPaymentApproved))
	assert.False(t, SupplierPaymentApproved.CanTransition(SupplierPaymentPending))

	assert.True(t, FeedbackPending.CanTransition(FeedbackResolved))
	assert.False(t, FeedbackResolved.CanTransition(FeedbackPending))
}

func TestUnknownStatusHasNoTransitions(t *testing.T) {
	assert.False(t, OrderPaymentStatus("bogus").CanTransition(OrderPaymentApproved))
	assert.False(t, ServiceBookingStatus("").CanTransition(ServiceBookingApproved))
}
