package worker

import (
	"testing"

	"rentalhub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		eventType  string
		wantEntity string
		wantID     int64
	}{
		{models.EventTypeOrderPaymentCreated, "order_payment", 11},
		{models.EventTypeOrderPaymentRejected, "order_payment", 11},
		{models.EventTypeItemsReserved, "order_payment", 11},
		{models.EventTypeServiceBooked, "booking", 22},
		{models.EventTypeQuotationSubmitted, "booking", 22},
		{models.EventTypeMaterialsReleased, "booking", 22},
		{models.EventTypeTendersApproved, "supplier", 33},
		{models.EventTypeSupplierPaymentDone, "supplier", 33},
		{"SOMETHING_ELSE", "unknown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			entity, id := classify(tt.eventType, 11, 22, 33)
			assert.Equal(t, tt.wantEntity, entity)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
