package models

// Each workflow entity carries its lifecycle as a typed status string.
// Legal transitions live in one table per entity; services call
// CanTransition before issuing the guarded UPDATE so illegal moves are
// rejected centrally instead of being re-derived in every handler.

// OrderPaymentStatus lifecycle: pending -> approved | rejected.
type OrderPaymentStatus string

const (
	OrderPaymentPending  OrderPaymentStatus = "pending"
	OrderPaymentApproved OrderPaymentStatus = "approved"
	OrderPaymentRejected OrderPaymentStatus = "rejected"
)

var orderPaymentTransitions = map[OrderPaymentStatus][]OrderPaymentStatus{
	OrderPaymentPending: {OrderPaymentApproved, OrderPaymentRejected},
}

// CanTransition reports whether moving to next is a legal transition.
func (s OrderPaymentStatus) CanTransition(next OrderPaymentStatus) bool {
	return contains(orderPaymentTransitions[s], next)
}

// EventBookingStatus lifecycle: reserved -> confirmed.
type EventBookingStatus string

const (
	EventBookingReserved  EventBookingStatus = "reserved"
	EventBookingConfirmed EventBookingStatus = "confirmed"
)

var eventBookingTransitions = map[EventBookingStatus][]EventBookingStatus{
	EventBookingReserved: {EventBookingConfirmed},
}

func (s EventBookingStatus) CanTransition(next EventBookingStatus) bool {
	return contains(eventBookingTransitions[s], next)
}

// ServiceBookingStatus lifecycle is strictly ordered, no skipping:
// pending -> approved -> assigned -> completed -> confirmed.
type ServiceBookingStatus string

const (
	ServiceBookingPending   ServiceBookingStatus = "pending"
	ServiceBookingApproved  ServiceBookingStatus = "approved"
	ServiceBookingAssigned  ServiceBookingStatus = "assigned"
	ServiceBookingCompleted ServiceBookingStatus = "completed"
	ServiceBookingConfirmed ServiceBookingStatus = "confirmed"
)

var serviceBookingTransitions = map[ServiceBookingStatus][]ServiceBookingStatus{
	ServiceBookingPending:   {ServiceBookingApproved},
	ServiceBookingApproved:  {ServiceBookingAssigned},
	ServiceBookingAssigned:  {ServiceBookingCompleted},
	ServiceBookingCompleted: {ServiceBookingConfirmed},
}

func (s ServiceBookingStatus) CanTransition(next ServiceBookingStatus) bool {
	return contains(serviceBookingTransitions[s], next)
}

// ServicePaymentStatus lifecycle: pending -> approved -> released.
type ServicePaymentStatus string

const (
	ServicePaymentPending  ServicePaymentStatus = "pending"
	ServicePaymentApproved ServicePaymentStatus = "approved"
	ServicePaymentReleased ServicePaymentStatus = "released"
)

var servicePaymentTransitions = map[ServicePaymentStatus][]ServicePaymentStatus{
	ServicePaymentPending:  {ServicePaymentApproved},
	ServicePaymentApproved: {ServicePaymentReleased},
}

func (s ServicePaymentStatus) CanTransition(next ServicePaymentStatus) bool {
	return contains(servicePaymentTransitions[s], next)
}

// ProcurementStatus lifecycle: pending -> approved -> paid.
type ProcurementStatus string

const (
	ProcurementPending  ProcurementStatus = "pending"
	ProcurementApproved ProcurementStatus = "approved"
	ProcurementPaid     ProcurementStatus = "paid"
)

var procurementTransitions = map[ProcurementStatus][]ProcurementStatus{
	ProcurementPending:  {ProcurementApproved},
	ProcurementApproved: {ProcurementPaid},
}

func (s ProcurementStatus) CanTransition(next ProcurementStatus) bool {
	return contains(procurementTransitions[s], next)
}

// SupplierPaymentStatus lifecycle: pending -> approved.
type SupplierPaymentStatus string

const (
	SupplierPaymentPending  SupplierPaymentStatus = "pending"
	SupplierPaymentApproved SupplierPaymentStatus = "approved"
)

var supplierPaymentTransitions = map[SupplierPaymentStatus][]SupplierPaymentStatus{
	SupplierPaymentPending: {SupplierPaymentApproved},
}

func (s SupplierPaymentStatus) CanTransition(next SupplierPaymentStatus) bool {
	return contains(supplierPaymentTransitions[s], next)
}

// FeedbackStatus lifecycle: pending -> resolved.
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackResolved FeedbackStatus = "resolved"
)

var feedbackTransitions = map[FeedbackStatus][]FeedbackStatus{
	FeedbackPending: {FeedbackResolved},
}

func (s FeedbackStatus) CanTransition(next FeedbackStatus) bool {
	return contains(feedbackTransitions[s], next)
}

func contains[T comparable](xs []T, want T) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
