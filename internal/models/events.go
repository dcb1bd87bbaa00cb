package models

import "time"

// Event types published on the workflow topic
const (
	EventTypeOrderPaymentCreated    = "ORDER_PAYMENT_CREATED"
	EventTypeOrderPaymentApproved   = "ORDER_PAYMENT_APPROVED"
	EventTypeOrderPaymentRejected   = "ORDER_PAYMENT_REJECTED"
	EventTypeItemsReserved          = "ITEMS_RESERVED"
	EventTypeBookingConfirmed       = "BOOKING_CONFIRMED"
	EventTypeServiceBooked          = "SERVICE_BOOKED"
	EventTypeBookingStatusChanged   = "BOOKING_STATUS_CHANGED"
	EventTypeQuotationSubmitted     = "QUOTATION_SUBMITTED"
	EventTypeMaterialsReleased      = "MATERIALS_RELEASED"
	EventTypeProcurementRequested   = "PROCUREMENT_REQUESTED"
	EventTypeTendersApproved        = "TENDERS_APPROVED"
	EventTypeSupplierPaymentCreated = "SUPPLIER_PAYMENT_CREATED"
	EventTypeSupplierPaymentDone    = "SUPPLIER_PAYMENT_CONFIRMED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPaymentEvent covers the order payment lifecycle
// (created, approved, rejected).
type OrderPaymentEvent struct {
	BaseEvent
	PaymentID   int64           `json:"payment_id"`
	CustomerID  int64           `json:"customer_id"`
	TotalAmount int64           `json:"total_amount"`
	Items       []OrderItemData `json:"items,omitempty"`
}

// ItemsReservedEvent published when the event manager turns an approved
// payment into event bookings.
type ItemsReservedEvent struct {
	BaseEvent
	PaymentID  int64   `json:"payment_id"`
	CustomerID int64   `json:"customer_id"`
	BookingIDs []int64 `json:"booking_ids"`
}

// BookingEvent covers service booking transitions.
type BookingEvent struct {
	BaseEvent
	BookingID  int64  `json:"booking_id"`
	CustomerID int64  `json:"customer_id"`
	Status     string `json:"status"`
}

// QuotationEvent published when a dealer submits a quotation.
type QuotationEvent struct {
	BaseEvent
	BookingID int64 `json:"booking_id"`
	DealerID  int64 `json:"dealer_id"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"item_count"`
}

// ReleaseEvent published when a storekeeper hands over materials.
type ReleaseEvent struct {
	BaseEvent
	BookingID        int64 `json:"booking_id"`
	ServicePaymentID int64 `json:"service_payment_id"`
	ItemCount        int   `json:"item_count"`
}

// ProcurementEvent covers the supplier procurement lifecycle.
type ProcurementEvent struct {
	BaseEvent
	SupplierID int64   `json:"supplier_id"`
	ItemIDs    []int64 `json:"item_ids"`
	Amount     int64   `json:"amount,omitempty"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}
