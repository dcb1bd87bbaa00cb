package models

import (
	"encoding/json"
	"time"
)

// Customer is a registered mobile-client user.
type Customer struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Staff roles
const (
	RoleFinance        = "finance"
	RoleEventManager   = "event_manager"
	RoleServiceManager = "service_manager"
	RoleDealer         = "dealer"
	RoleStorekeeper    = "storekeeper"
	RoleSupplier       = "supplier"
	RoleCustomer       = "customer"
)

// Staff is a platform employee. The role column scopes which
// endpoints a staff token may call.
type Staff struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Role         string    `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Product is a rentable item. Quantity is the number of units
// currently available and never goes negative.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Quantity    int       `db:"quantity" json:"quantity"`
	RentalPrice int64     `db:"rental_price" json:"rental_price"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CartItem is a (customer, product) pair; unique per customer+product.
type CartItem struct {
	ID         int64     `db:"id" json:"id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	ProductID  int64     `db:"product_id" json:"product_id"`
	Quantity   int       `db:"quantity" json:"quantity"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CartLine is a cart item joined with its product for listing.
type CartLine struct {
	CartItem
	ProductName string `db:"product_name" json:"product_name"`
	UnitPrice   int64  `db:"unit_price" json:"unit_price"`
	LineTotal   int64  `db:"line_total" json:"line_total"`
}

// OrderPayment is a customer's product checkout.
type OrderPayment struct {
	ID            int64              `db:"id" json:"id"`
	CustomerID    int64              `db:"customer_id" json:"customer_id"`
	TotalAmount   int64              `db:"total_amount" json:"total_amount"`
	Method        string             `db:"method" json:"method"`
	ReferenceCode string             `db:"reference_code" json:"reference_code"`
	Status        OrderPaymentStatus `db:"status" json:"status"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line of an order payment; immutable once created.
type OrderItem struct {
	ID        int64 `db:"id" json:"id"`
	PaymentID int64 `db:"payment_id" json:"payment_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
	UnitPrice int64 `db:"unit_price" json:"unit_price"`
}

// EventBooking is derived from an approved order payment, one row
// per (customer, product) pair of the payment.
type EventBooking struct {
	ID         int64              `db:"id" json:"id"`
	PaymentID  int64              `db:"payment_id" json:"payment_id"`
	CustomerID int64              `db:"customer_id" json:"customer_id"`
	ProductID  int64              `db:"product_id" json:"product_id"`
	Status     EventBookingStatus `db:"status" json:"status"`
	CreatedAt  time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `db:"updated_at" json:"updated_at"`
}

// Service is static reference data for bookable services.
type Service struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Fee        int64  `db:"fee" json:"fee"`
	BookingFee int64  `db:"booking_fee" json:"booking_fee"`
}

// ServiceBooking is a customer's reservation of a service for an event.
type ServiceBooking struct {
	ID            int64                `db:"id" json:"id"`
	CustomerID    int64                `db:"customer_id" json:"customer_id"`
	ServiceID     int64                `db:"service_id" json:"service_id"`
	EventDate     time.Time            `db:"event_date" json:"event_date"`
	PeopleCount   int                  `db:"people_count" json:"people_count"`
	BookingFee    int64                `db:"booking_fee" json:"booking_fee"`
	Method        string               `db:"method" json:"method"`
	ReferenceCode string               `db:"reference_code" json:"reference_code"`
	Status        ServiceBookingStatus `db:"status" json:"status"`
	CreatedAt     time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at" json:"updated_at"`
}

// DealerAssignment links exactly one dealer to a service booking.
type DealerAssignment struct {
	ID        int64     `db:"id" json:"id"`
	BookingID int64     `db:"booking_id" json:"booking_id"`
	DealerID  int64     `db:"dealer_id" json:"dealer_id"`
	ServiceID int64     `db:"service_id" json:"service_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StoreItem is warehouse material stock.
type StoreItem struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Quantity  int    `db:"quantity" json:"quantity"`
	UnitPrice int64  `db:"unit_price" json:"unit_price"`
}

// QuotationItem is one dealer-selected material for a service booking.
type QuotationItem struct {
	ID          int64 `db:"id" json:"id"`
	BookingID   int64 `db:"booking_id" json:"booking_id"`
	StoreItemID int64 `db:"store_item_id" json:"store_item_id"`
	Quantity    int   `db:"quantity" json:"quantity"`
	Cost        int64 `db:"cost" json:"cost"`
}

// ServicePayment is the customer's quotation payment, 1:1 with a booking.
type ServicePayment struct {
	ID            int64                `db:"id" json:"id"`
	BookingID     int64                `db:"booking_id" json:"booking_id"`
	CustomerID    int64                `db:"customer_id" json:"customer_id"`
	Amount        int64                `db:"amount" json:"amount"`
	Method        string               `db:"method" json:"method"`
	ReferenceCode string               `db:"reference_code" json:"reference_code"`
	Status        ServicePaymentStatus `db:"status" json:"status"`
	CreatedAt     time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at" json:"updated_at"`
}

// ProcurementItem is a storekeeper's material request to a supplier
// (a "tender" while pending).
type ProcurementItem struct {
	ID            int64             `db:"id" json:"id"`
	StorekeeperID int64             `db:"storekeeper_id" json:"storekeeper_id"`
	SupplierID    int64             `db:"supplier_id" json:"supplier_id"`
	StoreItemID   int64             `db:"store_item_id" json:"store_item_id"`
	Quantity      int               `db:"quantity" json:"quantity"`
	TotalCost     int64             `db:"total_cost" json:"total_cost"`
	Status        ProcurementStatus `db:"status" json:"status"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// SupplierPayment settles one procurement item.
type SupplierPayment struct {
	ID                int64                 `db:"id" json:"id"`
	ProcurementItemID int64                 `db:"procurement_item_id" json:"procurement_item_id"`
	SupplierID        int64                 `db:"supplier_id" json:"supplier_id"`
	Amount            int64                 `db:"amount" json:"amount"`
	Method            string                `db:"method" json:"method"`
	ReferenceCode     string                `db:"reference_code" json:"reference_code"`
	Status            SupplierPaymentStatus `db:"status" json:"status"`
	CreatedAt         time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time             `db:"updated_at" json:"updated_at"`
}

// Feedback is a customer message to a specific staff member,
// resolved by at most one staff reply.
type Feedback struct {
	ID         int64          `db:"id" json:"id"`
	CustomerID int64          `db:"customer_id" json:"customer_id"`
	StaffRole  string         `db:"staff_role" json:"staff_role"`
	StaffID    int64          `db:"staff_id" json:"staff_id"`
	Message    string         `db:"message" json:"message"`
	Reply      *string        `db:"reply" json:"reply,omitempty"`
	RepliedBy  *int64         `db:"replied_by" json:"replied_by,omitempty"`
	Status     FeedbackStatus `db:"status" json:"status"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// WorkflowEvent is the audit-trail row written by the event worker.
// The event_id primary key doubles as the consumer idempotency guard.
type WorkflowEvent struct {
	EventID     string          `db:"event_id" json:"event_id"`
	EventType   string          `db:"event_type" json:"event_type"`
	Entity      string          `db:"entity" json:"entity"`
	EntityID    int64           `db:"entity_id" json:"entity_id"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	ProcessedAt time.Time       `db:"processed_at" json:"processed_at"`
}
