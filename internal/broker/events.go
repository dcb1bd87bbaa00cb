package broker

import (
	"context"
	"fmt"

	"rentalhub/internal/models"
)

// EventPublisher publishes workflow domain events. Publishing is
// best-effort: the state transition has already committed, so a failed
// publish is logged by the caller and never rolls anything back.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPayment publishes an order payment lifecycle event.
func (ep *EventPublisher) PublishOrderPayment(ctx context.Context, event *models.OrderPaymentEvent) error {
	key := fmt.Sprintf("payment-%d", event.PaymentID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishItemsReserved publishes the event-manager reservation event.
func (ep *EventPublisher) PublishItemsReserved(ctx context.Context, event *models.ItemsReservedEvent) error {
	key := fmt.Sprintf("payment-%d", event.PaymentID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishBooking publishes a service booking transition event.
func (ep *EventPublisher) PublishBooking(ctx context.Context, event *models.BookingEvent) error {
	key := fmt.Sprintf("booking-%d", event.BookingID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishQuotation publishes a dealer quotation event.
func (ep *EventPublisher) PublishQuotation(ctx context.Context, event *models.QuotationEvent) error {
	key := fmt.Sprintf("booking-%d", event.BookingID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishRelease publishes a material release event.
func (ep *EventPublisher) PublishRelease(ctx context.Context, event *models.ReleaseEvent) error {
	key := fmt.Sprintf("booking-%d", event.BookingID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishProcurement publishes a supplier procurement event.
func (ep *EventPublisher) PublishProcurement(ctx context.Context, event *models.ProcurementEvent) error {
	key := fmt.Sprintf("supplier-%d", event.SupplierID)
	return ep.producer.PublishEvent(ctx, key, event)
}
