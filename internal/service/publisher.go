package service

import (
	"context"

	"rentalhub/internal/models"
)

// EventPublisher is the broker surface the services publish through.
// *broker.EventPublisher satisfies it.
type EventPublisher interface {
	PublishOrderPayment(ctx context.Context, event *models.OrderPaymentEvent) error
	PublishItemsReserved(ctx context.Context, event *models.ItemsReservedEvent) error
	PublishBooking(ctx context.Context, event *models.BookingEvent) error
	PublishQuotation(ctx context.Context, event *models.QuotationEvent) error
	PublishRelease(ctx context.Context, event *models.ReleaseEvent) error
	PublishProcurement(ctx context.Context, event *models.ProcurementEvent) error
}
