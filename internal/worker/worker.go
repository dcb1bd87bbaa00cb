package worker

import (
	"context"
	"encoding/json"
	"log"

	"rentalhub/internal/broker"
	"rentalhub/internal/models"
	"rentalhub/internal/store"
	"rentalhub/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AuditWorker consumes workflow events and appends them to the
// workflow_events audit trail. Consumption is idempotent: a replayed
// event id is skipped.
type AuditWorker struct {
	consumer *broker.Consumer
	store    *store.Store
	logger   *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, st *store.Store) *AuditWorker {
	return &AuditWorker{
		consumer: consumer,
		store:    st,
		logger:   util.GetLogger(),
	}
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting audit worker...")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping audit worker...")
	return w.consumer.Close()
}

func (w *AuditWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var probe struct {
		models.BaseEvent
		PaymentID  int64 `json:"payment_id"`
		BookingID  int64 `json:"booking_id"`
		SupplierID int64 `json:"supplier_id"`
	}
	if err := json.Unmarshal(msg.Value, &probe); err != nil {
		w.logger.Error("Failed to unmarshal workflow event", zap.Error(err))
		// Poison message; commit past it.
		return nil
	}

	recorded, err := w.store.IsEventRecorded(ctx, probe.EventID)
	if err != nil {
		return err
	}
	if recorded {
		w.logger.Debug("Event already recorded", zap.String("event_id", probe.EventID))
		return nil
	}

	entity, entityID := classify(probe.EventType, probe.PaymentID, probe.BookingID, probe.SupplierID)

	return w.store.RecordWorkflowEvent(ctx, &models.WorkflowEvent{
		EventID:   probe.EventID,
		EventType: probe.EventType,
		Entity:    entity,
		EntityID:  entityID,
		Payload:   msg.Value,
	})
}

func classify(eventType string, paymentID, bookingID, supplierID int64) (string, int64) {
	switch eventType {
	case models.EventTypeOrderPaymentCreated,
		models.EventTypeOrderPaymentApproved,
		models.EventTypeOrderPaymentRejected,
		models.EventTypeItemsReserved:
		return "order_payment", paymentID
	case models.EventTypeServiceBooked,
		models.EventTypeBookingStatusChanged,
		models.EventTypeBookingConfirmed,
		models.EventTypeQuotationSubmitted,
		models.EventTypeMaterialsReleased:
		return "booking", bookingID
	case models.EventTypeProcurementRequested,
		models.EventTypeTendersApproved,
		models.EventTypeSupplierPaymentCreated,
		models.EventTypeSupplierPaymentDone:
		return "supplier", supplierID
	default:
		return "unknown", 0
	}
}
