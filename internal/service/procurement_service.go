package service

import (
	"context"
	"errors"

	"rentalhub/internal/models"
	"rentalhub/internal/store"
	"rentalhub/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ProcurementService runs the supplier workflow: storekeeper material
// requests, supplier tender approval, finance settlement and the
// supplier's payment confirmation.
type ProcurementService struct {
	store          *store.Store
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewProcurementService creates a new procurement service
func NewProcurementService(st *store.Store, eventPublisher EventPublisher) *ProcurementService {
	return &ProcurementService{
		store:          st,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// RequestItemLine is one material line in a storekeeper request.
type RequestItemLine struct {
	StoreItemID int64 `json:"store_item_id" binding:"required"`
	Quantity    int   `json:"quantity" binding:"required,min=1"`
}

// RequestItems records the storekeeper's material request to one
// supplier, one pending procurement item per line, in one transaction.
func (s *ProcurementService) RequestItems(ctx context.Context, storekeeperID, supplierID int64, lines []RequestItemLine) ([]models.ProcurementItem, error) {
	ctx, span := util.StartSpan(ctx, "ProcurementService.RequestItems")
	defer span.End()

	if len(lines) == 0 {
		return nil, validationf("request must contain at least one item")
	}

	exists, err := s.store.StaffExists(ctx, supplierID, models.RoleSupplier)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, validationf("supplier %d does not exist", supplierID)
	}

	ids := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.StoreItemID
	}
	storeItems, err := s.store.GetStoreItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	priceByID := make(map[int64]int64, len(storeItems))
	for _, si := range storeItems {
		priceByID[si.ID] = si.UnitPrice
	}

	items := make([]models.ProcurementItem, 0, len(lines))
	for _, line := range lines {
		price, ok := priceByID[line.StoreItemID]
		if !ok {
			return nil, validationf("store item %d does not exist", line.StoreItemID)
		}
		items = append(items, models.ProcurementItem{
			StorekeeperID: storekeeperID,
			SupplierID:    supplierID,
			StoreItemID:   line.StoreItemID,
			Quantity:      line.Quantity,
			TotalCost:     price * int64(line.Quantity),
			Status:        models.ProcurementPending,
		})
	}

	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i := range items {
			if err := s.store.CreateProcurementItemTx(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Procurement requested",
		zap.Int64("storekeeper_id", storekeeperID),
		zap.Int64("supplier_id", supplierID),
		zap.Int("items", len(items)))

	itemIDs := make([]int64, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}
	event := &models.ProcurementEvent{
		BaseEvent:  newBaseEvent(models.EventTypeProcurementRequested),
		SupplierID: supplierID,
		ItemIDs:    itemIDs,
	}
	if err := s.eventPublisher.PublishProcurement(ctx, event); err != nil {
		s.logger.Error("Failed to publish procurement event", zap.Error(err))
	}

	return items, nil
}

// ListTenders lists a supplier's procurement items pending approval.
func (s *ProcurementService) ListTenders(ctx context.Context, supplierID int64) ([]models.ProcurementItem, error) {
	return s.store.GetProcurementItemsBySupplier(ctx, supplierID, models.ProcurementPending)
}

// ApproveTenders bulk-approves the supplier's own pending items among
// the given ids and returns the count affected. Zero matches is a no-op.
func (s *ProcurementService) ApproveTenders(ctx context.Context, supplierID int64, ids []int64) (int64, error) {
	ctx, span := util.StartSpan(ctx, "ProcurementService.ApproveTenders")
	defer span.End()

	count, err := s.store.ApproveTenders(ctx, supplierID, ids)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		util.TendersApprovedTotal.Add(float64(count))
		s.logger.Info("Tenders approved",
			zap.Int64("supplier_id", supplierID),
			zap.Int64("count", count))

		event := &models.ProcurementEvent{
			BaseEvent:  newBaseEvent(models.EventTypeTendersApproved),
			SupplierID: supplierID,
			ItemIDs:    ids,
		}
		if err := s.eventPublisher.PublishProcurement(ctx, event); err != nil {
			s.logger.Error("Failed to publish tender approval event", zap.Error(err))
		}
	}

	return count, nil
}

// PaySupplierRequest is finance's settlement of one procurement item.
type PaySupplierRequest struct {
	ProcurementItemID int64  `json:"procurement_item_id" binding:"required"`
	Method            string `json:"method" binding:"required"`
	ReferenceCode     string `json:"reference_code" binding:"required"`
}

// PaySupplier creates the pending supplier payment for a
// supplier-approved procurement item.
func (s *ProcurementService) PaySupplier(ctx context.Context, req *PaySupplierRequest) (*models.SupplierPayment, error) {
	ctx, span := util.StartSpan(ctx, "ProcurementService.PaySupplier")
	defer span.End()

	if err := ValidateReference(req.Method, req.ReferenceCode); err != nil {
		return nil, err
	}

	item, err := s.store.GetProcurementItemByID(ctx, req.ProcurementItemID)
	if err != nil {
		return nil, err
	}
	if item.Status != models.ProcurementApproved {
		return nil, validationf("procurement item %d is not approved", item.ID)
	}

	payment := &models.SupplierPayment{
		ProcurementItemID: item.ID,
		SupplierID:        item.SupplierID,
		Amount:            item.TotalCost,
		Method:            req.Method,
		ReferenceCode:     req.ReferenceCode,
		Status:            models.SupplierPaymentPending,
	}
	if err := s.store.CreateSupplierPayment(ctx, payment); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	s.logger.Info("Supplier payment created",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("procurement_item_id", item.ID),
		zap.Int64("amount", payment.Amount))

	event := &models.ProcurementEvent{
		BaseEvent:  newBaseEvent(models.EventTypeSupplierPaymentCreated),
		SupplierID: item.SupplierID,
		ItemIDs:    []int64{item.ID},
		Amount:     payment.Amount,
	}
	if err := s.eventPublisher.PublishProcurement(ctx, event); err != nil {
		s.logger.Error("Failed to publish supplier payment event", zap.Error(err))
	}

	return payment, nil
}

// ConfirmPayment is the supplier's acknowledgement: the payment flips
// pending -> approved and its procurement item approved -> paid, in one
// transaction scoped to the supplier.
func (s *ProcurementService) ConfirmPayment(ctx context.Context, supplierID, paymentID int64) error {
	ctx, span := util.StartSpan(ctx, "ProcurementService.ConfirmPayment")
	defer span.End()

	payment, err := s.store.GetSupplierPaymentByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.SupplierID != supplierID {
		return store.ErrNotFound
	}

	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.ConfirmSupplierPaymentTx(ctx, tx, paymentID, supplierID); err != nil {
			return err
		}
		return s.store.TransitionProcurementItemTx(ctx, tx, payment.ProcurementItemID,
			models.ProcurementApproved, models.ProcurementPaid)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Supplier payment confirmed",
		zap.Int64("payment_id", paymentID),
		zap.Int64("supplier_id", supplierID))

	event := &models.ProcurementEvent{
		BaseEvent:  newBaseEvent(models.EventTypeSupplierPaymentDone),
		SupplierID: supplierID,
		ItemIDs:    []int64{payment.ProcurementItemID},
		Amount:     payment.Amount,
	}
	if err := s.eventPublisher.PublishProcurement(ctx, event); err != nil {
		s.logger.Error("Failed to publish payment confirmation event", zap.Error(err))
	}
	return nil
}
