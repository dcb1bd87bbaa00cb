package service

import (
	"context"
	"errors"
	"time"

	"rentalhub/internal/models"
	"rentalhub/internal/store"
	"rentalhub/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// BookingService runs the service-booking workflow: booking, finance
// approval, dealer assignment, quotation, quotation payment, material
// release, completion and confirmation.
type BookingService struct {
	store          *store.Store
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(st *store.Store, eventPublisher EventPublisher) *BookingService {
	return &BookingService{
		store:          st,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// BookServiceRequest is a customer's service booking submission.
type BookServiceRequest struct {
	ServiceID     int64     `json:"service_id" binding:"required"`
	EventDate     time.Time `json:"event_date" binding:"required"`
	PeopleCount   int       `json:"people_count" binding:"required,min=1"`
	Method        string    `json:"method" binding:"required"`
	ReferenceCode string    `json:"reference_code" binding:"required"`
}

// BookService creates a pending service booking, charging the service's
// booking fee against the supplied reference.
func (s *BookingService) BookService(ctx context.Context, customerID int64, req *BookServiceRequest) (*models.ServiceBooking, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.BookService")
	defer span.End()

	if err := ValidateReference(req.Method, req.ReferenceCode); err != nil {
		return nil, err
	}
	if !req.EventDate.After(time.Now()) {
		return nil, validationf("event date must be in the future")
	}

	svc, err := s.store.GetServiceByID(ctx, req.ServiceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, validationf("service %d does not exist", req.ServiceID)
	}
	if err != nil {
		return nil, err
	}

	booking := &models.ServiceBooking{
		CustomerID:    customerID,
		ServiceID:     svc.ID,
		EventDate:     req.EventDate,
		PeopleCount:   req.PeopleCount,
		BookingFee:    svc.BookingFee,
		Method:        req.Method,
		ReferenceCode: req.ReferenceCode,
		Status:        models.ServiceBookingPending,
	}
	if err := s.store.CreateServiceBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("Service booked",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("customer_id", customerID),
		zap.Int64("service_id", svc.ID))

	event := &models.BookingEvent{
		BaseEvent:  newBaseEvent(models.EventTypeServiceBooked),
		BookingID:  booking.ID,
		CustomerID: customerID,
		Status:     string(booking.Status),
	}
	if err := s.eventPublisher.PublishBooking(ctx, event); err != nil {
		s.logger.Error("Failed to publish booking event", zap.Error(err))
	}

	return booking, nil
}

// ListServices lists the service catalog.
func (s *BookingService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.store.GetServices(ctx)
}

// GetStoreItem retrieves one warehouse material; dealers price their
// quotations from these.
func (s *BookingService) GetStoreItem(ctx context.Context, id int64) (*models.StoreItem, error) {
	return s.store.GetStoreItemByID(ctx, id)
}

// ListCustomerBookings lists a customer's own bookings.
func (s *BookingService) ListCustomerBookings(ctx context.Context, customerID int64) ([]models.ServiceBooking, error) {
	return s.store.GetServiceBookingsByCustomer(ctx, customerID)
}

// ListBookingsByStatus lists bookings in one state for staff views.
func (s *BookingService) ListBookingsByStatus(ctx context.Context, status models.ServiceBookingStatus) ([]models.ServiceBooking, error) {
	return s.store.GetServiceBookingsByStatus(ctx, status)
}

// ApproveBooking is the finance transition pending -> approved.
func (s *BookingService) ApproveBooking(ctx context.Context, bookingID int64) error {
	return s.transitionBooking(ctx, bookingID,
		models.ServiceBookingPending, models.ServiceBookingApproved)
}

// AssignDealer is the service-manager step: attach exactly one dealer to
// an approved booking and flip it to assigned, in one transaction.
func (s *BookingService) AssignDealer(ctx context.Context, bookingID, dealerID int64) (*models.DealerAssignment, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.AssignDealer")
	defer span.End()

	booking, err := s.store.GetServiceBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(models.ServiceBookingAssigned) {
		return nil, validationf("booking %d is not approved", bookingID)
	}

	exists, err := s.store.StaffExists(ctx, dealerID, models.RoleDealer)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, validationf("dealer %d does not exist", dealerID)
	}

	assigned, err := s.store.HasDealerAssignment(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if assigned {
		return nil, store.ErrConflict
	}

	assignment := &models.DealerAssignment{
		BookingID: bookingID,
		DealerID:  dealerID,
		ServiceID: booking.ServiceID,
	}
	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.CreateDealerAssignmentTx(ctx, tx, assignment); err != nil {
			return err
		}
		return s.store.TransitionServiceBookingTx(ctx, tx, bookingID,
			models.ServiceBookingApproved, models.ServiceBookingAssigned)
	})
	if err != nil {
		return nil, err
	}

	util.BookingTransitionsTotal.WithLabelValues(string(models.ServiceBookingAssigned)).Inc()
	s.logger.Info("Dealer assigned",
		zap.Int64("booking_id", bookingID),
		zap.Int64("dealer_id", dealerID))

	event := &models.BookingEvent{
		BaseEvent:  newBaseEvent(models.EventTypeBookingStatusChanged),
		BookingID:  bookingID,
		CustomerID: booking.CustomerID,
		Status:     string(models.ServiceBookingAssigned),
	}
	if err := s.eventPublisher.PublishBooking(ctx, event); err != nil {
		s.logger.Error("Failed to publish assignment event", zap.Error(err))
	}

	return assignment, nil
}

// ListDealerBookings lists bookings assigned to a dealer.
func (s *BookingService) ListDealerBookings(ctx context.Context, dealerID int64) ([]models.ServiceBooking, error) {
	return s.store.GetBookingsByDealer(ctx, dealerID)
}

// QuotationItemRequest is one material line in a dealer's quotation.
type QuotationItemRequest struct {
	StoreItemID int64 `json:"store_item_id" binding:"required"`
	Quantity    int   `json:"quantity" binding:"required,min=1"`
}

// SubmitQuotation records the assigned dealer's material selection as one
// atomic action: all quotation items and the pending quotation payment
// land in a single transaction, so a partial client failure can never
// leave a half-submitted quotation.
func (s *BookingService) SubmitQuotation(ctx context.Context, dealerID, bookingID int64, items []QuotationItemRequest) (*models.ServicePayment, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.SubmitQuotation")
	defer span.End()

	if len(items) == 0 {
		return nil, validationf("quotation must contain at least one item")
	}

	booking, err := s.store.GetServiceBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.ServiceBookingAssigned {
		return nil, validationf("booking %d is not assigned", bookingID)
	}

	assignment, err := s.store.GetDealerAssignment(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if assignment.DealerID != dealerID {
		return nil, store.ErrNotFound
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.StoreItemID
	}
	storeItems, err := s.store.GetStoreItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	priceByID := make(map[int64]int64, len(storeItems))
	for _, si := range storeItems {
		priceByID[si.ID] = si.UnitPrice
	}

	var total int64
	rows := make([]models.QuotationItem, 0, len(items))
	for _, item := range items {
		price, ok := priceByID[item.StoreItemID]
		if !ok {
			return nil, validationf("store item %d does not exist", item.StoreItemID)
		}
		cost := price * int64(item.Quantity)
		total += cost
		rows = append(rows, models.QuotationItem{
			BookingID:   bookingID,
			StoreItemID: item.StoreItemID,
			Quantity:    item.Quantity,
			Cost:        cost,
		})
	}

	payment := &models.ServicePayment{
		BookingID:  bookingID,
		CustomerID: booking.CustomerID,
		Amount:     total,
	}
	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.UpsertServicePaymentTx(ctx, tx, payment); err != nil {
			return err
		}
		if err := s.store.DeleteQuotationItemsTx(ctx, tx, bookingID); err != nil {
			return err
		}
		for i := range rows {
			if err := s.store.CreateQuotationItemTx(ctx, tx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	payment.Status = models.ServicePaymentPending

	s.logger.Info("Quotation submitted",
		zap.Int64("booking_id", bookingID),
		zap.Int64("dealer_id", dealerID),
		zap.Int64("total", total),
		zap.Int("items", len(rows)))

	event := &models.QuotationEvent{
		BaseEvent: newBaseEvent(models.EventTypeQuotationSubmitted),
		BookingID: bookingID,
		DealerID:  dealerID,
		Total:     total,
		ItemCount: len(rows),
	}
	if err := s.eventPublisher.PublishQuotation(ctx, event); err != nil {
		s.logger.Error("Failed to publish quotation event", zap.Error(err))
	}

	return payment, nil
}

// PayQuotation records the customer's method and reference on their
// pending quotation payment.
func (s *BookingService) PayQuotation(ctx context.Context, customerID, paymentID int64, method, reference string) error {
	if err := ValidateReference(method, reference); err != nil {
		return err
	}
	return s.store.SetServicePaymentReference(ctx, paymentID, customerID, method, reference)
}

// ApproveServicePayment is the finance transition pending -> approved.
// A payment without a recorded reference has not been paid yet.
func (s *BookingService) ApproveServicePayment(ctx context.Context, paymentID int64) error {
	payment, err := s.store.GetServicePaymentByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.ReferenceCode == "" {
		return validationf("service payment %d has no payment reference", paymentID)
	}

	return s.store.TransitionServicePayment(ctx, paymentID,
		models.ServicePaymentPending, models.ServicePaymentApproved)
}

// ReleaseMaterials is the storekeeper handover for a booking: the
// quotation payment flips approved -> released and each selected store
// item's stock is deducted, all in one transaction. A second release
// matches zero rows on the status guard and changes nothing.
func (s *BookingService) ReleaseMaterials(ctx context.Context, bookingID int64) error {
	ctx, span := util.StartSpan(ctx, "BookingService.ReleaseMaterials")
	defer span.End()

	payment, err := s.store.GetServicePaymentByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}

	var itemCount int
	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.TransitionServicePaymentTx(ctx, tx, payment.ID,
			models.ServicePaymentApproved, models.ServicePaymentReleased); err != nil {
			return err
		}

		items, err := s.store.GetQuotationItemsByBookingIDTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		itemCount = len(items)

		for _, item := range items {
			if _, err := s.store.ReserveStoreItem(ctx, tx, item.StoreItemID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	util.MaterialsReleasedTotal.Inc()
	s.logger.Info("Materials released",
		zap.Int64("booking_id", bookingID),
		zap.Int("items", itemCount))

	event := &models.ReleaseEvent{
		BaseEvent:        newBaseEvent(models.EventTypeMaterialsReleased),
		BookingID:        bookingID,
		ServicePaymentID: payment.ID,
		ItemCount:        itemCount,
	}
	if err := s.eventPublisher.PublishRelease(ctx, event); err != nil {
		s.logger.Error("Failed to publish release event", zap.Error(err))
	}
	return nil
}

// CompleteBooking is the assigned dealer's transition assigned ->
// completed, allowed only after materials have been released.
func (s *BookingService) CompleteBooking(ctx context.Context, dealerID, bookingID int64) error {
	assignment, err := s.store.GetDealerAssignment(ctx, bookingID)
	if err != nil {
		return err
	}
	if assignment.DealerID != dealerID {
		return store.ErrNotFound
	}

	payment, err := s.store.GetServicePaymentByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	if payment.Status != models.ServicePaymentReleased {
		return validationf("materials for booking %d have not been released", bookingID)
	}

	return s.transitionBooking(ctx, bookingID,
		models.ServiceBookingAssigned, models.ServiceBookingCompleted)
}

// ConfirmBooking is the customer's final transition completed -> confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, customerID, bookingID int64) error {
	booking, err := s.store.GetServiceBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.CustomerID != customerID {
		return store.ErrNotFound
	}

	return s.transitionBooking(ctx, bookingID,
		models.ServiceBookingCompleted, models.ServiceBookingConfirmed)
}

// GetQuotation returns a booking's quotation items and its payment,
// scoped to the assigned dealer.
func (s *BookingService) GetQuotation(ctx context.Context, dealerID, bookingID int64) ([]models.QuotationItem, *models.ServicePayment, error) {
	assignment, err := s.store.GetDealerAssignment(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if assignment.DealerID != dealerID {
		return nil, nil, store.ErrNotFound
	}

	items, err := s.store.GetQuotationItemsByBookingID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	payment, err := s.store.GetServicePaymentByBookingID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return items, payment, nil
}

func (s *BookingService) transitionBooking(ctx context.Context, bookingID int64, from, to models.ServiceBookingStatus) error {
	if !from.CanTransition(to) {
		return validationf("illegal booking transition %s -> %s", from, to)
	}

	if err := s.store.TransitionServiceBooking(ctx, bookingID, from, to); err != nil {
		return err
	}

	util.BookingTransitionsTotal.WithLabelValues(string(to)).Inc()
	s.logger.Info("Service booking transitioned",
		zap.Int64("booking_id", bookingID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	event := &models.BookingEvent{
		BaseEvent: newBaseEvent(models.EventTypeBookingStatusChanged),
		BookingID: bookingID,
		Status:    string(to),
	}
	if err := s.eventPublisher.PublishBooking(ctx, event); err != nil {
		s.logger.Error("Failed to publish booking event", zap.Error(err))
	}
	return nil
}
