package service

import (
	"context"
	"errors"
	"time"

	"rentalhub/internal/models"
	"rentalhub/internal/redisclient"
	"rentalhub/internal/store"
	"rentalhub/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const idempotencyTTL = 24 * time.Hour

// OrderService runs the cart and order-payment workflow: customer
// checkout, finance approval/rejection, event-manager reservation and
// customer confirmation.
type OrderService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(st *store.Store, redis *redisclient.Client, eventPublisher EventPublisher) *OrderService {
	return &OrderService{
		store:          st,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// GetProduct serves the catalog read path through the Redis cache.
func (s *OrderService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	if cached, err := s.redis.GetCachedProduct(ctx, productID); err == nil && cached != nil {
		return cached, nil
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.redis.CacheProduct(ctx, product); err != nil {
		s.logger.Warn("Failed to cache product", zap.Int64("product_id", productID), zap.Error(err))
	}
	return product, nil
}

// ListProducts serves the catalog listing through the Redis cache.
func (s *OrderService) ListProducts(ctx context.Context) ([]models.Product, error) {
	if cached, err := s.redis.GetCachedProductList(ctx); err == nil && cached != nil {
		return cached, nil
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.redis.CacheProductList(ctx, products); err != nil {
		s.logger.Warn("Failed to cache product list", zap.Error(err))
	}
	return products, nil
}

// AddCartItem puts a product into the customer's cart. The requested
// quantity may never exceed the product's current stock.
func (s *OrderService) AddCartItem(ctx context.Context, customerID, productID int64, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, validationf("product %d does not exist", productID)
	}
	if err != nil {
		return nil, err
	}

	if quantity > product.Quantity {
		return nil, validationf("requested quantity %d exceeds available stock %d", quantity, product.Quantity)
	}

	item := &models.CartItem{
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   quantity,
	}
	if err := s.store.AddCartItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetCart lists the customer's cart lines and their total.
func (s *OrderService) GetCart(ctx context.Context, customerID int64) ([]models.CartLine, int64, error) {
	lines, err := s.store.GetCartLines(ctx, customerID)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	for _, line := range lines {
		total += line.LineTotal
	}
	return lines, total, nil
}

// UpdateCartItem changes a cart entry's quantity, with the same stock bound
// as AddCartItem.
func (s *OrderService) UpdateCartItem(ctx context.Context, customerID, productID int64, quantity int) error {
	if quantity <= 0 {
		return validationf("quantity must be positive")
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if quantity > product.Quantity {
		return validationf("requested quantity %d exceeds available stock %d", quantity, product.Quantity)
	}

	return s.store.UpdateCartItemQuantity(ctx, customerID, productID, quantity)
}

// RemoveCartItem deletes a cart entry. Stock is untouched: nothing is
// deducted before checkout, so there is nothing to give back.
func (s *OrderService) RemoveCartItem(ctx context.Context, customerID, productID int64) error {
	return s.store.RemoveCartItem(ctx, customerID, productID)
}

// CheckoutRequest is a customer's order payment submission.
type CheckoutRequest struct {
	Total          int64  `json:"total" binding:"required,min=1"`
	Method         string `json:"method" binding:"required"`
	ReferenceCode  string `json:"reference_code" binding:"required"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Checkout turns the customer's whole cart into a pending order payment.
// Payment row, order items, stock deductions and cart deletions all
// happen in one transaction: if any item has insufficient stock the
// entire checkout rolls back and nothing is persisted.
func (s *OrderService) Checkout(ctx context.Context, customerID int64, req *CheckoutRequest) (*models.OrderPayment, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if err := ValidateReference(req.Method, req.ReferenceCode); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("bad_reference").Inc()
		return nil, err
	}

	if req.IdempotencyKey != "" {
		if existingID, err := s.redis.GetIdempotencyKey(ctx, req.IdempotencyKey); err == nil && existingID != 0 {
			s.logger.Info("Duplicate checkout request",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Int64("payment_id", existingID))
			return s.store.GetOrderPaymentByID(ctx, existingID)
		}
	}

	lines, total, err := s.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, validationf("cart is empty")
	}
	if req.Total != total {
		util.CheckoutsFailedTotal.WithLabelValues("total_mismatch").Inc()
		return nil, validationf("submitted total %d does not match cart total %d", req.Total, total)
	}

	payment := &models.OrderPayment{
		CustomerID:    customerID,
		TotalAmount:   total,
		Method:        req.Method,
		ReferenceCode: req.ReferenceCode,
		Status:        models.OrderPaymentPending,
	}

	items := make([]models.OrderItemData, 0, len(lines))
	productIDs := make([]int64, 0, len(lines))

	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.CreateOrderPaymentTx(ctx, tx, payment); err != nil {
			return err
		}

		for _, line := range lines {
			if _, err := s.store.ReserveStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}

			orderItem := &models.OrderItem{
				PaymentID: payment.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			}
			if err := s.store.CreateOrderItemTx(ctx, tx, orderItem); err != nil {
				return err
			}

			if err := s.store.DeleteCartItemTx(ctx, tx, customerID, line.ProductID); err != nil {
				return err
			}

			items = append(items, models.OrderItemData{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			})
			productIDs = append(productIDs, line.ProductID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			util.StockReservationsFailed.WithLabelValues("insufficient_stock").Inc()
		} else {
			util.CheckoutsFailedTotal.WithLabelValues("db_error").Inc()
		}
		return nil, err
	}

	util.CheckoutsTotal.Inc()
	s.logger.Info("Order payment created",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("customer_id", customerID),
		zap.Int64("total", total))

	if req.IdempotencyKey != "" {
		if err := s.redis.SetIdempotencyKey(ctx, req.IdempotencyKey, payment.ID, idempotencyTTL); err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.Error(err))
		}
	}
	if err := s.redis.InvalidateProducts(ctx, productIDs...); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}

	event := &models.OrderPaymentEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderPaymentCreated),
		PaymentID:   payment.ID,
		CustomerID:  customerID,
		TotalAmount: total,
		Items:       items,
	}
	if err := s.eventPublisher.PublishOrderPayment(ctx, event); err != nil {
		s.logger.Error("Failed to publish order payment event", zap.Error(err))
	}

	return payment, nil
}

// ApprovePayment is the finance transition pending -> approved. A payment
// that is missing or already past pending reads as not found.
func (s *OrderService) ApprovePayment(ctx context.Context, paymentID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.ApprovePayment")
	defer span.End()

	if !models.OrderPaymentPending.CanTransition(models.OrderPaymentApproved) {
		return validationf("illegal payment transition")
	}

	if err := s.store.TransitionOrderPayment(ctx, paymentID,
		models.OrderPaymentPending, models.OrderPaymentApproved); err != nil {
		return err
	}

	util.PaymentTransitionsTotal.WithLabelValues(string(models.OrderPaymentApproved)).Inc()
	s.logger.Info("Order payment approved", zap.Int64("payment_id", paymentID))

	event := &models.OrderPaymentEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderPaymentApproved),
		PaymentID: paymentID,
	}
	if err := s.eventPublisher.PublishOrderPayment(ctx, event); err != nil {
		s.logger.Error("Failed to publish approval event", zap.Error(err))
	}
	return nil
}

// RejectPayment is the finance transition pending -> rejected. The same
// transaction restores each order item's deducted stock; the status
// guard makes the restoration run at most once.
func (s *OrderService) RejectPayment(ctx context.Context, paymentID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.RejectPayment")
	defer span.End()

	var productIDs []int64

	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.TransitionOrderPaymentTx(ctx, tx, paymentID,
			models.OrderPaymentPending, models.OrderPaymentRejected); err != nil {
			return err
		}

		items, err := s.store.GetOrderItemsByPaymentIDTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		for _, item := range items {
			if err := s.store.ReleaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			productIDs = append(productIDs, item.ProductID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	util.PaymentTransitionsTotal.WithLabelValues(string(models.OrderPaymentRejected)).Inc()
	s.logger.Info("Order payment rejected, stock restored",
		zap.Int64("payment_id", paymentID))

	if err := s.redis.InvalidateProducts(ctx, productIDs...); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}

	event := &models.OrderPaymentEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderPaymentRejected),
		PaymentID: paymentID,
	}
	if err := s.eventPublisher.PublishOrderPayment(ctx, event); err != nil {
		s.logger.Error("Failed to publish rejection event", zap.Error(err))
	}
	return nil
}

// ReserveItems is the event-manager step: it turns an approved payment's
// items into reserved event bookings, once. A payment that already has
// bookings is a conflict.
func (s *OrderService) ReserveItems(ctx context.Context, paymentID int64) ([]models.EventBooking, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ReserveItems")
	defer span.End()

	var payment *models.OrderPayment
	var bookings []models.EventBooking

	// Concurrent reserves on the same payment serialize on the row lock.
	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		p, err := s.store.GetOrderPaymentForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != models.OrderPaymentApproved {
			return validationf("payment %d is not approved", paymentID)
		}
		payment = p

		reserved, err := s.store.HasEventBookingsTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if reserved {
			return store.ErrConflict
		}

		items, err := s.store.GetOrderItemsByPaymentIDTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		bookings = make([]models.EventBooking, 0, len(items))
		for _, item := range items {
			booking := models.EventBooking{
				PaymentID:  paymentID,
				CustomerID: payment.CustomerID,
				ProductID:  item.ProductID,
				Status:     models.EventBookingReserved,
			}
			if err := s.store.CreateEventBookingTx(ctx, tx, &booking); err != nil {
				return err
			}
			bookings = append(bookings, booking)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Event bookings reserved",
		zap.Int64("payment_id", paymentID),
		zap.Int("count", len(bookings)))

	ids := make([]int64, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	event := &models.ItemsReservedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeItemsReserved),
		PaymentID:  paymentID,
		CustomerID: payment.CustomerID,
		BookingIDs: ids,
	}
	if err := s.eventPublisher.PublishItemsReserved(ctx, event); err != nil {
		s.logger.Error("Failed to publish reservation event", zap.Error(err))
	}

	return bookings, nil
}

// ConfirmEventBooking is the customer transition reserved -> confirmed,
// scoped to the booking's owner.
func (s *OrderService) ConfirmEventBooking(ctx context.Context, bookingID, customerID int64) error {
	if err := s.store.ConfirmEventBooking(ctx, bookingID, customerID); err != nil {
		return err
	}

	s.logger.Info("Event booking confirmed",
		zap.Int64("booking_id", bookingID),
		zap.Int64("customer_id", customerID))

	event := &models.BookingEvent{
		BaseEvent:  newBaseEvent(models.EventTypeBookingConfirmed),
		BookingID:  bookingID,
		CustomerID: customerID,
		Status:     string(models.EventBookingConfirmed),
	}
	if err := s.eventPublisher.PublishBooking(ctx, event); err != nil {
		s.logger.Error("Failed to publish confirmation event", zap.Error(err))
	}
	return nil
}

// ListPayments lists a customer's own order payments.
func (s *OrderService) ListPayments(ctx context.Context, customerID int64) ([]models.OrderPayment, error) {
	return s.store.GetOrderPaymentsByCustomer(ctx, customerID)
}

// GetEventBooking retrieves one event booking, scoped to its owner.
func (s *OrderService) GetEventBooking(ctx context.Context, bookingID, customerID int64) (*models.EventBooking, error) {
	booking, err := s.store.GetEventBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, store.ErrNotFound
	}
	return booking, nil
}

// GetPayment retrieves a payment and its items.
func (s *OrderService) GetPayment(ctx context.Context, paymentID int64) (*models.OrderPayment, []models.OrderItem, error) {
	payment, err := s.store.GetOrderPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.GetOrderItemsByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	return payment, items, nil
}
