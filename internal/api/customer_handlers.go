package api

import (
	"net/http"

	"rentalhub/internal/service"

	"github.com/gin-gonic/gin"
)

// registerCustomer handles customer self-registration
func (h *Handler) registerCustomer(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.accounts.RegisterCustomer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginCustomer handles customer login
func (h *Handler) loginCustomer(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, customer, err := h.accounts.LoginCustomer(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "customer": customer})
}

// loginStaff handles staff login for all roles
func (h *Handler) loginStaff(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, staff, err := h.accounts.LoginStaff(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "staff": staff})
}

// listProducts handles the public catalog listing
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.orders.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles a single catalog lookup
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.orders.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

type addCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// addCartItem handles adding a product line to the caller's cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.orders.AddCartItem(c.Request.Context(), customerID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// getCart handles reading the caller's cart with line totals
func (h *Handler) getCart(c *gin.Context) {
	lines, total, err := h.orders.GetCart(c.Request.Context(), customerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": lines, "total": total})
}

type updateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// updateCartItem handles changing the quantity of an existing cart line
func (h *Handler) updateCartItem(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orders.UpdateCartItem(c.Request.Context(), customerID(c), productID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// removeCartItem handles dropping a cart line. Stock is untouched because
// nothing was reserved before checkout.
func (h *Handler) removeCartItem(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	if err := h.orders.RemoveCartItem(c.Request.Context(), customerID(c), productID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// listServices handles the public service catalog
func (h *Handler) listServices(c *gin.Context) {
	services, err := h.bookings.ListServices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// checkout handles converting the caller's cart into a pending order payment
func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.orders.Checkout(c.Request.Context(), customerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// getPayment handles reading an order payment with its lines
func (h *Handler) getPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, items, err := h.orders.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if payment.CustomerID != customerID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment, "items": items})
}

// listPayments handles listing the caller's order payments
func (h *Handler) listPayments(c *gin.Context) {
	payments, err := h.orders.ListPayments(c.Request.Context(), customerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// getEventBooking handles reading one of the caller's event bookings
func (h *Handler) getEventBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.orders.GetEventBooking(c.Request.Context(), id, customerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// confirmEventBooking handles a customer acknowledging a reserved rental
func (h *Handler) confirmEventBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.ConfirmEventBooking(c.Request.Context(), id, customerID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// bookService handles creating a pending service booking
func (h *Handler) bookService(c *gin.Context) {
	var req service.BookServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookings.BookService(c.Request.Context(), customerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// listCustomerBookings handles listing the caller's service bookings
func (h *Handler) listCustomerBookings(c *gin.Context) {
	bookings, err := h.bookings.ListCustomerBookings(c.Request.Context(), customerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// confirmServiceBooking handles a customer accepting a completed booking
func (h *Handler) confirmServiceBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.ConfirmBooking(c.Request.Context(), customerID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

type payQuotationRequest struct {
	Method        string `json:"method" binding:"required"`
	ReferenceCode string `json:"reference_code" binding:"required"`
}

// payQuotation handles a customer recording payment for a quoted booking
func (h *Handler) payQuotation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req payQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.bookings.PayQuotation(c.Request.Context(), customerID(c), id, req.Method, req.ReferenceCode); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "paid"})
}

// submitFeedback handles a customer addressing feedback to a staff member
func (h *Handler) submitFeedback(c *gin.Context) {
	var req service.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb, err := h.feedback.SubmitFeedback(c.Request.Context(), customerID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// listCustomerFeedback handles listing the caller's feedback threads
func (h *Handler) listCustomerFeedback(c *gin.Context) {
	items, err := h.feedback.ListCustomerFeedback(c.Request.Context(), customerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": items})
}

// getFeedback handles reading one of the caller's feedback threads
func (h *Handler) getFeedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	fb, err := h.feedback.GetFeedback(c.Request.Context(), customerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, fb)
}
