package api

import (
	"net/http"

	"rentalhub/internal/models"
	"rentalhub/internal/service"

	"github.com/gin-gonic/gin"
)

// approvePayment handles finance approving a pending order payment
func (h *Handler) approvePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.ApprovePayment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// rejectPayment handles finance rejecting a pending order payment and
// restoring the reserved stock
func (h *Handler) rejectPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.RejectPayment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// approveServiceBooking handles finance approving a pending service booking
func (h *Handler) approveServiceBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.ApproveBooking(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// approveServicePayment handles finance approving a paid quotation
func (h *Handler) approveServicePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.ApproveServicePayment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// paySupplier handles finance paying an approved procurement tender
func (h *Handler) paySupplier(c *gin.Context) {
	var req service.PaySupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.procurement.PaySupplier(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// reserveItems handles the event manager turning an approved payment's
// lines into reserved event bookings
func (h *Handler) reserveItems(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	bookings, err := h.orders.ReserveItems(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bookings": bookings})
}

// listBookingsByStatus handles the service manager browsing the booking queue
func (h *Handler) listBookingsByStatus(c *gin.Context) {
	status := models.ServiceBookingStatus(c.DefaultQuery("status", string(models.ServiceBookingApproved)))

	bookings, err := h.bookings.ListBookingsByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

type assignDealerRequest struct {
	DealerID int64 `json:"dealer_id" binding:"required"`
}

// assignDealer handles the service manager assigning a dealer to a booking
func (h *Handler) assignDealer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req assignDealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.bookings.AssignDealer(c.Request.Context(), id, req.DealerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// listDealerBookings handles a dealer listing bookings assigned to them
func (h *Handler) listDealerBookings(c *gin.Context) {
	bookings, err := h.bookings.ListDealerBookings(c.Request.Context(), staffID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

type submitQuotationRequest struct {
	Items []service.QuotationItemRequest `json:"items" binding:"required"`
}

// submitQuotation handles a dealer pricing an assigned booking
func (h *Handler) submitQuotation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req submitQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.bookings.SubmitQuotation(c.Request.Context(), staffID(c), id, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// getQuotation handles reading a booking's quotation lines and payment
func (h *Handler) getQuotation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	items, payment, err := h.bookings.GetQuotation(c.Request.Context(), staffID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "payment": payment})
}

// getStoreItem handles a dealer reading one warehouse material
func (h *Handler) getStoreItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := h.bookings.GetStoreItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// completeBooking handles a dealer marking their assigned booking done
func (h *Handler) completeBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.CompleteBooking(c.Request.Context(), staffID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// releaseMaterials handles the storekeeper releasing quoted materials
// against a released service payment
func (h *Handler) releaseMaterials(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.ReleaseMaterials(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "released"})
}

type requestItemsRequest struct {
	SupplierID int64                     `json:"supplier_id" binding:"required"`
	Items      []service.RequestItemLine `json:"items" binding:"required"`
}

// requestItems handles the storekeeper opening procurement tenders
func (h *Handler) requestItems(c *gin.Context) {
	var req requestItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.procurement.RequestItems(c.Request.Context(), staffID(c), req.SupplierID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"items": items})
}

// listTenders handles a supplier listing their pending tenders
func (h *Handler) listTenders(c *gin.Context) {
	items, err := h.procurement.ListTenders(c.Request.Context(), staffID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenders": items})
}

type approveTendersRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

// approveTenders handles a supplier accepting a batch of their tenders
func (h *Handler) approveTenders(c *gin.Context) {
	var req approveTendersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.procurement.ApproveTenders(c.Request.Context(), staffID(c), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"approved": count})
}

// confirmSupplierPayment handles a supplier acknowledging receipt of payment
func (h *Handler) confirmSupplierPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.procurement.ConfirmPayment(c.Request.Context(), staffID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// listStaffFeedback handles a staff member listing feedback addressed to them
func (h *Handler) listStaffFeedback(c *gin.Context) {
	items, err := h.feedback.ListStaffFeedback(c.Request.Context(), staffRole(c), staffID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": items})
}

// auditTrail handles reading the workflow event trail for one entity
func (h *Handler) auditTrail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	events, err := h.audit.Trail(c.Request.Context(), c.Param("entity"), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

type replyFeedbackRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// replyFeedback handles a staff member resolving feedback addressed to them
func (h *Handler) replyFeedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req replyFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.feedback.Reply(c.Request.Context(), staffID(c), id, req.Reply); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}
