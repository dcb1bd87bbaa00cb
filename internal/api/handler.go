package api

import (
	"net/http"
	"strconv"
	"time"

	"rentalhub/internal/auth"
	"rentalhub/internal/models"
	"rentalhub/internal/service"
	"rentalhub/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	tokens      *auth.Manager
	accounts    *service.AccountService
	orders      *service.OrderService
	bookings    *service.BookingService
	procurement *service.ProcurementService
	feedback    *service.FeedbackService
	audit       *service.AuditService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	tokens *auth.Manager,
	accounts *service.AccountService,
	orders *service.OrderService,
	bookings *service.BookingService,
	procurement *service.ProcurementService,
	feedback *service.FeedbackService,
	audit *service.AuditService,
) *Handler {
	return &Handler{
		tokens:      tokens,
		accounts:    accounts,
		orders:      orders,
		bookings:    bookings,
		procurement: procurement,
		feedback:    feedback,
		audit:       audit,
	}
}

// SetupRoutes sets up HTTP routes. Every mutating endpoint sits behind a
// verified identity; staff routes additionally require the matching role.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/customer/register", h.registerCustomer)
		authGroup.POST("/customer/login", h.loginCustomer)
		authGroup.POST("/staff/login", h.loginStaff)
	}

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/services", h.listServices)

	customer := router.Group("/customer", h.requireCustomer())
	{
		customer.POST("/cart", h.addCartItem)
		customer.GET("/cart", h.getCart)
		customer.PUT("/cart/:productId", h.updateCartItem)
		customer.DELETE("/cart/:productId", h.removeCartItem)
		customer.GET("/bookings/:id", h.getEventBooking)
		customer.POST("/bookings/:id/confirm", h.confirmEventBooking)
		customer.POST("/service-bookings", h.bookService)
		customer.GET("/service-bookings", h.listCustomerBookings)
		customer.POST("/service-bookings/:id/confirm", h.confirmServiceBooking)
		customer.POST("/service-payments/:id/pay", h.payQuotation)
		customer.POST("/feedback", h.submitFeedback)
		customer.GET("/feedback", h.listCustomerFeedback)
		customer.GET("/feedback/:id", h.getFeedback)
	}

	payments := router.Group("/payments", h.requireCustomer())
	{
		payments.POST("/order-payment", h.checkout)
		payments.GET("/order-payment", h.listPayments)
		payments.GET("/order-payment/:id", h.getPayment)
	}

	finance := router.Group("/finance", h.requireRole(models.RoleFinance))
	{
		finance.POST("/order-payments/:id/approve", h.approvePayment)
		finance.POST("/order-payments/:id/reject", h.rejectPayment)
		finance.POST("/service-bookings/:id/approve", h.approveServiceBooking)
		finance.POST("/service-payments/:id/approve", h.approveServicePayment)
		finance.POST("/supplier-payments", h.paySupplier)
	}

	eventManager := router.Group("/eventmanager", h.requireRole(models.RoleEventManager))
	{
		eventManager.POST("/order-payments/:id/reserve", h.reserveItems)
	}

	serviceManager := router.Group("/servicemanager", h.requireRole(models.RoleServiceManager))
	{
		serviceManager.GET("/bookings", h.listBookingsByStatus)
		serviceManager.POST("/bookings/:id/assign-dealer", h.assignDealer)
	}

	dealers := router.Group("/dealers", h.requireRole(models.RoleDealer))
	{
		dealers.GET("/bookings", h.listDealerBookings)
		dealers.GET("/store-items/:id", h.getStoreItem)
		dealers.POST("/bookings/:id/quotation", h.submitQuotation)
		dealers.GET("/bookings/:id/quotation", h.getQuotation)
		dealers.POST("/bookings/:id/complete", h.completeBooking)
	}

	storekeeper := router.Group("/storekeeper", h.requireRole(models.RoleStorekeeper))
	{
		storekeeper.PUT("/release-items/:id", h.releaseMaterials)
		storekeeper.POST("/procurement", h.requestItems)
	}

	suppliers := router.Group("/suppliers", h.requireRole(models.RoleSupplier))
	{
		suppliers.GET("/tenders", h.listTenders)
		suppliers.POST("/tenders/approve", h.approveTenders)
		suppliers.PUT("/payments/:id/confirm", h.confirmSupplierPayment)
	}

	staff := router.Group("/staff", h.requireStaff())
	{
		staff.GET("/feedback", h.listStaffFeedback)
		staff.POST("/feedback/:id/reply", h.replyFeedback)
		staff.GET("/audit/:entity/:id", h.auditTrail)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
