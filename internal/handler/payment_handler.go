package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yafafa-lodge/service-booking/internal/adapter"
	"github.com/yafafa-lodge/service-booking/internal/application"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
	"github.com/yafafa-lodge/service-booking/pkg/response"
)

// PaymentHandler handles HTTP requests for payment operations.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers all payment routes on the given router group.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/initialize", h.InitializePayment)
		payments.GET("/verify/:reference", h.VerifyPayment)
	}
}

// InitializePayment handles POST /api/payments/initialize. The gateway's
// answer, success or error, is relayed to the client unchanged.
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	var req application.InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	payload, err := h.service.InitializePayment(c.Request.Context(), req)
	if err != nil {
		var gwErr *adapter.GatewayError
		if errors.As(err, &gwErr) {
			c.Data(gwErr.StatusCode, "application/json", gwErr.Body)
			return
		}
		response.Error(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}

// VerifyPayment handles GET /api/payments/verify/:reference
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		response.BadRequest(c, "reference is required")
		return
	}

	dto, err := h.service.VerifyPayment(c.Request.Context(), reference)
	if err != nil {
		status := response.StatusFor(err)
		body := gin.H{"success": false, "message": verifyMessage(err, status)}
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			body["retryable"] = true
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": dto})
}

func verifyMessage(err error, status int) string {
	var domErr *domain.DomainError
	if status == http.StatusInternalServerError || !errors.As(err, &domErr) {
		return "could not record payment"
	}
	return domErr.Message
}
