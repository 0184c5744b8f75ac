package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yafafa-lodge/service-booking/internal/adapter"
	"github.com/yafafa-lodge/service-booking/internal/application"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
	"github.com/yafafa-lodge/service-booking/pkg/response"
)

// WebhookHandler receives Paystack event notifications.
type WebhookHandler struct {
	reconciler  *application.Reconciler
	secret      string
	maxBodySize int64
	logger      *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler. Requests are
// authenticated with secret; an empty secret rejects every request.
func NewWebhookHandler(reconciler *application.Reconciler, secret string, maxBodySize int64, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler:  reconciler,
		secret:      secret,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// RegisterRoutes registers the webhook endpoint on the root router.
func (h *WebhookHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/webhook/paystack", h.HandlePaystack)
}

// HandlePaystack handles POST /webhook/paystack. The signature is checked
// over the raw bytes before anything is parsed.
func (h *WebhookHandler) HandlePaystack(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	if !adapter.VerifySignature(h.secret, body, c.GetHeader(adapter.SignatureHeader)) {
		mismatch := domain.NewSignatureMismatchError()
		h.logger.Warn("rejected webhook with invalid signature",
			zap.String("remote_addr", c.ClientIP()),
		)
		c.String(response.StatusFor(mismatch), mismatch.Message)
		return
	}

	event, err := adapter.ParseWebhookEvent(body)
	if err != nil {
		h.logger.Error("malformed webhook payload", zap.Error(err))
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	if !event.IsChargeSuccess() {
		h.logger.Info("ignoring webhook event", zap.String("event", event.Event))
		c.String(http.StatusOK, "OK")
		return
	}
	if !event.Data.Succeeded() {
		h.logger.Info("ignoring charge.success with non-success status",
			zap.String("reference", event.Data.Reference),
			zap.String("status", event.Data.Status),
		)
		c.String(http.StatusOK, "OK")
		return
	}

	if _, err := h.reconciler.Apply(c.Request.Context(), application.SourceWebhook, &event.Data); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.String(http.StatusBadRequest, "Bad request")
			return
		}
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.String(http.StatusOK, "OK")
}
