package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yafafa-lodge/service-booking/internal/application"
	"github.com/yafafa-lodge/service-booking/pkg/auth"
	"github.com/yafafa-lodge/service-booking/pkg/middleware"
	"github.com/yafafa-lodge/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	service *application.BookingService
	admins  *auth.AdminSet
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, admins *auth.AdminSet) *BookingHandler {
	return &BookingHandler{service: service, admins: admins}
}

// RegisterRoutes registers booking routes. Every route needs a bearer token.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	adminOnly := middleware.RequireAdmin(h.admins)

	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/all", adminOnly, h.ListAll)
		bookings.GET("/reference/:reference", h.GetByReference)
		bookings.DELETE("/:id", adminOnly, h.CancelBooking)
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	dto, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Booking created successfully", "booking": dto})
}

// ListAll handles GET /api/bookings/all.
func (h *BookingHandler) ListAll(c *gin.Context) {
	bookings, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bookings)
}

// GetByReference handles GET /api/bookings/reference/:reference.
func (h *BookingHandler) GetByReference(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	dto, err := h.service.GetByReference(c.Request.Context(), c.Param("reference"), claims.Email, h.admins.IsAdmin(claims))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// CancelBooking handles DELETE /api/bookings/:id.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"id": id})
}
