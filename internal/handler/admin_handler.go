package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yafafa-lodge/service-booking/internal/application"
	"github.com/yafafa-lodge/service-booking/pkg/auth"
	"github.com/yafafa-lodge/service-booking/pkg/middleware"
	"github.com/yafafa-lodge/service-booking/pkg/response"
)

// AdminHandler handles admin-only reporting requests.
type AdminHandler struct {
	bookingService *application.BookingService
	admins         *auth.AdminSet
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookingService *application.BookingService, admins *auth.AdminSet) *AdminHandler {
	return &AdminHandler{bookingService: bookingService, admins: admins}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireAdmin(h.admins))
	{
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// BookingStats handles GET /api/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookingService.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
