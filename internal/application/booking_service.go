package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yafafa-lodge/service-booking/internal/domain/booking"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
)

// CreateBookingRequest is the client-submitted booking. Completed status
// is only reachable through payment reconciliation.
type CreateBookingRequest struct {
	GuestName     string  `json:"guestName" binding:"required"`
	Room          string  `json:"room" binding:"required"`
	Date          string  `json:"date" binding:"required"`
	Time          string  `json:"time" binding:"required"`
	Phone         string  `json:"phone" binding:"required"`
	CustomerEmail string  `json:"customerEmail" binding:"required,email"`
	Network       string  `json:"network" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0,lte=1000000"`
	TransactionID string  `json:"transactionId" binding:"required"`
	Status        string  `json:"status" binding:"omitempty,oneof=pending failed"`
}

// BookingService handles booking use cases outside reconciliation.
type BookingService struct {
	repo   booking.BookingRepository
	logger *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(repo booking.BookingRepository, logger *zap.Logger) *BookingService {
	return &BookingService{repo: repo, logger: logger}
}

// CreateBooking stores a client-submitted booking.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	b, err := booking.NewBooking(booking.NewBookingParams{
		GuestName:     req.GuestName,
		CustomerEmail: req.CustomerEmail,
		Phone:         req.Phone,
		RoomName:      req.Room,
		Date:          req.Date,
		Time:          req.Time,
		Network:       req.Network,
		AmountMinor:   booking.MinorFromMajor(req.Amount),
		TransactionID: req.TransactionID,
		Status:        booking.Status(req.Status),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, b); err != nil {
		s.logger.Warn("failed to create booking",
			zap.String("transaction_id", b.TransactionID()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("transaction_id", b.TransactionID()),
		zap.String("status", string(b.Status())),
	)
	dto := toBookingDTO(b)
	return &dto, nil
}

// ListAll returns every booking, newest first.
func (s *BookingService) ListAll(ctx context.Context) ([]BookingDTO, error) {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos, nil
}

// GetByReference returns the booking for a payment reference. Non-admin
// callers can only read bookings made with their own email.
func (s *BookingService) GetByReference(ctx context.Context, reference, callerEmail string, isAdmin bool) (*BookingDTO, error) {
	b, err := s.repo.FindByTransactionID(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !strings.EqualFold(b.CustomerEmail(), callerEmail) {
		// Same answer as a missing booking so references cannot be probed.
		return nil, domain.NewNotFoundError("booking", reference)
	}

	dto := toBookingDTO(b)
	return &dto, nil
}

// Cancel deletes a booking.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("booking cancelled",
		zap.String("booking_id", id.String()),
		zap.String("transaction_id", b.TransactionID()),
		zap.String("status", string(b.Status())),
	)
	return nil
}

// Stats returns revenue from completed bookings and counts per status.
func (s *BookingService) Stats(ctx context.Context) (*BookingStatsDTO, error) {
	revenueMinor, byStatus, err := s.repo.GetRevenueStats(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &BookingStatsDTO{
		TotalBookings: total,
		Revenue:       booking.MajorFromMinor(revenueMinor),
		ByStatus:      byStatus,
	}, nil
}
