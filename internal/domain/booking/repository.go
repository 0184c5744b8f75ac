package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for Booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByTransactionID retrieves the booking for a gateway reference.
	FindByTransactionID(ctx context.Context, reference string) (*Booking, error)

	// ListAll retrieves every booking, newest first (admin).
	ListAll(ctx context.Context) ([]*Booking, error)

	// GetRevenueStats returns completed revenue in minor units and counts per status (admin).
	GetRevenueStats(ctx context.Context) (revenueMinor int64, countByStatus map[string]int64, err error)

	// Save persists a new booking. A duplicate transaction reference yields a conflict error.
	Save(ctx context.Context, b *Booking) error

	// CompleteByTransactionID marks the booking completed only if it is not
	// completed already. It reports whether a row was changed.
	CompleteByTransactionID(ctx context.Context, reference string, paidAt time.Time) (bool, error)

	// Delete removes a booking (admin cancellation).
	Delete(ctx context.Context, id uuid.UUID) error
}
