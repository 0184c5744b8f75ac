package booking

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yafafa-lodge/service-booking/pkg/domain"
)

// Status represents the payment state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Sentinel values used when the gateway payload lacks a field.
const (
	UnknownRoom    = "Unknown Room"
	UnknownNetwork = "Unknown"
)

// MaxAmountMinor is the largest amount a booking may carry, 1,000,000 cedis.
const MaxAmountMinor int64 = 1_000_000 * 100

// MinorFromMajor converts a major-unit amount (cedis) to minor units (pesewas).
func MinorFromMajor(major float64) int64 {
	return int64(math.Round(major * 100))
}

// MajorFromMinor converts minor units to major units.
func MajorFromMinor(minor int64) float64 {
	return float64(minor) / 100
}

// Booking is the aggregate root for a room booking and its payment.
type Booking struct {
	id            uuid.UUID
	guestName     string
	customerEmail string
	phone         string
	roomName      string
	date          string
	time          string
	network       string
	amountMinor   int64
	transactionID string
	status        Status
	paymentDate   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewBookingParams is the client-submitted data for a booking.
type NewBookingParams struct {
	GuestName     string
	CustomerEmail string
	Phone         string
	RoomName      string
	Date          string
	Time          string
	Network       string
	AmountMinor   int64
	TransactionID string
	Status        Status
}

// NewBooking creates a client-submitted booking. Status defaults to pending.
func NewBooking(p NewBookingParams) (*Booking, error) {
	fields := map[string]string{}
	required := map[string]string{
		"guestName":     p.GuestName,
		"customerEmail": p.CustomerEmail,
		"phone":         p.Phone,
		"room":          p.RoomName,
		"date":          p.Date,
		"time":          p.Time,
		"network":       p.Network,
		"transactionId": p.TransactionID,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			fields[name] = name + " is required"
		}
	}
	switch {
	case p.AmountMinor <= 0:
		fields["amount"] = "amount must be greater than 0"
	case p.AmountMinor > MaxAmountMinor:
		fields["amount"] = "amount must be at most 1000000"
	}

	status := p.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		fields["status"] = "status must be one of [pending completed failed]"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError("missing or invalid fields", fields)
	}

	now := time.Now().UTC()
	b := &Booking{
		id:            uuid.New(),
		guestName:     strings.TrimSpace(p.GuestName),
		customerEmail: strings.TrimSpace(p.CustomerEmail),
		phone:         strings.TrimSpace(p.Phone),
		roomName:      strings.TrimSpace(p.RoomName),
		date:          p.Date,
		time:          p.Time,
		network:       p.Network,
		amountMinor:   p.AmountMinor,
		transactionID: strings.TrimSpace(p.TransactionID),
		status:        status,
		createdAt:     now,
		updatedAt:     now,
	}
	if status == StatusCompleted {
		b.paymentDate = &now
	}
	return b, nil
}

// Confirmation is a successful payment as reported by the gateway,
// already mapped to booking fields.
type Confirmation struct {
	Reference     string
	CustomerEmail string
	Phone         string
	RoomName      string
	Network       string
	AmountMinor   int64
	PaidAt        time.Time
}

// NewConfirmedBooking creates a completed booking on first sight of a
// successful payment reference.
func NewConfirmedBooking(c Confirmation) *Booking {
	now := time.Now().UTC()
	paidAt := c.PaidAt.UTC()
	return &Booking{
		id:            uuid.New(),
		customerEmail: c.CustomerEmail,
		phone:         c.Phone,
		roomName:      c.RoomName,
		network:       c.Network,
		amountMinor:   c.AmountMinor,
		transactionID: c.Reference,
		status:        StatusCompleted,
		paymentDate:   &paidAt,
		createdAt:     now,
		updatedAt:     now,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID { return b.id }
func (b *Booking) GuestName() string { return b.guestName }
func (b *Booking) CustomerEmail() string { return b.customerEmail }
func (b *Booking) Phone() string { return b.phone }
func (b *Booking) RoomName() string { return b.roomName }
func (b *Booking) Date() string { return b.date }
func (b *Booking) Time() string { return b.time }
func (b *Booking) Network() string { return b.network }
func (b *Booking) AmountMinor() int64 { return b.amountMinor }
func (b *Booking) Amount() float64 { return MajorFromMinor(b.amountMinor) }
func (b *Booking) TransactionID() string { return b.transactionID }
func (b *Booking) Status() Status { return b.status }
func (b *Booking) PaymentDate() *time.Time { return b.paymentDate }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }
func (b *Booking) IsCompleted() bool { return b.status == StatusCompleted }

// --- Behavior / State Transitions ---

// Complete moves a pending or failed booking to completed. Completed is
// terminal, so completing twice is rejected.
func (b *Booking) Complete(paidAt time.Time) error {
	if b.status == StatusCompleted {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	paidAt = paidAt.UTC()
	b.status = StatusCompleted
	b.paymentDate = &paidAt
	b.updatedAt = time.Now().UTC()
	return nil
}

// --- Reconstitution (used by repository to rebuild from persistence) ---

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(
	id uuid.UUID,
	guestName, customerEmail, phone, roomName, date, timeOfDay, network string,
	amountMinor int64,
	transactionID string,
	status Status,
	paymentDate *time.Time,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		guestName:     guestName,
		customerEmail: customerEmail,
		phone:         phone,
		roomName:      roomName,
		date:          date,
		time:          timeOfDay,
		network:       network,
		amountMinor:   amountMinor,
		transactionID: transactionID,
		status:        status,
		paymentDate:   paymentDate,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}
