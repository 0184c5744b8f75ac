package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/yafafa-lodge/service-booking/internal/domain/booking"
)

const serviceName = "service-booking"

// BookingDTO is the API representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID  `json:"id"`
	GuestName     string     `json:"guestName"`
	CustomerEmail string     `json:"customerEmail"`
	Phone         string     `json:"phone"`
	RoomName      string     `json:"roomName"`
	Date          string     `json:"date"`
	Time          string     `json:"time"`
	Network       string     `json:"network"`
	Amount        float64    `json:"amount"`
	TransactionID string     `json:"transactionId"`
	Status        string     `json:"status"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// BookingStatsDTO summarises bookings for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"totalBookings"`
	Revenue       float64          `json:"revenue"`
	ByStatus      map[string]int64 `json:"byStatus"`
}

func toBookingDTO(b *booking.Booking) BookingDTO {
	return BookingDTO{
		ID:            b.ID(),
		GuestName:     b.GuestName(),
		CustomerEmail: b.CustomerEmail(),
		Phone:         b.Phone(),
		RoomName:      b.RoomName(),
		Date:          b.Date(),
		Time:          b.Time(),
		Network:       b.Network(),
		Amount:        b.Amount(),
		TransactionID: b.TransactionID(),
		Status:        string(b.Status()),
		PaymentDate:   b.PaymentDate(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	}
}
