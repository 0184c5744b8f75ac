package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents      = "booking.events"
	TopicPaymentCommands    = "payment.commands"
	TopicPaymentCommandsDLQ = "payment.commands.dlq"
)

// CloudEvent types.
const (
	BookingConfirmed         = "booking.confirmed"
	PaymentReverifyRequested = "payment.reverify.requested"
)

// BookingConfirmedEvent is published once per booking, when a payment
// confirmation first takes effect. Notification senders consume it.
type BookingConfirmedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	TransactionID string    `json:"transaction_id"`
	GuestName     string    `json:"guest_name,omitempty"`
	CustomerEmail string    `json:"customer_email"`
	Phone         string    `json:"phone"`
	RoomName      string    `json:"room_name"`
	Network       string    `json:"network"`
	Amount        float64   `json:"amount"`
	Channel       string    `json:"channel"`
	PaidAt        time.Time `json:"paid_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReverifyRequestedEvent asks the service to verify a reference again,
// typically after the gateway could not be reached during a client verify.
type ReverifyRequestedEvent struct {
	Reference  string    `json:"reference"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
