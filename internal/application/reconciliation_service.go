package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/yafafa-lodge/service-booking/internal/adapter"
	"github.com/yafafa-lodge/service-booking/internal/domain/booking"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
	"github.com/yafafa-lodge/service-booking/pkg/events"
	"github.com/yafafa-lodge/service-booking/pkg/kafka"
)

// RoomMetadataField is the metadata custom field carrying the booked room.
const RoomMetadataField = "room_booked"

// EventPublisher publishes CloudEvents. *kafka.Producer implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// Source names the channel a confirmation arrived through.
type Source string

const (
	SourceVerify   Source = "verify"
	SourceWebhook  Source = "webhook"
	SourceReverify Source = "reverify"
)

// Outcome describes what Apply did to the store.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeCompleted Outcome = "completed"
	OutcomeDuplicate Outcome = "duplicate"
)

// ApplyResult is the booking after Apply and what happened to it.
type ApplyResult struct {
	Booking *booking.Booking
	Outcome Outcome
}

// Changed reports whether Apply wrote to the store.
func (r *ApplyResult) Changed() bool {
	return r.Outcome != OutcomeDuplicate
}

// Reconciler turns successful gateway transactions into completed bookings.
// Every confirmation channel goes through Apply, which is idempotent on the
// transaction reference.
type Reconciler struct {
	repo      booking.BookingRepository
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewReconciler creates a Reconciler.
func NewReconciler(repo booking.BookingRepository, publisher EventPublisher, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ExtractConfirmation maps a gateway transaction to booking fields.
func ExtractConfirmation(tx *adapter.Transaction, now time.Time) booking.Confirmation {
	room, ok := tx.Metadata.Field(RoomMetadataField)
	if !ok {
		room = booking.UnknownRoom
	}

	phone := tx.Customer.Phone
	if phone == "" {
		phone = tx.Authorization.MobileMoneyNumber
	}

	network := booking.UnknownNetwork
	if tx.Authorization.Channel == adapter.ChannelMobileMoney && tx.Authorization.Provider != "" {
		network = capitalize(tx.Authorization.Provider)
	}

	paidAt, ok := tx.PaidTime()
	if !ok {
		paidAt = now
	}

	return booking.Confirmation{
		Reference:     tx.Reference,
		CustomerEmail: tx.Customer.Email,
		Phone:         phone,
		RoomName:      room,
		Network:       network,
		AmountMinor:   tx.Amount,
		PaidAt:        paidAt,
	}
}

// Apply records a successful transaction:
//   - unknown reference: create a completed booking
//   - known, not completed: complete it with a conditional update
//   - known, completed: no-op
//
// A create that loses a race against a concurrent Apply hits the unique
// index and falls back to the conditional update.
func (r *Reconciler) Apply(ctx context.Context, source Source, tx *adapter.Transaction) (*ApplyResult, error) {
	ctx, span := otel.Tracer("reconciler").Start(ctx, "reconciler.apply")
	defer span.End()

	if tx == nil || strings.TrimSpace(tx.Reference) == "" {
		return nil, domain.NewValidationError("transaction reference is required", nil)
	}
	if !tx.Succeeded() {
		return nil, domain.NewVerificationFailedError(tx.Reference, tx.Status)
	}
	span.SetAttributes(
		attribute.String("payment.reference", tx.Reference),
		attribute.String("payment.source", string(source)),
	)

	conf := ExtractConfirmation(tx, r.now())

	result, err := r.apply(ctx, conf)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply failed")
		r.logger.Error("failed to reconcile payment",
			zap.String("reference", conf.Reference),
			zap.String("source", string(source)),
			zap.Error(err),
		)
		return nil, err
	}
	span.SetAttributes(attribute.String("payment.outcome", string(result.Outcome)))

	r.logger.Info("payment reconciled",
		zap.String("reference", conf.Reference),
		zap.String("source", string(source)),
		zap.String("outcome", string(result.Outcome)),
		zap.String("booking_id", result.Booking.ID().String()),
	)

	if result.Changed() {
		r.publishConfirmed(ctx, source, result.Booking)
	}
	return result, nil
}

func (r *Reconciler) apply(ctx context.Context, conf booking.Confirmation) (*ApplyResult, error) {
	existing, err := r.repo.FindByTransactionID(ctx, conf.Reference)
	if err == nil {
		return r.completeExisting(ctx, existing, conf)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	b := booking.NewConfirmedBooking(conf)
	err = r.repo.Save(ctx, b)
	if err == nil {
		return &ApplyResult{Booking: b, Outcome: OutcomeCreated}, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, err
	}

	// Another request created the row between our read and our insert.
	existing, err = r.repo.FindByTransactionID(ctx, conf.Reference)
	if err != nil {
		return nil, err
	}
	return r.completeExisting(ctx, existing, conf)
}

func (r *Reconciler) completeExisting(ctx context.Context, existing *booking.Booking, conf booking.Confirmation) (*ApplyResult, error) {
	if existing.IsCompleted() {
		return &ApplyResult{Booking: existing, Outcome: OutcomeDuplicate}, nil
	}

	changed, err := r.repo.CompleteByTransactionID(ctx, conf.Reference, conf.PaidAt)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Completed concurrently; report the stored state.
		current, err := r.repo.FindByTransactionID(ctx, conf.Reference)
		if err != nil {
			return nil, err
		}
		return &ApplyResult{Booking: current, Outcome: OutcomeDuplicate}, nil
	}

	if err := existing.Complete(conf.PaidAt); err != nil {
		return nil, err
	}
	return &ApplyResult{Booking: existing, Outcome: OutcomeCompleted}, nil
}

// publishConfirmed emits booking.confirmed. The booking is already
// persisted, so a publish failure is logged and not returned.
func (r *Reconciler) publishConfirmed(ctx context.Context, source Source, b *booking.Booking) {
	paidAt := r.now()
	if b.PaymentDate() != nil {
		paidAt = *b.PaymentDate()
	}

	event := events.BookingConfirmedEvent{
		BookingID:     b.ID(),
		TransactionID: b.TransactionID(),
		GuestName:     b.GuestName(),
		CustomerEmail: b.CustomerEmail(),
		Phone:         b.Phone(),
		RoomName:      b.RoomName(),
		Network:       b.Network(),
		Amount:        b.Amount(),
		Channel:       string(source),
		PaidAt:        paidAt,
		OccurredAt:    r.now(),
	}
	ce, err := kafka.NewCloudEvent(serviceName, events.BookingConfirmed, event)
	if err != nil {
		r.logger.Error("failed to build booking confirmed event", zap.Error(err))
		return
	}
	ce.Subject = b.TransactionID()

	if err := r.publisher.PublishEvent(ctx, events.TopicBookingEvents, ce); err != nil {
		r.logger.Error("failed to publish booking confirmed event",
			zap.String("reference", b.TransactionID()),
			zap.Error(err),
		)
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
