package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yafafa-lodge/service-booking/internal/adapter"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
	"github.com/yafafa-lodge/service-booking/pkg/events"
	"github.com/yafafa-lodge/service-booking/pkg/kafka"
)

const publishTimeout = 5 * time.Second

// InitializePaymentRequest is the DTO for starting a mobile-money charge.
type InitializePaymentRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Amount   float64         `json:"amount" binding:"required,gt=0,lte=1000000"`
	Metadata json.RawMessage `json:"metadata"`
}

// PaymentService orchestrates the gateway-facing payment use cases.
type PaymentService struct {
	gateway    adapter.PaymentGateway
	reconciler *Reconciler
	publisher  EventPublisher
	logger     *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	gateway adapter.PaymentGateway,
	reconciler *Reconciler,
	publisher EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		gateway:    gateway,
		reconciler: reconciler,
		publisher:  publisher,
		logger:     logger,
	}
}

// InitializePayment starts a charge and returns the gateway payload as-is.
func (s *PaymentService) InitializePayment(ctx context.Context, req InitializePaymentRequest) (json.RawMessage, error) {
	s.logger.Info("initializing payment",
		zap.String("email", req.Email),
		zap.Float64("amount", req.Amount),
	)

	payload, err := s.gateway.InitializeCharge(ctx, req.Email, req.Amount, req.Metadata)
	if err != nil {
		s.logger.Error("failed to initialize payment", zap.Error(err))
		return nil, err
	}
	return payload, nil
}

// VerifyPayment confirms a reference with the gateway and reconciles it.
// When the gateway is unreachable a background re-verification is queued
// before the error is returned.
func (s *PaymentService) VerifyPayment(ctx context.Context, reference string) (*BookingDTO, error) {
	tx, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			s.requestReverify(ctx, reference, err.Error())
		}
		s.logger.Warn("payment verification failed",
			zap.String("reference", reference),
			zap.Error(err),
		)
		return nil, err
	}

	result, err := s.reconciler.Apply(ctx, SourceVerify, tx)
	if err != nil {
		return nil, err
	}

	dto := toBookingDTO(result.Booking)
	return &dto, nil
}

// HandleReverifyRequested re-runs verification for a queued reference.
// A terminal verification failure is logged and swallowed; an unreachable
// gateway or a store failure is returned so the message can be retried.
func (s *PaymentService) HandleReverifyRequested(ctx context.Context, event events.ReverifyRequestedEvent) error {
	s.logger.Info("handling reverify request",
		zap.String("reference", event.Reference),
		zap.String("reason", event.Reason),
	)

	tx, err := s.gateway.VerifyTransaction(ctx, event.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrVerificationFailed) {
			s.logger.Warn("reverify: payment not successful, dropping",
				zap.String("reference", event.Reference),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	_, err = s.reconciler.Apply(ctx, SourceReverify, tx)
	return err
}

func (s *PaymentService) requestReverify(ctx context.Context, reference, reason string) {
	ce, err := kafka.NewCloudEvent(serviceName, events.PaymentReverifyRequested, events.ReverifyRequestedEvent{
		Reference:  reference,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to build reverify event", zap.Error(err))
		return
	}
	ce.Subject = reference

	// The caller may already have gone away; the request must still be queued.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishEvent(pubCtx, events.TopicPaymentCommands, ce); err != nil {
		s.logger.Error("failed to queue payment reverify",
			zap.String("reference", reference),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("payment reverify queued", zap.String("reference", reference))
}
