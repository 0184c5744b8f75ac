package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yafafa-lodge/service-booking/internal/application"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
	"github.com/yafafa-lodge/service-booking/pkg/events"
	"github.com/yafafa-lodge/service-booking/pkg/kafka"
)

const (
	defaultMaxAttempts   = 5
	defaultRetryInterval = 2 * time.Second
)

// ReverifyHandler re-runs verification for a queued reference.
type ReverifyHandler interface {
	HandleReverifyRequested(ctx context.Context, event events.ReverifyRequestedEvent) error
}

var _ ReverifyHandler = (*application.PaymentService)(nil)

// PaymentCommandConsumer listens to payment commands and re-verifies
// references the client verify path could not confirm.
type PaymentCommandConsumer struct {
	consumer      *kafka.Consumer
	handler       ReverifyHandler
	publisher     application.EventPublisher
	logger        *zap.Logger
	maxAttempts   int
	retryInterval time.Duration
}

// NewPaymentCommandConsumer creates a new consumer for payment commands.
func NewPaymentCommandConsumer(
	brokers []string,
	groupID string,
	handler ReverifyHandler,
	publisher application.EventPublisher,
	logger *zap.Logger,
) *PaymentCommandConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentCommands, logger)
	return &PaymentCommandConsumer{
		consumer:      consumer,
		handler:       handler,
		publisher:     publisher,
		logger:        logger,
		maxAttempts:   defaultMaxAttempts,
		retryInterval: defaultRetryInterval,
	}
}

// Start begins consuming payment commands. It blocks until the context is cancelled.
func (c *PaymentCommandConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming Kafka messages to the appropriate handler.
func (c *PaymentCommandConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		// A malformed message will never parse; commit it and move on.
		c.logger.Error("failed to parse cloud event from payment commands topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil
	}

	c.logger.Info("received payment command",
		zap.String("type", cloudEvent.Type),
		zap.String("id", cloudEvent.ID),
	)

	switch {
	case strings.EqualFold(cloudEvent.Type, events.PaymentReverifyRequested):
		return c.handleReverifyRequested(ctx, cloudEvent)

	default:
		c.logger.Debug("ignoring unhandled payment command type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// handleReverifyRequested processes a ReverifyRequestedEvent, retrying with
// exponential backoff while the handler fails. A message that exhausts its
// attempts, or fails permanently, is parked on the dead-letter topic so the
// offset can be committed.
func (c *PaymentCommandConsumer) handleReverifyRequested(ctx context.Context, ce kafka.CloudEvent) error {
	var event events.ReverifyRequestedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse ReverifyRequestedEvent data", zap.Error(err))
		return nil
	}

	attempt := 0
	op := func() error {
		attempt++
		err := c.handler.HandleReverifyRequested(ctx, event)
		if err == nil {
			return nil
		}
		c.logger.Warn("reverify attempt failed",
			zap.String("reference", event.Reference),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(c.retryPolicy(), ctx))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.logger.Error("giving up on payment reverify",
		zap.String("reference", event.Reference),
		zap.Int("attempts", attempt),
		zap.Error(err),
	)
	return c.deadLetter(ctx, ce, err)
}

func (c *PaymentCommandConsumer) retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(c.maxAttempts-1))
}

// deadLetter publishes the original command to the dead-letter topic. If
// that fails the error is returned and the command is redelivered.
func (c *PaymentCommandConsumer) deadLetter(ctx context.Context, ce kafka.CloudEvent, cause error) error {
	if err := c.publisher.PublishEvent(ctx, events.TopicPaymentCommandsDLQ, ce); err != nil {
		return fmt.Errorf("dead-letter %s after %v: %w", ce.ID, cause, err)
	}
	c.logger.Warn("payment command dead-lettered",
		zap.String("id", ce.ID),
		zap.String("subject", ce.Subject),
	)
	return nil
}

// isPermanent reports whether retrying err cannot succeed.
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrVerificationFailed) ||
		errors.Is(err, domain.ErrInvalidState)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentCommandConsumer) Close() error {
	return c.consumer.Close()
}
