package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const defaultRedeliveryDelay = 5 * time.Second

// MessageHandler processes one message. Returning an error leaves the
// offset uncommitted and the message is fetched again before any later
// message on its partition is committed.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads a topic as part of a consumer group.
type Consumer struct {
	mu              sync.Mutex
	reader          messageReader
	newReader       func() messageReader
	logger          *zap.Logger
	redeliveryDelay time.Duration
}

// NewConsumer creates a Consumer for topic in group groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	cfg := kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
	newReader := func() messageReader { return kafkago.NewReader(cfg) }
	return &Consumer{
		reader:          newReader(),
		newReader:       newReader,
		logger:          logger,
		redeliveryDelay: defaultRedeliveryDelay,
	}
}

// Consume fetches messages until ctx is cancelled, committing each one
// after handler succeeds. When handler fails the reader is reopened, so
// the group resumes from the last committed offset and redelivers the
// failed message.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := handler(ctx, msg); err != nil {
			c.logger.Error("message handler failed, redelivering from last commit",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			if err := c.rewind(ctx); err != nil {
				return err
			}
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// rewind drops the reader's fetch position by reopening it.
func (c *Consumer) rewind(ctx context.Context) error {
	c.mu.Lock()
	if err := c.reader.Close(); err != nil {
		c.logger.Warn("failed to close reader before redelivery", zap.Error(err))
	}
	c.reader = c.newReader()
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.redeliveryDelay):
		return nil
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reader.Close()
}
