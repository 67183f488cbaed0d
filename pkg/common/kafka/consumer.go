package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/synaptica-ai/mobility/pkg/common/logger"
	"github.com/synaptica-ai/mobility/pkg/common/models"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	defaultRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 30 * time.Second
)

type Consumer struct {
	topic      string
	reader     messageReader
	retryDelay time.Duration
}

// EventHandler processes one decoded event. Returning an error wrapped with
// Reject dead-letters the message; any other error retries the same message
// with backoff before the next one is fetched.
type EventHandler func(ctx context.Context, event models.Event) error

// DeadLetterer receives payloads that can never be processed.
type DeadLetterer interface {
	DeadLetter(ctx context.Context, raw []byte, sourceTopic string, reason error) error
}

// ErrRejected marks a permanently unprocessable event.
var ErrRejected = errors.New("event rejected")

// Reject wraps err so the consumer dead-letters rather than retries.
func Reject(err error) error {
	return fmt.Errorf("%w: %w", ErrRejected, err)
}

func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{topic: topic, reader: reader, retryDelay: defaultRetryDelay}
}

// Consume runs until ctx is cancelled. Messages are handled one at a time and
// a message that fails transiently blocks the partition until it settles,
// since committing a later offset would skip it.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler, dlq DeadLetterer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Log.WithError(err).Error("Failed to fetch message")
				continue
			}
			if err := c.settle(ctx, message, handler, dlq); err != nil {
				return err
			}
		}
	}
}

// settle processes message until it is committed or dead-lettered.
func (c *Consumer) settle(ctx context.Context, message kafka.Message, handler EventHandler, dlq DeadLetterer) error {
	delay := c.retryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	for attempt := 1; !c.process(ctx, message, handler, dlq); attempt++ {
		logger.Log.WithFields(map[string]interface{}{
			"offset":  message.Offset,
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warn("Retrying event")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
	return nil
}

// process reports whether message is settled. A false result means it must
// be processed again.
func (c *Consumer) process(ctx context.Context, message kafka.Message, handler EventHandler, dlq DeadLetterer) bool {
	var event models.Event
	err := json.Unmarshal(message.Value, &event)
	if err != nil {
		err = Reject(fmt.Errorf("unmarshal event: %w", err))
	} else {
		err = handler(ctx, event)
	}

	if err != nil && !errors.Is(err, ErrRejected) {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id": event.ID,
			"offset":   message.Offset,
		}).Error("Failed to process event")
		return false
	}

	if err != nil {
		if dlq == nil {
			logger.Log.WithError(err).WithField("offset", message.Offset).Error("Dropping rejected event")
		} else if dlqErr := dlq.DeadLetter(ctx, message.Value, c.topic, err); dlqErr != nil {
			logger.Log.WithError(dlqErr).Error("Failed to dead-letter event")
			return false
		}
	}

	// A failed commit is covered by the next successful one.
	if err := c.reader.CommitMessages(ctx, message); err != nil {
		logger.Log.WithError(err).Error("Failed to commit message")
	}
	return true
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
