package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/synaptica-ai/mobility/pkg/common/logger"
	"github.com/synaptica-ai/mobility/pkg/common/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	topic  string
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{topic: topic, writer: writer}
}

func (p *Producer) Topic() string {
	return p.topic
}

func (p *Producer) PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.ID),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
			{Key: "source", Value: []byte(source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": eventType,
		}).Error("Failed to publish event")
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": eventType,
		"topic":      p.topic,
	}).Debug("Event published")

	return nil
}

// DeadLetter forwards an unprocessable payload unchanged, annotated with the
// rejection reason and the topic it was read from.
func (p *Producer) DeadLetter(ctx context.Context, raw []byte, sourceTopic string, reason error) error {
	if err := p.writer.WriteMessages(ctx, deadLetterMessage(raw, sourceTopic, reason)); err != nil {
		return fmt.Errorf("failed to dead-letter message: %w", err)
	}
	logger.Log.WithFields(map[string]interface{}{
		"topic":        p.topic,
		"source_topic": sourceTopic,
		"reason":       reason.Error(),
	}).Warn("Message dead-lettered")
	return nil
}

func deadLetterMessage(raw []byte, sourceTopic string, reason error) kafka.Message {
	return kafka.Message{
		Key:   []byte(uuid.New().String()),
		Value: raw,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(models.EventAssessmentRejected)},
			{Key: "source-topic", Value: []byte(sourceTopic)},
			{Key: "error", Value: []byte(reason.Error())},
		},
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
