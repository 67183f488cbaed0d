package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/synaptica-ai/mobility/pkg/assessment"
	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/common/config"
	"github.com/synaptica-ai/mobility/pkg/common/database"
	"github.com/synaptica-ai/mobility/pkg/common/kafka"
	"github.com/synaptica-ai/mobility/pkg/common/logger"
	"github.com/synaptica-ai/mobility/pkg/common/models"
	"github.com/synaptica-ai/mobility/pkg/observability/metrics"
)

const serviceName = "mobility-worker"

type Worker struct {
	service *assessment.Service
}

// processEvent returns kafka.Reject for payloads that can never succeed so
// the consumer dead-letters them. Publish failures are returned without Reject
// so the consumer retries the same message.
func (w *Worker) processEvent(ctx context.Context, event models.Event) error {
	if event.Type != "" && event.Type != models.EventBaseRiskCompleted {
		logger.Log.WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Debug("Skipping unrelated event")
		return nil
	}

	base, err := assessment.DecodeBaseResult(event.Data)
	if err != nil {
		return kafka.Reject(err)
	}

	requestID := event.ID
	if id, ok := event.Metadata["request_id"]; ok && id != "" {
		requestID = id
	}

	if _, err := w.service.Assess(ctx, requestID, base); err != nil {
		if assessment.IsValidationError(err) {
			return kafka.Reject(err)
		}
		return fmt.Errorf("assess event %s: %w", event.ID, err)
	}
	return nil
}

func main() {
	logger.Init(serviceName)
	cfg := config.Load()

	vocab, err := clinical.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.VocabularyPath).Warn("Vocabulary not loaded, using defaults")
		vocab = clinical.DefaultVocabulary()
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.AssessmentTopic)
	defer producer.Close()

	dlq := kafka.NewProducer(cfg.KafkaBrokers, cfg.AssessmentDLQTopic)
	defer dlq.Close()

	deps := assessment.Dependencies{
		Events:        producer,
		Counter:       metrics.NewDailyCounter(database.GetRedis(cfg), cfg.MetricsCounterTTL),
		RequireEvents: true,
	}
	defer database.CloseRedis()

	if cfg.AuditEnabled {
		db, err := database.GetPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Audit enabled but PostgreSQL unavailable")
		}
		defer database.ClosePostgres()
		repo := assessment.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate audit table")
		}
		deps.Audit = repo
	}

	worker := &Worker{
		service: assessment.NewService(assessment.NewEngine(vocab), assessment.NewValidator(cfg.StrictEnums), deps, serviceName),
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.BaseRiskTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"topic":    cfg.BaseRiskTopic,
			"group_id": cfg.KafkaGroupID,
			"dlq":      cfg.AssessmentDLQTopic,
		}).Info("Mobility Worker started")
		done <- consumer.Consume(ctx, worker.processEvent, dlq)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Log.Info("Shutting down Mobility Worker...")
		cancel()
		<-done
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("Consumer stopped")
		}
	}

	logger.Log.Info("Mobility Worker stopped")
}
