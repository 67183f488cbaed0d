package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/common/logger"
	"github.com/synaptica-ai/mobility/pkg/common/models"
	"github.com/synaptica-ai/mobility/pkg/observability/metrics"
)

// AuditRecorder stores computation audit rows.
type AuditRecorder interface {
	Record(ctx context.Context, audit models.AssessmentAudit) error
}

// EventPublisher matches kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// Counter matches metrics.DailyCounter.
type Counter interface {
	Increment(ctx context.Context, riskLevel string) error
}

// BaseCalculator produces base risk results for a raw profile.
type BaseCalculator interface {
	Calculate(ctx context.Context, profile models.PatientProfile) (models.BaseRiskResult, error)
}

// Dependencies are optional side channels. Nil fields are skipped.
type Dependencies struct {
	Audit          AuditRecorder
	Events         EventPublisher
	Counter        Counter
	BaseCalculator BaseCalculator
	// RequireEvents makes a failed publish fail the assessment. Set it where
	// the event is the only output.
	RequireEvents bool
}

// Service wraps the engine with validation and best-effort side channels.
type Service struct {
	engine    *Engine
	validator Validator
	deps      Dependencies
	source    string
}

func NewService(engine *Engine, validator Validator, deps Dependencies, source string) *Service {
	return &Service{engine: engine, validator: validator, deps: deps, source: source}
}

func (s *Service) Engine() *Engine {
	return s.engine
}

// Assess validates base and returns the augmented result. Audit and counter
// failures are logged and never fail the call; event failures do only when
// RequireEvents is set, in which case audit and counter are skipped so a
// redelivered input is not counted twice.
func (s *Service) Assess(ctx context.Context, requestID string, base models.BaseRiskResult) (models.AugmentedResult, error) {
	start := time.Now()
	warnings, err := s.validator.Validate(base)
	if err != nil {
		metrics.ObserveRejection()
		return models.AugmentedResult{}, err
	}
	if len(warnings) > 0 {
		metrics.ObserveUnknownEnums(len(warnings))
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"warnings":   joinWarnings(warnings),
		}).Warn("Unrecognised profile values contribute nothing")
	}

	result, flags := s.engine.augment(base)
	latency := time.Since(start)
	risk := result.StayPredictions.ReadmissionRisk.RiskLevel

	if err := s.publish(ctx, requestID, result); err != nil {
		metrics.ObserveSideChannelFailure()
		if s.deps.RequireEvents {
			logger.WithError(err).WithField("request_id", requestID).Error("Failed to publish assessment event")
			return models.AugmentedResult{}, err
		}
		logger.WithError(err).WithField("request_id", requestID).Warn("Failed to publish assessment event")
	}
	metrics.ObserveAssessment(risk)

	s.record(ctx, requestID, base.InputEcho, flags, result, latency)
	s.count(ctx, requestID, risk)

	logger.WithFields(map[string]interface{}{
		"request_id":      requestID,
		"predicted_days":  result.StayPredictions.LengthOfStay.PredictedDays,
		"los_confidence":  result.StayPredictions.LengthOfStay.ConfidenceLevel,
		"readmission":     risk,
		"latency_micros":  latency.Microseconds(),
		"mobility_status": base.InputEcho.MobilityStatus,
	}).Info("Assessment completed")

	return result, nil
}

// AssessProfile obtains base risks from the upstream calculator first.
func (s *Service) AssessProfile(ctx context.Context, requestID string, profile models.PatientProfile) (models.AugmentedResult, error) {
	if s.deps.BaseCalculator == nil {
		return models.AugmentedResult{}, ErrBaseCalculatorUnavailable
	}
	if _, err := s.validator.ValidateProfile(profile); err != nil {
		metrics.ObserveRejection()
		return models.AugmentedResult{}, err
	}
	base, err := s.deps.BaseCalculator.Calculate(ctx, profile)
	if err != nil {
		return models.AugmentedResult{}, err
	}
	// The engine reads the profile we were given, not the upstream echo.
	base.InputEcho = profile
	return s.Assess(ctx, requestID, base)
}

func (s *Service) record(ctx context.Context, requestID string, profile models.PatientProfile, flags clinical.RiskFlags, result models.AugmentedResult, latency time.Duration) {
	if s.deps.Audit == nil {
		return
	}
	audit := models.AssessmentAudit{
		RequestID:              requestID,
		MobilityStatus:         string(profile.MobilityStatus),
		LevelOfCare:            string(profile.LevelOfCare),
		PredictedDays:          result.StayPredictions.LengthOfStay.PredictedDays,
		HomeProbability:        result.StayPredictions.DischargeDisposition.HomeProbability,
		ReadmissionProbability: result.StayPredictions.ReadmissionRisk.ThirtyDayProbability,
		Factors:                flagNames(flags),
		Latency:                latency,
	}
	if err := s.deps.Audit.Record(ctx, audit); err != nil {
		metrics.ObserveSideChannelFailure()
		logger.WithError(err).WithField("request_id", requestID).Warn("Failed to record assessment audit")
	}
}

func (s *Service) count(ctx context.Context, requestID, risk string) {
	if s.deps.Counter == nil {
		return
	}
	if err := s.deps.Counter.Increment(ctx, risk); err != nil {
		metrics.ObserveSideChannelFailure()
		logger.WithError(err).WithField("request_id", requestID).Warn("Failed to increment daily counter")
	}
}

func (s *Service) publish(ctx context.Context, requestID string, result models.AugmentedResult) error {
	if s.deps.Events == nil {
		return nil
	}
	data, err := toMap(result)
	if err != nil {
		return err
	}
	data["request_id"] = requestID
	if err := s.deps.Events.PublishEvent(ctx, models.EventAssessmentCompleted, s.source, data); err != nil {
		return fmt.Errorf("publish assessment %s: %w", requestID, err)
	}
	return nil
}

func flagNames(f clinical.RiskFlags) []string {
	active := f.Active.Flags()
	names := make([]string, 0, len(active))
	for _, flag := range active {
		names = append(names, flag.String())
	}
	return names
}

func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode event data: %w", err)
	}
	return out, nil
}

// DecodeBaseResult converts event data back into a base risk result.
func DecodeBaseResult(data map[string]interface{}) (models.BaseRiskResult, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return models.BaseRiskResult{}, fmt.Errorf("encode event data: %w", err)
	}
	var base models.BaseRiskResult
	if err := json.Unmarshal(raw, &base); err != nil {
		return models.BaseRiskResult{}, &ValidationError{Field: "data", Reason: err.Error(), Err: err}
	}
	return base, nil
}
