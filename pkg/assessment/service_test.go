package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/mobility/pkg/common/models"
	"github.com/synaptica-ai/mobility/pkg/observability/metrics"
)

type fakeAudit struct {
	rows []models.AssessmentAudit
	err  error
}

func (f *fakeAudit) Record(_ context.Context, audit models.AssessmentAudit) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, audit)
	return nil
}

type publishedEvent struct {
	eventType string
	source    string
	data      map[string]interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, eventType, source string, data map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{eventType, source, data})
	return nil
}

type fakeCounter struct {
	levels []string
	err    error
}

func (f *fakeCounter) Increment(_ context.Context, riskLevel string) error {
	f.levels = append(f.levels, riskLevel)
	return f.err
}

type fakeCalculator struct {
	result models.BaseRiskResult
	err    error
	calls  int
}

func (f *fakeCalculator) Calculate(_ context.Context, _ models.PatientProfile) (models.BaseRiskResult, error) {
	f.calls++
	return f.result, f.err
}

func TestServiceAssessRunsSideChannels(t *testing.T) {
	metrics.Reset()
	audit := &fakeAudit{}
	events := &fakePublisher{}
	counter := &fakeCounter{}
	svc := NewService(newTestEngine(), NewValidator(false), Dependencies{Audit: audit, Events: events, Counter: counter}, "mobility-service")

	result, err := svc.Assess(context.Background(), "req-1", dorothyBase())
	require.NoError(t, err)
	assert.Equal(t, 7.8, result.StayPredictions.LengthOfStay.PredictedDays)

	require.Len(t, audit.rows, 1)
	row := audit.rows[0]
	assert.Equal(t, "req-1", row.RequestID)
	assert.Equal(t, "walking_assist", row.MobilityStatus)
	assert.Equal(t, 0.269, row.ReadmissionProbability)
	assert.Contains(t, row.Factors, "immobile_ge3")
	assert.Contains(t, row.Factors, "diabetes")

	assert.Equal(t, []string{"high"}, counter.levels)

	require.Len(t, events.events, 1)
	assert.Equal(t, models.EventAssessmentCompleted, events.events[0].eventType)
	assert.Equal(t, "mobility-service", events.events[0].source)
	assert.Equal(t, "req-1", events.events[0].data["request_id"])
	assert.Contains(t, events.events[0].data, "stay_predictions")

	assert.Equal(t, int64(1), metrics.Current().Assessments)
}

func TestServiceSideChannelFailuresDoNotFailAssessment(t *testing.T) {
	metrics.Reset()
	boom := errors.New("unavailable")
	svc := NewService(newTestEngine(), NewValidator(false), Dependencies{
		Audit:   &fakeAudit{err: boom},
		Events:  &fakePublisher{err: boom},
		Counter: &fakeCounter{err: boom},
	}, "mobility-service")

	_, err := svc.Assess(context.Background(), "req-2", dorothyBase())
	require.NoError(t, err)
	assert.Equal(t, int64(3), metrics.Current().SideChannelFailures)
}

func TestServiceRequiredPublishFailureFailsAssessment(t *testing.T) {
	metrics.Reset()
	audit := &fakeAudit{}
	counter := &fakeCounter{}
	svc := NewService(newTestEngine(), NewValidator(false), Dependencies{
		Audit:         audit,
		Events:        &fakePublisher{err: errors.New("broker down")},
		Counter:       counter,
		RequireEvents: true,
	}, "mobility-worker")

	_, err := svc.Assess(context.Background(), "req-10", dorothyBase())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.False(t, IsValidationError(err))

	assert.Empty(t, audit.rows)
	assert.Empty(t, counter.levels)
	assert.Zero(t, metrics.Current().Assessments)
	assert.Equal(t, int64(1), metrics.Current().SideChannelFailures)
}

func TestServiceAssessWithoutDependencies(t *testing.T) {
	svc := NewService(newTestEngine(), NewValidator(false), Dependencies{}, "test")

	_, err := svc.Assess(context.Background(), "req-3", dorothyBase())
	assert.NoError(t, err)
}

func TestServiceStrictRejection(t *testing.T) {
	metrics.Reset()
	base := dorothyBase()
	base.InputEcho.MobilityStatus = "crawling"
	events := &fakePublisher{}
	svc := NewService(newTestEngine(), NewValidator(true), Dependencies{Events: events}, "test")

	_, err := svc.Assess(context.Background(), "req-4", base)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, events.events)
	assert.Equal(t, int64(1), metrics.Current().Rejected)
}

func TestServiceLenientUnknownEnumContributesNothing(t *testing.T) {
	metrics.Reset()
	base := dorothyBase()
	base.InputEcho.MobilityStatus = "crawling"
	svc := NewService(newTestEngine(), NewValidator(false), Dependencies{}, "test")

	result, err := svc.Assess(context.Background(), "req-5", base)
	require.NoError(t, err)
	// 5.5 + immobile 1.0 + age 70 0.6 + age 80 0.5
	assert.Equal(t, 7.6, result.StayPredictions.LengthOfStay.PredictedDays)
	assert.Equal(t, int64(1), metrics.Current().UnknownEnums)
}

func TestServiceAssessProfile(t *testing.T) {
	upstream := dorothyBase()
	upstream.InputEcho = models.PatientProfile{}
	calc := &fakeCalculator{result: upstream}
	svc := NewService(newTestEngine(), NewValidator(false), Dependencies{BaseCalculator: calc}, "test")

	result, err := svc.AssessProfile(context.Background(), "req-6", dorothy())
	require.NoError(t, err)
	assert.Equal(t, 1, calc.calls)
	assert.Equal(t, 82, result.InputEcho.Age)
	assert.Equal(t, 7.8, result.StayPredictions.LengthOfStay.PredictedDays)
}

func TestServiceAssessProfileErrors(t *testing.T) {
	svc := NewService(newTestEngine(), NewValidator(false), Dependencies{}, "test")
	_, err := svc.AssessProfile(context.Background(), "req-7", dorothy())
	assert.ErrorIs(t, err, ErrBaseCalculatorUnavailable)

	calc := &fakeCalculator{err: errors.New("connection refused")}
	svc = NewService(newTestEngine(), NewValidator(false), Dependencies{BaseCalculator: calc}, "test")
	_, err = svc.AssessProfile(context.Background(), "req-8", dorothy())
	assert.Error(t, err)
	assert.False(t, IsValidationError(err))

	bad := dorothy()
	bad.Age = -3
	_, err = svc.AssessProfile(context.Background(), "req-9", bad)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, 1, calc.calls)
}

func TestDecodeBaseResult(t *testing.T) {
	data, err := toMap(dorothyBase())
	require.NoError(t, err)

	base, err := DecodeBaseResult(data)
	require.NoError(t, err)
	assert.Equal(t, dorothyBase(), base)

	_, err = DecodeBaseResult(map[string]interface{}{"vte": "not an object"})
	assert.True(t, IsValidationError(err))
}
