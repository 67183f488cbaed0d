package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/mobility/pkg/assessment"
	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/common/kafka"
	"github.com/synaptica-ai/mobility/pkg/common/models"
)

type capturePublisher struct {
	data  []map[string]interface{}
	err   error
	calls int
}

func (c *capturePublisher) PublishEvent(_ context.Context, _ string, _ string, data map[string]interface{}) error {
	c.calls++
	if c.err != nil {
		return c.err
	}
	c.data = append(c.data, data)
	return nil
}

func newTestWorker(strict bool, events assessment.EventPublisher) *Worker {
	svc := assessment.NewService(
		assessment.NewEngine(clinical.DefaultVocabulary()),
		assessment.NewValidator(strict),
		assessment.Dependencies{Events: events, RequireEvents: true},
		serviceName,
	)
	return &Worker{service: svc}
}

func baseEvent() models.Event {
	echo := map[string]interface{}{
		"age":              82,
		"level_of_care":    "rehab",
		"mobility_status":  "walking_assist",
		"cognitive_status": "normal",
		"days_immobile":    12,
		"comorbidities":    []interface{}{"diabetes"},
	}
	return models.Event{
		ID:   "evt-1",
		Type: models.EventBaseRiskCompleted,
		Data: map[string]interface{}{
			"deconditioning":          map[string]interface{}{"probability": 0.647, "severity": "high"},
			"vte":                     map[string]interface{}{"probability": 0.2, "severity": "moderate"},
			"falls":                   map[string]interface{}{"probability": 0.3, "severity": "moderate"},
			"pressure":                map[string]interface{}{"probability": 0.1, "severity": "low"},
			"mobility_recommendation": "Ambulate twice daily",
			"input_echo":              echo,
		},
		Metadata: map[string]string{"request_id": "req-77"},
	}
}

func TestProcessEventPublishesAssessment(t *testing.T) {
	events := &capturePublisher{}
	w := newTestWorker(false, events)

	require.NoError(t, w.processEvent(context.Background(), baseEvent()))
	require.Len(t, events.data, 1)
	assert.Equal(t, "req-77", events.data[0]["request_id"])

	stay := events.data[0]["stay_predictions"].(map[string]interface{})
	los := stay["length_of_stay"].(map[string]interface{})
	assert.Equal(t, 7.8, los["predicted_days"])
}

func TestProcessEventRejectsInvalidPayloads(t *testing.T) {
	w := newTestWorker(true, &capturePublisher{})

	undecodable := baseEvent()
	undecodable.Data["vte"] = "high"
	assert.True(t, errors.Is(w.processEvent(context.Background(), undecodable), kafka.ErrRejected))

	unknown := baseEvent()
	unknown.Data["input_echo"].(map[string]interface{})["mobility_status"] = "crawling"
	assert.True(t, errors.Is(w.processEvent(context.Background(), unknown), kafka.ErrRejected))
}

func TestProcessEventSkipsOtherTypes(t *testing.T) {
	events := &capturePublisher{}
	w := newTestWorker(false, events)

	event := baseEvent()
	event.Type = "something.else"
	assert.NoError(t, w.processEvent(context.Background(), event))
	assert.Empty(t, events.data)
}

func TestProcessEventPublishFailureIsRetried(t *testing.T) {
	events := &capturePublisher{err: errors.New("broker down")}
	w := newTestWorker(false, events)

	err := w.processEvent(context.Background(), baseEvent())
	require.Error(t, err)
	assert.False(t, errors.Is(err, kafka.ErrRejected))
	assert.Equal(t, 1, events.calls)
	assert.Empty(t, events.data)
}
