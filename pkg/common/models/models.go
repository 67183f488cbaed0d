package models

import (
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // base-risk.completed, mobility.assessment.completed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventBaseRiskCompleted   = "base-risk.completed"
	EventAssessmentCompleted = "mobility.assessment.completed"
	EventAssessmentRejected  = "mobility.assessment.rejected"
)

// Assessment audit (computation log, no identifiers)
type AssessmentAudit struct {
	RequestID              string        `json:"request_id"`
	MobilityStatus         string        `json:"mobility_status"`
	LevelOfCare            string        `json:"level_of_care"`
	PredictedDays          float64       `json:"predicted_days"`
	HomeProbability        float64       `json:"home_probability"`
	ReadmissionProbability float64       `json:"readmission_probability"`
	Factors                []string      `json:"factors"`
	Latency                time.Duration `json:"latency"`
}
