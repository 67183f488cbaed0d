package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/mobility/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit listing page sizes.
const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// Repository persists one computation audit row per assessment. Rows hold
// enum inputs and rounded outputs only, never identifiers or free text.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type AuditModel struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID              string    `gorm:"index"`
	MobilityStatus         string    `gorm:"index"`
	LevelOfCare            string
	PredictedDays          float64
	HomeProbability        float64
	ReadmissionProbability float64
	Factors                datatypes.JSON `gorm:"type:jsonb"`
	LatencyMicros          int64
	CreatedAt              time.Time `gorm:"index"`
}

func (AuditModel) TableName() string {
	return "mobility_assessment_audits"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&AuditModel{})
}

func (r *Repository) Record(ctx context.Context, audit models.AssessmentAudit) error {
	factors, err := json.Marshal(nonNil(audit.Factors))
	if err != nil {
		return fmt.Errorf("encode audit factors: %w", err)
	}

	row := AuditModel{
		ID:                     uuid.New(),
		RequestID:              audit.RequestID,
		MobilityStatus:         audit.MobilityStatus,
		LevelOfCare:            audit.LevelOfCare,
		PredictedDays:          audit.PredictedDays,
		HomeProbability:        audit.HomeProbability,
		ReadmissionProbability: audit.ReadmissionProbability,
		Factors:                datatypes.JSON(factors),
		LatencyMicros:          audit.Latency.Microseconds(),
		CreatedAt:              time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// Recent returns up to limit rows, newest first. limit defaults to
// DefaultAuditLimit and is capped at MaxAuditLimit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.AssessmentAudit, error) {
	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}
	var rows []AuditModel
	if err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.AssessmentAudit, 0, len(rows))
	for _, row := range rows {
		var factors []string
		if len(row.Factors) > 0 {
			if err := json.Unmarshal(row.Factors, &factors); err != nil {
				return nil, fmt.Errorf("decode audit factors for %s: %w", row.ID, err)
			}
		}
		out = append(out, models.AssessmentAudit{
			RequestID:              row.RequestID,
			MobilityStatus:         row.MobilityStatus,
			LevelOfCare:            row.LevelOfCare,
			PredictedDays:          row.PredictedDays,
			HomeProbability:        row.HomeProbability,
			ReadmissionProbability: row.ReadmissionProbability,
			Factors:                factors,
			Latency:                time.Duration(row.LatencyMicros) * time.Microsecond,
		})
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
