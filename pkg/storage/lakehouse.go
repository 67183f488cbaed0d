package storage

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/synaptica-ai/mobility/pkg/common/models"
)

// AssessmentRow is one flattened assessment in the batch export.
type AssessmentRow struct {
	RequestID                   string   `parquet:"request_id"`
	Age                         int32    `parquet:"age"`
	LevelOfCare                 string   `parquet:"level_of_care"`
	MobilityStatus              string   `parquet:"mobility_status"`
	CognitiveStatus             string   `parquet:"cognitive_status"`
	DaysImmobile                int32    `parquet:"days_immobile"`
	PredictedDays               float64  `parquet:"predicted_days"`
	RangeMin                    float64  `parquet:"range_min"`
	RangeMax                    float64  `parquet:"range_max"`
	LOSConfidence               string   `parquet:"los_confidence"`
	FactorsIncreasing           []string `parquet:"factors_increasing,list"`
	MobilityGoalBenefit         float64  `parquet:"mobility_goal_benefit"`
	HomeProbability             float64  `parquet:"home_probability"`
	DispositionPrediction       string   `parquet:"disposition_prediction"`
	ReadmissionProbability      float64  `parquet:"readmission_probability"`
	ReadmissionRiskLevel        string   `parquet:"readmission_risk_level"`
	ModifiableFactors           []string `parquet:"modifiable_factors,list"`
	DeconditioningReduction     float64  `parquet:"deconditioning_reduction"`
	VTEReduction                float64  `parquet:"vte_reduction"`
	FallsReduction              float64  `parquet:"falls_reduction"`
	PressureReduction           float64  `parquet:"pressure_reduction"`
	LengthOfStayReduction       float64  `parquet:"length_of_stay_reduction"`
	HomeDischargeImprovement    float64  `parquet:"home_discharge_improvement"`
	ReadmissionReduction        float64  `parquet:"readmission_reduction"`
	ReadmissionPercentReduction float64  `parquet:"readmission_percent_reduction"`
}

// NewAssessmentRow flattens an augmented result.
func NewAssessmentRow(requestID string, r models.AugmentedResult) AssessmentRow {
	stay := r.StayPredictions
	benefits := r.MobilityBenefits
	return AssessmentRow{
		RequestID:                   requestID,
		Age:                         int32(r.InputEcho.Age),
		LevelOfCare:                 string(r.InputEcho.LevelOfCare),
		MobilityStatus:              string(r.InputEcho.MobilityStatus),
		CognitiveStatus:             string(r.InputEcho.CognitiveStatus),
		DaysImmobile:                int32(r.InputEcho.DaysImmobile),
		PredictedDays:               stay.LengthOfStay.PredictedDays,
		RangeMin:                    stay.LengthOfStay.RangeMin,
		RangeMax:                    stay.LengthOfStay.RangeMax,
		LOSConfidence:               stay.LengthOfStay.ConfidenceLevel,
		FactorsIncreasing:           stay.LengthOfStay.FactorsIncreasing,
		MobilityGoalBenefit:         stay.LengthOfStay.MobilityGoalBenefit,
		HomeProbability:             stay.DischargeDisposition.HomeProbability,
		DispositionPrediction:       stay.DischargeDisposition.DispositionPrediction,
		ReadmissionProbability:      stay.ReadmissionRisk.ThirtyDayProbability,
		ReadmissionRiskLevel:        stay.ReadmissionRisk.RiskLevel,
		ModifiableFactors:           stay.ReadmissionRisk.ModifiableFactors,
		DeconditioningReduction:     benefits.RiskReductions.Deconditioning.AbsoluteReduction,
		VTEReduction:                benefits.RiskReductions.VTE.AbsoluteReduction,
		FallsReduction:              benefits.RiskReductions.Falls.AbsoluteReduction,
		PressureReduction:           benefits.RiskReductions.Pressure.AbsoluteReduction,
		LengthOfStayReduction:       benefits.StayImprovements.LengthOfStayReduction,
		HomeDischargeImprovement:    benefits.StayImprovements.HomeDischargeImprovement,
		ReadmissionReduction:        benefits.StayImprovements.ReadmissionReduction,
		ReadmissionPercentReduction: benefits.StayImprovements.ReadmissionPercentReduction,
	}
}

const rowGroupFlushInterval = 50_000

// LakehouseWriter writes assessment rows to a snappy-compressed Parquet file.
type LakehouseWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[AssessmentRow]
	count  int
}

func NewLakehouseWriter(filename string) (*LakehouseWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[AssessmentRow](file,
		parquet.Compression(&parquet.Snappy),
		parquet.CreatedBy("mobility-batch", "1.0", ""),
	)

	return &LakehouseWriter{file: file, writer: writer}, nil
}

func (lw *LakehouseWriter) Write(row AssessmentRow) error {
	if _, err := lw.writer.Write([]AssessmentRow{row}); err != nil {
		return fmt.Errorf("failed to write parquet record: %w", err)
	}
	lw.count++

	if lw.count%rowGroupFlushInterval == 0 {
		if err := lw.writer.Flush(); err != nil {
			return fmt.Errorf("failed to flush parquet row group: %w", err)
		}
	}
	return nil
}

// Close flushes and closes the Parquet writer
func (lw *LakehouseWriter) Close() error {
	if err := lw.writer.Close(); err != nil {
		lw.file.Close()
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return lw.file.Close()
}

func (lw *LakehouseWriter) Count() int {
	return lw.count
}
