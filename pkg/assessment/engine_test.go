package assessment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/common/models"
)

func dorothy() models.PatientProfile {
	return models.PatientProfile{
		Age:              82,
		LevelOfCare:      models.LevelRehab,
		MobilityStatus:   models.MobilityWalkingAssist,
		CognitiveStatus:  models.CognitiveNormal,
		DaysImmobile:     12,
		Comorbidities:    []string{"diabetes"},
		Medications:      []string{},
		Devices:          []string{},
		OnVTEProphylaxis: true,
	}
}

func dorothyBase() models.BaseRiskResult {
	return models.BaseRiskResult{
		Deconditioning:         models.RiskDomain{Probability: 0.647, Severity: "high"},
		VTE:                    models.RiskDomain{Probability: 0.2, Severity: "moderate"},
		Falls:                  models.RiskDomain{Probability: 0.3, Severity: "moderate"},
		Pressure:               models.RiskDomain{Probability: 0.1, Severity: "low"},
		MobilityRecommendation: "Progress ambulation with assistance twice daily",
		InputEcho:              dorothy(),
	}
}

func newTestEngine() *Engine {
	return NewEngine(clinical.DefaultVocabulary())
}

func TestAugmentDorothyStayPredictions(t *testing.T) {
	result := newTestEngine().Augment(dorothyBase())
	stay := result.StayPredictions

	los := stay.LengthOfStay
	assert.Equal(t, 7.8, los.PredictedDays)
	assert.Equal(t, 6.2, los.RangeMin)
	assert.Equal(t, 10.1, los.RangeMax)
	assert.Equal(t, "high", los.ConfidenceLevel)
	assert.Equal(t, []string{"Walks with assistance", "Immobile 3 or more days", "Age 70 or older", "Age 80 or older"}, los.FactorsIncreasing)
	assert.Equal(t, []string{FactorIntactCognition}, los.FactorsDecreasing)
	assert.Equal(t, 0.2, los.MobilityGoalBenefit)

	home := stay.DischargeDisposition
	assert.Equal(t, 0.475, home.HomeProbability)
	assert.Equal(t, "Post-acute care likely", home.DispositionPrediction)
	assert.Equal(t, "high", home.ConfidenceLevel)
	assert.Equal(t, []string{"Immobile 3 or more days", "Age 80 or older", "Age 70 or older", "Walks with assistance"}, home.KeyFactors)

	readmit := stay.ReadmissionRisk
	assert.Equal(t, 0.269, readmit.ThirtyDayProbability)
	assert.Equal(t, "high", readmit.RiskLevel)
	assert.Equal(t, []string{"Walks with assistance", "Immobile 3 or more days"}, readmit.ModifiableFactors)
	assert.Equal(t, 0.046, readmit.MobilityBenefit)
}

func TestAugmentDorothyMobilityBenefits(t *testing.T) {
	benefits := newTestEngine().Augment(dorothyBase()).MobilityBenefits

	assert.Equal(t, models.RiskReduction{CurrentRisk: 0.647, ReducedRisk: 0.485, AbsoluteReduction: 0.162, AbsoluteReductionPercent: 16.2}, benefits.RiskReductions.Deconditioning)
	assert.Equal(t, models.RiskReduction{CurrentRisk: 0.2, ReducedRisk: 0.175, AbsoluteReduction: 0.025, AbsoluteReductionPercent: 2.5}, benefits.RiskReductions.VTE)
	assert.Equal(t, models.RiskReduction{CurrentRisk: 0.3, ReducedRisk: 0.278, AbsoluteReduction: 0.022, AbsoluteReductionPercent: 2.2}, benefits.RiskReductions.Falls)
	assert.Equal(t, models.RiskReduction{CurrentRisk: 0.1, ReducedRisk: 0.079, AbsoluteReduction: 0.021, AbsoluteReductionPercent: 2.1}, benefits.RiskReductions.Pressure)

	assert.Equal(t, models.StayImprovements{
		LengthOfStayReduction:       0.2,
		HomeDischargeImprovement:    0.124,
		ReadmissionReduction:        0.046,
		ReadmissionPercentReduction: 17.2,
	}, benefits.StayImprovements)
}

func TestAugmentIsDeterministic(t *testing.T) {
	engine := newTestEngine()
	first, err := json.Marshal(engine.Augment(dorothyBase()))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := json.Marshal(engine.Augment(dorothyBase()))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAugmentDoesNotMutateInput(t *testing.T) {
	base := dorothyBase()
	base.InputEcho.Medications = []string{"Lorazepam 1mg PRN"}
	weight := 60.0
	base.InputEcho.WeightKg = &weight
	before, err := json.Marshal(base)
	require.NoError(t, err)

	result := newTestEngine().Augment(base)
	result.InputEcho.Medications[0] = "changed"
	*result.InputEcho.WeightKg = 99

	after, err := json.Marshal(base)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestAugmentEchoesBaseFields(t *testing.T) {
	base := dorothyBase()
	result := newTestEngine().Augment(base)

	assert.Equal(t, base.MobilityRecommendation, result.MobilityRecommendation)
	assert.Equal(t, base.Deconditioning, result.Deconditioning)
	assert.Equal(t, base.InputEcho.Age, result.InputEcho.Age)
}

func TestAugmentJSONShape(t *testing.T) {
	base := dorothyBase()
	base.InputEcho.Comorbidities = nil
	raw, err := json.Marshal(newTestEngine().Augment(base))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))

	for _, key := range []string{"deconditioning", "vte", "falls", "pressure", "mobility_recommendation", "input_echo", "stay_predictions", "mobility_benefits"} {
		assert.Contains(t, doc, key)
	}

	echo := doc["input_echo"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, echo["comorbidities"])

	stay := doc["stay_predictions"].(map[string]interface{})
	los := stay["length_of_stay"].(map[string]interface{})
	for _, key := range []string{"predicted_days", "range_min", "range_max", "confidence_level", "factors_increasing", "factors_decreasing", "mobility_goal_benefit"} {
		assert.Contains(t, los, key)
	}
	assert.Contains(t, stay["discharge_disposition"], "key_factors")
	assert.Contains(t, stay["readmission_risk"], "modifiable_factors")

	benefits := doc["mobility_benefits"].(map[string]interface{})
	reductions := benefits["risk_reductions"].(map[string]interface{})
	assert.Contains(t, reductions["vte"], "absolute_reduction_percent")
	assert.Contains(t, benefits["stay_improvements"], "readmission_percent_reduction")
}

func TestAugmentIndependentPatient(t *testing.T) {
	base := dorothyBase()
	base.InputEcho = models.PatientProfile{
		Age:             45,
		LevelOfCare:     models.LevelWard,
		MobilityStatus:  models.MobilityIndependent,
		CognitiveStatus: models.CognitiveNormal,
	}
	result := newTestEngine().Augment(base)
	los := result.StayPredictions.LengthOfStay

	assert.Equal(t, 5.5, los.PredictedDays)
	assert.Equal(t, "low", los.ConfidenceLevel)
	assert.Empty(t, los.FactorsIncreasing)
	assert.NotNil(t, los.FactorsIncreasing)
	assert.Equal(t, []string{FactorIndependentMobility, FactorIntactCognition, FactorEarlyMobilisation}, los.FactorsDecreasing)

	// No tier to advance, so both stay benefits come from the fallback.
	stay := result.MobilityBenefits.StayImprovements
	assert.Equal(t, 0.1, stay.LengthOfStayReduction)
	assert.Equal(t, 0.02, stay.HomeDischargeImprovement)
	assert.Greater(t, stay.ReadmissionReduction, 0.0)
	assert.Equal(t, "Likely to go home", result.StayPredictions.DischargeDisposition.DispositionPrediction)
	assert.Equal(t, "moderate", result.StayPredictions.ReadmissionRisk.RiskLevel)
}

func TestAugmentMonotoneInMobility(t *testing.T) {
	engine := newTestEngine()
	var prev *models.StayPredictions
	for _, tier := range models.MobilityTiers {
		base := dorothyBase()
		base.InputEcho.MobilityStatus = tier
		stay := engine.Augment(base).StayPredictions
		if prev != nil {
			assert.LessOrEqual(t, stay.LengthOfStay.PredictedDays, prev.LengthOfStay.PredictedDays, tier)
			assert.GreaterOrEqual(t, stay.DischargeDisposition.HomeProbability, prev.DischargeDisposition.HomeProbability, tier)
			assert.LessOrEqual(t, stay.ReadmissionRisk.ThirtyDayProbability, prev.ReadmissionRisk.ThirtyDayProbability, tier)
		}
		prev = &stay
	}
}

func TestAugmentBenefitsNonNegative(t *testing.T) {
	engine := newTestEngine()
	for _, tier := range append(models.MobilityTiers, "crawling") {
		for _, p := range []float64{0, 0.001, 0.5, 0.999, 1} {
			base := dorothyBase()
			base.InputEcho.MobilityStatus = tier
			base.Deconditioning.Probability = p
			base.VTE.Probability = p
			base.Falls.Probability = p
			base.Pressure.Probability = p

			b := engine.Augment(base).MobilityBenefits
			for _, r := range []models.RiskReduction{b.RiskReductions.Deconditioning, b.RiskReductions.VTE, b.RiskReductions.Falls, b.RiskReductions.Pressure} {
				assert.GreaterOrEqual(t, r.AbsoluteReduction, 0.0)
				assert.GreaterOrEqual(t, r.ReducedRisk, 0.0)
			}
			assert.GreaterOrEqual(t, b.StayImprovements.LengthOfStayReduction, 0.0)
			assert.GreaterOrEqual(t, b.StayImprovements.HomeDischargeImprovement, 0.0)
			assert.GreaterOrEqual(t, b.StayImprovements.ReadmissionReduction, 0.0)
			assert.GreaterOrEqual(t, b.StayImprovements.ReadmissionPercentReduction, 0.0)
		}
	}
}

func TestAugmentReturnsExtractedFlags(t *testing.T) {
	engine := newTestEngine()
	base := dorothyBase()

	result, flags := engine.augment(base)
	assert.Equal(t, engine.Augment(base), result)
	assert.Equal(t, clinical.DefaultVocabulary().ExtractFlags(base.InputEcho), flags)
}
