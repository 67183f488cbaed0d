package assessment

import (
	"sort"

	"github.com/synaptica-ai/mobility/pkg/benefit"
	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/common/models"
	"github.com/synaptica-ai/mobility/pkg/ml/linear"
	"github.com/synaptica-ai/mobility/pkg/outcomes"
)

// Protective factor labels reported in factors_decreasing.
const (
	FactorIndependentMobility = "Independent mobility"
	FactorIntactCognition     = "Intact cognition"
	FactorEarlyMobilisation   = "Mobilised within 3 days"
)

// Engine assembles stay predictions and mobility benefits onto a base risk
// result. It holds only read-only vocabulary and is safe for concurrent use.
type Engine struct {
	vocab clinical.Vocabulary
}

func NewEngine(vocab clinical.Vocabulary) *Engine {
	return &Engine{vocab: vocab}
}

func (e *Engine) Vocabulary() clinical.Vocabulary {
	return e.vocab
}

// Augment returns a new result; base and the slices it references are not
// modified. Every value is recomputed on each call.
func (e *Engine) Augment(base models.BaseRiskResult) models.AugmentedResult {
	result, _ := e.augment(base)
	return result
}

// augment also returns the flags extracted from the real profile.
func (e *Engine) augment(base models.BaseRiskResult) (models.AugmentedResult, clinical.RiskFlags) {
	flags := e.vocab.ExtractFlags(base.InputEcho)
	scenario := benefit.Evaluate(flags)
	domains := benefit.RiskDomains(base)

	out := base
	out.InputEcho = cloneProfile(base.InputEcho)

	return models.AugmentedResult{
		BaseRiskResult:   out,
		StayPredictions:  stayPredictions(flags, scenario),
		MobilityBenefits: mobilityBenefits(domains, scenario),
	}, flags
}

func stayPredictions(f clinical.RiskFlags, s benefit.Scenario) models.StayPredictions {
	los := s.Current.LengthOfStay
	home := s.Current.DischargeHome
	readmit := s.Current.Readmission
	lower, upper := outcomes.LengthOfStayRange(los.Value)

	return models.StayPredictions{
		LengthOfStay: models.LengthOfStayPrediction{
			PredictedDays:       round1(los.Value),
			RangeMin:            round1(lower),
			RangeMax:            round1(upper),
			ConfidenceLevel:     los.Confidence(),
			FactorsIncreasing:   labels(linear.Keys(los.Fired)),
			FactorsDecreasing:   protectiveFactors(f),
			MobilityGoalBenefit: round1(s.Benefit.LengthOfStayDays),
		},
		DischargeDisposition: models.DischargeDisposition{
			HomeProbability:       round3(home.Value),
			DispositionPrediction: outcomes.Disposition(home.Value),
			ConfidenceLevel:       home.Confidence(),
			KeyFactors:            labels(byMagnitude(home.Fired)),
		},
		ReadmissionRisk: models.ReadmissionRisk{
			ThirtyDayProbability: round3(readmit.Value),
			RiskLevel:            outcomes.ReadmissionRiskLevel(readmit.Value),
			ModifiableFactors:    labels(modifiable(readmit.Factors())),
			MobilityBenefit:      round3(s.Benefit.ReadmissionReduction),
		},
	}
}

func mobilityBenefits(d benefit.Domains, s benefit.Scenario) models.MobilityBenefits {
	readmitPercent := 0.0
	if current := s.Current.Readmission.Value; current > 0 {
		readmitPercent = s.Benefit.ReadmissionReduction / current * 100
	}

	return models.MobilityBenefits{
		RiskReductions: models.RiskReductions{
			Deconditioning: riskReduction(d.Deconditioning),
			VTE:            riskReduction(d.VTE),
			Falls:          riskReduction(d.Falls),
			Pressure:       riskReduction(d.Pressure),
		},
		StayImprovements: models.StayImprovements{
			LengthOfStayReduction:       round1(s.Benefit.LengthOfStayDays),
			HomeDischargeImprovement:    round3(s.Benefit.HomeProbability),
			ReadmissionReduction:        round3(s.Benefit.ReadmissionReduction),
			ReadmissionPercentReduction: round1(readmitPercent),
		},
	}
}

func riskReduction(d benefit.Domain) models.RiskReduction {
	return models.RiskReduction{
		CurrentRisk:              round3(d.Current),
		ReducedRisk:              round3(d.Reduced()),
		AbsoluteReduction:        round3(d.Reduction),
		AbsoluteReductionPercent: round1(d.Reduction * 100),
	}
}

func protectiveFactors(f clinical.RiskFlags) []string {
	out := []string{}
	if f.Mobility == models.MobilityIndependent {
		out = append(out, FactorIndependentMobility)
	}
	if f.Cognitive == models.CognitiveNormal {
		out = append(out, FactorIntactCognition)
	}
	if !f.Has(clinical.FlagImmobile3Days) {
		out = append(out, FactorEarlyMobilisation)
	}
	return out
}

// byMagnitude orders fired terms by descending absolute weight, keeping
// declaration order among equal weights.
func byMagnitude(terms []linear.Term[clinical.Flag]) []clinical.Flag {
	sorted := append([]linear.Term[clinical.Flag](nil), terms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return abs(sorted[i].Weight) > abs(sorted[j].Weight)
	})
	return linear.Keys(sorted)
}

func modifiable(flags []clinical.Flag) []clinical.Flag {
	var out []clinical.Flag
	for _, f := range flags {
		if f.Modifiable() {
			out = append(out, f)
		}
	}
	return out
}

func labels(flags []clinical.Flag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Label())
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func cloneProfile(p models.PatientProfile) models.PatientProfile {
	p.Comorbidities = cloneStrings(p.Comorbidities)
	p.Medications = cloneStrings(p.Medications)
	p.Devices = cloneStrings(p.Devices)
	if p.WeightKg != nil {
		w := *p.WeightKg
		p.WeightKg = &w
	}
	if p.HeightCm != nil {
		h := *p.HeightCm
		p.HeightCm = &h
	}
	return p
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
