package benefit

import (
	"math"

	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/common/models"
	"github.com/synaptica-ai/mobility/pkg/outcomes"
)

// Length-of-stay benefit is a flat share of the current prediction, larger
// for less mobile patients. It does not come from the improved-flags model.
var losBenefitRate = map[models.MobilityStatus]float64{
	models.MobilityBedbound:       0.06,
	models.MobilityChairBound:     0.05,
	models.MobilityStandingAssist: 0.04,
	models.MobilityWalkingAssist:  0.025,
	models.MobilityIndependent:    0.015,
}

// defaultLOSBenefitRate applies to unrecognised mobility statuses.
const defaultLOSBenefitRate = 0.015

const (
	homeFallbackCap        = 0.02
	homeFallbackShare      = 0.03
	readmitFallbackCap     = 0.015
	readmitFallbackShare   = 0.05
	deconditioningRelative = 0.25
)

// Curve describes an asymptotic risk reduction: the linear relative
// reduction saturates towards Cap and never reaches it.
type Curve struct {
	MaxRelative float64
	Cap         float64
}

var (
	VTECurve      = Curve{MaxRelative: 0.40, Cap: 0.03}
	FallsCurve    = Curve{MaxRelative: 0.30, Cap: 0.025}
	PressureCurve = Curve{MaxRelative: 0.35, Cap: 0.03}
)

// Reduction returns cap * linear / (linear + cap/2) for linear = p * MaxRelative.
func (c Curve) Reduction(probability float64) float64 {
	linear := math.Max(0, probability) * c.MaxRelative
	if linear == 0 {
		return 0
	}
	return c.Cap * (linear / (linear + c.Cap/2))
}

// DeconditioningReduction is an uncapped 25% relative reduction.
func DeconditioningReduction(probability float64) float64 {
	return math.Max(0, probability) * deconditioningRelative
}

// AdvanceMobility moves one tier towards independence. Walking-assist and
// independent patients keep their tier, as do unrecognised statuses.
func AdvanceMobility(m models.MobilityStatus) models.MobilityStatus {
	switch m {
	case models.MobilityBedbound:
		return models.MobilityChairBound
	case models.MobilityChairBound:
		return models.MobilityStandingAssist
	case models.MobilityStandingAssist:
		return models.MobilityWalkingAssist
	default:
		return m
	}
}

// Improve builds the improved-mobility scenario: one tier advanced and the
// prolonged-immobility flag cleared.
func Improve(f clinical.RiskFlags) clinical.RiskFlags {
	return f.WithMobility(AdvanceMobility(f.Mobility)).Without(clinical.FlagImmobile3Days)
}

// hasNoTierToAdvance is true for patients whose tier Improve leaves unchanged
// by policy rather than by an unrecognised value.
func hasNoTierToAdvance(m models.MobilityStatus) bool {
	return m == models.MobilityWalkingAssist || m == models.MobilityIndependent
}

// Stay is the unrounded improvement on each stay outcome.
type Stay struct {
	LengthOfStayDays     float64
	HomeProbability      float64
	ReadmissionReduction float64
}

// Scenario is the outcome of re-running the models on the improved flags.
type Scenario struct {
	Current  outcomes.Snapshot
	Improved outcomes.Snapshot
	Benefit  Stay
}

// Evaluate runs the outcome models on the real and improved flag sets.
func Evaluate(f clinical.RiskFlags) Scenario {
	current := outcomes.Predict(f)
	improved := outcomes.Predict(Improve(f))
	return Scenario{
		Current:  current,
		Improved: improved,
		Benefit:  stayBenefit(f.Mobility, current, improved),
	}
}

func stayBenefit(m models.MobilityStatus, current, improved outcomes.Snapshot) Stay {
	rate, ok := losBenefitRate[m]
	if !ok {
		rate = defaultLOSBenefitRate
	}
	los := math.Max(0, current.LengthOfStay.Value*rate)

	home := math.Max(0, improved.DischargeHome.Value-current.DischargeHome.Value)
	if home == 0 && hasNoTierToAdvance(m) {
		home = math.Min(homeFallbackCap, current.DischargeHome.Value*homeFallbackShare)
	}

	readmit := math.Max(0, current.Readmission.Value-improved.Readmission.Value)
	if readmit == 0 && hasNoTierToAdvance(m) {
		readmit = math.Min(readmitFallbackCap, current.Readmission.Value*readmitFallbackShare)
	}

	return Stay{
		LengthOfStayDays:     los,
		HomeProbability:      home,
		ReadmissionReduction: readmit,
	}
}

// Domain is the unrounded reduction for one baseline risk domain.
type Domain struct {
	Current   float64
	Reduction float64
}

func (d Domain) Reduced() float64 {
	return math.Max(0, d.Current-d.Reduction)
}

// Domains holds the four baseline risk-domain reductions.
type Domains struct {
	Deconditioning Domain
	VTE            Domain
	Falls          Domain
	Pressure       Domain
}

// RiskDomains computes reductions from upstream baseline probabilities.
func RiskDomains(base models.BaseRiskResult) Domains {
	return Domains{
		Deconditioning: Domain{Current: base.Deconditioning.Probability, Reduction: DeconditioningReduction(base.Deconditioning.Probability)},
		VTE:            Domain{Current: base.VTE.Probability, Reduction: VTECurve.Reduction(base.VTE.Probability)},
		Falls:          Domain{Current: base.Falls.Probability, Reduction: FallsCurve.Reduction(base.Falls.Probability)},
		Pressure:       Domain{Current: base.Pressure.Probability, Reduction: PressureCurve.Reduction(base.Pressure.Probability)},
	}
}
