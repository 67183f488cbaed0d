package outcomes

import (
	"math"

	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/ml/linear"
)

// MinLengthOfStay is the floor applied to every length-of-stay prediction.
const MinLengthOfStay = 1.0

const (
	ConfidenceLow      = "low"
	ConfidenceModerate = "moderate"
	ConfidenceHigh     = "high"

	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"

	DispositionHome      = "Likely to go home"
	DispositionMaybeHome = "May go home"
	DispositionPostAcute = "Post-acute care likely"
)

// Prediction is one model output and the terms that produced it.
type Prediction struct {
	Value float64
	Fired []linear.Term[clinical.Flag]
}

func (p Prediction) Factors() []clinical.Flag {
	return linear.Keys(p.Fired)
}

// Confidence counts fired factors; it is not a statistical interval.
func (p Prediction) Confidence() string {
	return ConfidenceLevel(len(p.Fired))
}

// Snapshot holds the three outcome predictions for one flag set.
type Snapshot struct {
	LengthOfStay  Prediction
	DischargeHome Prediction
	Readmission   Prediction
}

func Predict(f clinical.RiskFlags) Snapshot {
	return Snapshot{
		LengthOfStay:  LengthOfStay(f),
		DischargeHome: DischargeHome(f),
		Readmission:   Readmission(f),
	}
}

// LengthOfStay predicts hospital days, floored at MinLengthOfStay.
func LengthOfStay(f clinical.RiskFlags) Prediction {
	days, fired := LengthOfStayModel.Score(f.Has)
	if days < MinLengthOfStay {
		days = MinLengthOfStay
	}
	return Prediction{Value: days, Fired: fired}
}

// LengthOfStayRange is a fixed -20%/+30% band around days, never below one day.
func LengthOfStayRange(days float64) (lower, upper float64) {
	return math.Max(MinLengthOfStay, days*0.8), days * 1.3
}

func DischargeHome(f clinical.RiskFlags) Prediction {
	p, fired := DischargeHomeModel.Probability(f.Has)
	return Prediction{Value: p, Fired: fired}
}

func Readmission(f clinical.RiskFlags) Prediction {
	p, fired := ReadmissionModel.Probability(f.Has)
	return Prediction{Value: p, Fired: fired}
}

func ConfidenceLevel(factors int) string {
	switch {
	case factors >= 4:
		return ConfidenceHigh
	case factors >= 2:
		return ConfidenceModerate
	default:
		return ConfidenceLow
	}
}

func Disposition(homeProbability float64) string {
	switch {
	case homeProbability >= 0.75:
		return DispositionHome
	case homeProbability >= 0.65:
		return DispositionMaybeHome
	default:
		return DispositionPostAcute
	}
}

func ReadmissionRiskLevel(probability float64) string {
	switch {
	case probability < 0.12:
		return RiskLow
	case probability < 0.20:
		return RiskModerate
	default:
		return RiskHigh
	}
}
