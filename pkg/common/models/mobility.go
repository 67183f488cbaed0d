package models

// Patient profile enums. Values outside these sets are tolerated by the
// engine and contribute nothing to any model.

type Sex string

const (
	SexUnspecified Sex = "unspecified"
	SexFemale      Sex = "female"
	SexMale        Sex = "male"
	SexOther       Sex = "other"
)

func (s Sex) Valid() bool {
	switch s {
	case "", SexUnspecified, SexFemale, SexMale, SexOther:
		return true
	}
	return false
}

type LevelOfCare string

const (
	LevelICU      LevelOfCare = "icu"
	LevelStepdown LevelOfCare = "stepdown"
	LevelWard     LevelOfCare = "ward"
	LevelRehab    LevelOfCare = "rehab"
)

func (l LevelOfCare) Valid() bool {
	switch l {
	case LevelICU, LevelStepdown, LevelWard, LevelRehab:
		return true
	}
	return false
}

type MobilityStatus string

const (
	MobilityBedbound       MobilityStatus = "bedbound"
	MobilityChairBound     MobilityStatus = "chair_bound"
	MobilityStandingAssist MobilityStatus = "standing_assist"
	MobilityWalkingAssist  MobilityStatus = "walking_assist"
	MobilityIndependent    MobilityStatus = "independent"
)

// MobilityTiers lists the mobility statuses from least to most mobile.
var MobilityTiers = []MobilityStatus{
	MobilityBedbound,
	MobilityChairBound,
	MobilityStandingAssist,
	MobilityWalkingAssist,
	MobilityIndependent,
}

// Tier returns the ordinal position of m in MobilityTiers, or -1.
func (m MobilityStatus) Tier() int {
	for i, tier := range MobilityTiers {
		if tier == m {
			return i
		}
	}
	return -1
}

func (m MobilityStatus) Valid() bool {
	return m.Tier() >= 0
}

type CognitiveStatus string

const (
	CognitiveNormal           CognitiveStatus = "normal"
	CognitiveMildImpairment   CognitiveStatus = "mild_impairment"
	CognitiveDeliriumDementia CognitiveStatus = "delirium_dementia"
)

func (c CognitiveStatus) Valid() bool {
	switch c {
	case CognitiveNormal, CognitiveMildImpairment, CognitiveDeliriumDementia:
		return true
	}
	return false
}

type BaselineFunction string

const (
	BaselineIndependent BaselineFunction = "independent"
	BaselineWalker      BaselineFunction = "walker"
	BaselineDependent   BaselineFunction = "dependent"
)

func (b BaselineFunction) Valid() bool {
	switch b {
	case "", BaselineIndependent, BaselineWalker, BaselineDependent:
		return true
	}
	return false
}

type AdmissionCategory string

const (
	AdmissionNeuro          AdmissionCategory = "neuro"
	AdmissionMedicalPulm    AdmissionCategory = "medical_pulm"
	AdmissionOrtho          AdmissionCategory = "ortho"
	AdmissionSepsis         AdmissionCategory = "sepsis"
	AdmissionTrauma         AdmissionCategory = "trauma"
	AdmissionPostop         AdmissionCategory = "postop"
	AdmissionOncology       AdmissionCategory = "oncology"
	AdmissionCardiac        AdmissionCategory = "cardiac"
	AdmissionGeneralMedical AdmissionCategory = "general_medical"
)

// Upstream data models
type PatientProfile struct {
	Age                int              `json:"age"`
	Sex                Sex              `json:"sex,omitempty"`
	WeightKg           *float64         `json:"weight_kg,omitempty"`
	HeightCm           *float64         `json:"height_cm,omitempty"`
	LevelOfCare        LevelOfCare      `json:"level_of_care"`
	MobilityStatus     MobilityStatus   `json:"mobility_status"`
	CognitiveStatus    CognitiveStatus  `json:"cognitive_status"`
	DaysImmobile       int              `json:"days_immobile"`
	AdmissionDiagnosis string           `json:"admission_diagnosis,omitempty"`
	Comorbidities      []string         `json:"comorbidities"`
	Medications        []string         `json:"medications"`
	Devices            []string         `json:"devices"`
	Incontinent        bool             `json:"incontinent"`
	AlbuminLow         bool             `json:"albumin_low"`
	BaselineFunction   BaselineFunction `json:"baseline_function,omitempty"`
	OnVTEProphylaxis   bool             `json:"on_vte_prophylaxis"`
}

type RiskDomain struct {
	Probability float64 `json:"probability"`
	Severity    string  `json:"severity"`
}

// BaseRiskResult is produced by the base risk calculator.
type BaseRiskResult struct {
	Deconditioning         RiskDomain     `json:"deconditioning"`
	VTE                    RiskDomain     `json:"vte"`
	Falls                  RiskDomain     `json:"falls"`
	Pressure               RiskDomain     `json:"pressure"`
	MobilityRecommendation string         `json:"mobility_recommendation"`
	InputEcho              PatientProfile `json:"input_echo"`
}

// Stay predictions
type LengthOfStayPrediction struct {
	PredictedDays       float64  `json:"predicted_days"`
	RangeMin            float64  `json:"range_min"`
	RangeMax            float64  `json:"range_max"`
	ConfidenceLevel     string   `json:"confidence_level"` // low, moderate, high
	FactorsIncreasing   []string `json:"factors_increasing"`
	FactorsDecreasing   []string `json:"factors_decreasing"`
	MobilityGoalBenefit float64  `json:"mobility_goal_benefit"`
}

type DischargeDisposition struct {
	HomeProbability       float64  `json:"home_probability"`
	DispositionPrediction string   `json:"disposition_prediction"`
	ConfidenceLevel       string   `json:"confidence_level"`
	KeyFactors            []string `json:"key_factors"`
}

type ReadmissionRisk struct {
	ThirtyDayProbability float64  `json:"thirty_day_probability"`
	RiskLevel            string   `json:"risk_level"` // low, moderate, high
	ModifiableFactors    []string `json:"modifiable_factors"`
	MobilityBenefit      float64  `json:"mobility_benefit"`
}

type StayPredictions struct {
	LengthOfStay         LengthOfStayPrediction `json:"length_of_stay"`
	DischargeDisposition DischargeDisposition   `json:"discharge_disposition"`
	ReadmissionRisk      ReadmissionRisk        `json:"readmission_risk"`
}

// Mobility benefits
type RiskReduction struct {
	CurrentRisk              float64 `json:"current_risk"`
	ReducedRisk              float64 `json:"reduced_risk"`
	AbsoluteReduction        float64 `json:"absolute_reduction"`
	AbsoluteReductionPercent float64 `json:"absolute_reduction_percent"`
}

type RiskReductions struct {
	Deconditioning RiskReduction `json:"deconditioning"`
	VTE            RiskReduction `json:"vte"`
	Falls          RiskReduction `json:"falls"`
	Pressure       RiskReduction `json:"pressure"`
}

type StayImprovements struct {
	LengthOfStayReduction       float64 `json:"length_of_stay_reduction"`
	HomeDischargeImprovement    float64 `json:"home_discharge_improvement"`
	ReadmissionReduction        float64 `json:"readmission_reduction"`
	ReadmissionPercentReduction float64 `json:"readmission_percent_reduction"`
}

type MobilityBenefits struct {
	RiskReductions   RiskReductions   `json:"risk_reductions"`
	StayImprovements StayImprovements `json:"stay_improvements"`
}

// AugmentedResult is the base result with stay predictions and mobility
// benefits attached. The embedded base fields serialize at the top level.
type AugmentedResult struct {
	BaseRiskResult
	StayPredictions  StayPredictions  `json:"stay_predictions"`
	MobilityBenefits MobilityBenefits `json:"mobility_benefits"`
}
