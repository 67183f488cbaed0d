package clinical

import (
	"math"

	"github.com/synaptica-ai/mobility/pkg/common/models"
)

// Flag identifies one boolean risk indicator. Model coefficient tables are
// keyed by Flag, so a misspelt indicator is a compile error rather than a
// silently missing coefficient.
type Flag uint8

const (
	FlagAge70 Flag = iota
	FlagAge80
	FlagICU
	FlagStepdown
	FlagWard
	FlagRehab
	FlagMalnutrition
	FlagAlbuminLow
	FlagIncontinent
	FlagFrailty
	FlagObesity
	FlagDiabetes
	FlagNeuropathy
	FlagParkinson
	FlagStroke
	FlagActiveCancer
	FlagHistoryVTE
	FlagPostop
	FlagTrauma
	FlagBedbound
	FlagChairBound
	FlagStandingAssist
	FlagWalkingAssist
	FlagCognitiveMild
	FlagDelirium
	FlagImmobile3Days
	FlagDevices
	FlagSedatingMeds
	FlagAnticoagulant
	FlagSteroid
	FlagVTEProphylaxis

	numFlags
)

type flagInfo struct {
	name       string
	label      string
	modifiable bool
}

var flagTable = [numFlags]flagInfo{
	FlagAge70:          {name: "age_70_plus", label: "Age 70 or older"},
	FlagAge80:          {name: "age_80_plus", label: "Age 80 or older"},
	FlagICU:            {name: "icu", label: "ICU level of care"},
	FlagStepdown:       {name: "stepdown", label: "Step-down level of care"},
	FlagWard:           {name: "ward", label: "Ward level of care"},
	FlagRehab:          {name: "rehab", label: "Rehab level of care"},
	FlagMalnutrition:   {name: "malnutrition", label: "Malnutrition", modifiable: true},
	FlagAlbuminLow:     {name: "albumin_low", label: "Low albumin", modifiable: true},
	FlagIncontinent:    {name: "incontinent", label: "Incontinence"},
	FlagFrailty:        {name: "frailty", label: "Frailty"},
	FlagObesity:        {name: "obesity", label: "Obesity"},
	FlagDiabetes:       {name: "diabetes", label: "Diabetes"},
	FlagNeuropathy:     {name: "neuropathy", label: "Neuropathy"},
	FlagParkinson:      {name: "parkinson", label: "Parkinson's disease"},
	FlagStroke:         {name: "stroke", label: "Stroke"},
	FlagActiveCancer:   {name: "active_cancer", label: "Active cancer"},
	FlagHistoryVTE:     {name: "history_vte", label: "History of VTE"},
	FlagPostop:         {name: "postop", label: "Post-operative"},
	FlagTrauma:         {name: "trauma", label: "Trauma"},
	FlagBedbound:       {name: "bedbound", label: "Bedbound", modifiable: true},
	FlagChairBound:     {name: "chair_bound", label: "Chair-bound", modifiable: true},
	FlagStandingAssist: {name: "standing_assist", label: "Stands only with assistance", modifiable: true},
	FlagWalkingAssist:  {name: "walking_assist", label: "Walks with assistance", modifiable: true},
	FlagCognitiveMild:  {name: "cognitive_mild", label: "Mild cognitive impairment"},
	FlagDelirium:       {name: "delirium_dementia", label: "Delirium or dementia"},
	FlagImmobile3Days:  {name: "immobile_ge3", label: "Immobile 3 or more days", modifiable: true},
	FlagDevices:        {name: "devices_present", label: "Lines, drains or devices in place", modifiable: true},
	FlagSedatingMeds:   {name: "sedating_meds", label: "Sedating medications", modifiable: true},
	FlagAnticoagulant:  {name: "anticoagulant", label: "Anticoagulant therapy"},
	FlagSteroid:        {name: "steroid", label: "Steroid therapy"},
	FlagVTEProphylaxis: {name: "on_vte_prophylaxis", label: "On VTE prophylaxis"},
}

func (f Flag) String() string {
	if f >= numFlags {
		return "unknown"
	}
	return flagTable[f].name
}

// Label is the clinician-facing description used in factor lists.
func (f Flag) Label() string {
	if f >= numFlags {
		return "Unknown factor"
	}
	return flagTable[f].label
}

// Modifiable reports whether care-team action can change the indicator.
func (f Flag) Modifiable() bool {
	return f < numFlags && flagTable[f].modifiable
}

// AllFlags returns every defined flag in declaration order.
func AllFlags() []Flag {
	out := make([]Flag, 0, numFlags)
	for f := Flag(0); f < numFlags; f++ {
		out = append(out, f)
	}
	return out
}

// FlagSet is a bitset of active flags.
type FlagSet uint64

func (s FlagSet) Has(f Flag) bool { return s&(1<<f) != 0 }
func (s FlagSet) With(f Flag) FlagSet { return s | 1<<f }
func (s FlagSet) Without(f Flag) FlagSet { return s &^ (1 << f) }

func (s FlagSet) set(f Flag, on bool) FlagSet {
	if on {
		return s.With(f)
	}
	return s.Without(f)
}

// Flags lists the active flags in declaration order.
func (s FlagSet) Flags() []Flag {
	var out []Flag
	for f := Flag(0); f < numFlags; f++ {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// RiskFlags is the flattened feature vector derived from a patient profile.
// It is a value type; derived scenarios are built from copies.
type RiskFlags struct {
	Active           FlagSet
	Mobility         models.MobilityStatus
	Cognitive        models.CognitiveStatus
	LevelOfCare      models.LevelOfCare
	Admission        models.AdmissionCategory
	Sex              models.Sex
	BaselineFunction models.BaselineFunction
	// BMI is nil when height or weight is missing or the result is not finite.
	BMI *float64
}

func (r RiskFlags) Has(f Flag) bool {
	return r.Active.Has(f)
}

// Without returns a copy with f cleared.
func (r RiskFlags) Without(f Flag) RiskFlags {
	r.Active = r.Active.Without(f)
	return r
}

// WithMobility returns a copy whose mobility status and tier flags reflect m.
func (r RiskFlags) WithMobility(m models.MobilityStatus) RiskFlags {
	r.Mobility = m
	r.Active = r.Active.
		set(FlagBedbound, m == models.MobilityBedbound).
		set(FlagChairBound, m == models.MobilityChairBound).
		set(FlagStandingAssist, m == models.MobilityStandingAssist).
		set(FlagWalkingAssist, m == models.MobilityWalkingAssist)
	return r
}

// ExtractFlags derives flags using the default vocabulary.
func ExtractFlags(p models.PatientProfile) RiskFlags {
	return defaultVocabulary.ExtractFlags(p)
}

// ExtractFlags is a pure function of the profile. Missing optional fields
// degrade to unknown values and never fail.
func (v Vocabulary) ExtractFlags(p models.PatientProfile) RiskFlags {
	comorbid := toSet(p.Comorbidities)
	meds := v.ClassifyMedications(p.Medications)
	category := v.AdmissionCategory(p.AdmissionDiagnosis)
	bmi := computeBMI(p.WeightKg, p.HeightCm)

	var s FlagSet
	s = s.set(FlagAge70, p.Age >= 70).
		set(FlagAge80, p.Age >= 80).
		set(FlagICU, p.LevelOfCare == models.LevelICU).
		set(FlagStepdown, p.LevelOfCare == models.LevelStepdown).
		set(FlagWard, p.LevelOfCare == models.LevelWard).
		set(FlagRehab, p.LevelOfCare == models.LevelRehab).
		set(FlagMalnutrition, comorbid["malnutrition"]).
		set(FlagAlbuminLow, p.AlbuminLow).
		set(FlagIncontinent, p.Incontinent).
		set(FlagFrailty, comorbid["frailty"]).
		set(FlagObesity, comorbid["obesity"] || (bmi != nil && *bmi >= 30)).
		set(FlagDiabetes, comorbid["diabetes"]).
		set(FlagNeuropathy, comorbid["neuropathy"]).
		set(FlagParkinson, comorbid["parkinson"]).
		set(FlagStroke, comorbid["stroke"] || category == models.AdmissionNeuro).
		set(FlagActiveCancer, comorbid["active_cancer"] || category == models.AdmissionOncology).
		set(FlagHistoryVTE, comorbid["history_vte"]).
		set(FlagPostop, comorbid["postop"] || category == models.AdmissionPostop).
		set(FlagTrauma, comorbid["trauma"] || category == models.AdmissionTrauma).
		set(FlagCognitiveMild, p.CognitiveStatus == models.CognitiveMildImpairment).
		set(FlagDelirium, p.CognitiveStatus == models.CognitiveDeliriumDementia).
		set(FlagImmobile3Days, p.DaysImmobile >= 3).
		set(FlagDevices, len(p.Devices) > 0).
		set(FlagSedatingMeds, meds.Sedating).
		set(FlagAnticoagulant, meds.Anticoagulant).
		set(FlagSteroid, meds.Steroid).
		set(FlagVTEProphylaxis, p.OnVTEProphylaxis)

	flags := RiskFlags{
		Active:           s,
		Cognitive:        p.CognitiveStatus,
		LevelOfCare:      p.LevelOfCare,
		Admission:        category,
		Sex:              p.Sex,
		BaselineFunction: p.BaselineFunction,
		BMI:              bmi,
	}
	return flags.WithMobility(p.MobilityStatus)
}

func computeBMI(weightKg, heightCm *float64) *float64 {
	if weightKg == nil || heightCm == nil || *heightCm == 0 {
		return nil
	}
	meters := *heightCm / 100
	bmi := *weightKg / (meters * meters)
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) {
		return nil
	}
	return &bmi
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
