package outcomes

import (
	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/ml/linear"
)

type term = linear.Term[clinical.Flag]

// LengthOfStayModel is a linear model in days. Mobility tiers, levels of
// care and cognitive states are mutually exclusive by construction.
var LengthOfStayModel = linear.Model[clinical.Flag]{
	Name:      "length_of_stay",
	Intercept: 5.5,
	Terms: []term{
		{Key: clinical.FlagBedbound, Weight: 1.5},
		{Key: clinical.FlagChairBound, Weight: 1.0},
		{Key: clinical.FlagStandingAssist, Weight: 0.5},
		{Key: clinical.FlagWalkingAssist, Weight: 0.2},
		{Key: clinical.FlagImmobile3Days, Weight: 1.0},
		{Key: clinical.FlagICU, Weight: 2.0},
		{Key: clinical.FlagStepdown, Weight: 0.7},
		{Key: clinical.FlagAge70, Weight: 0.6},
		{Key: clinical.FlagAge80, Weight: 0.5},
		{Key: clinical.FlagCognitiveMild, Weight: 0.3},
		{Key: clinical.FlagDelirium, Weight: 0.8},
		{Key: clinical.FlagMalnutrition, Weight: 0.8},
		{Key: clinical.FlagAlbuminLow, Weight: 0.5},
		{Key: clinical.FlagStroke, Weight: 1.0},
		{Key: clinical.FlagPostop, Weight: 0.6},
		{Key: clinical.FlagTrauma, Weight: 0.8},
		{Key: clinical.FlagDevices, Weight: 0.3},
	},
}

// DischargeHomeModel is a logistic model of discharge to home.
var DischargeHomeModel = linear.Model[clinical.Flag]{
	Name:      "discharge_home",
	Intercept: 1.20,
	Terms: []term{
		{Key: clinical.FlagBedbound, Weight: -1.20},
		{Key: clinical.FlagChairBound, Weight: -0.80},
		{Key: clinical.FlagStandingAssist, Weight: -0.45},
		{Key: clinical.FlagWalkingAssist, Weight: -0.15},
		{Key: clinical.FlagImmobile3Days, Weight: -0.50},
		{Key: clinical.FlagICU, Weight: -1.20},
		{Key: clinical.FlagStepdown, Weight: -0.40},
		{Key: clinical.FlagAge70, Weight: -0.30},
		{Key: clinical.FlagAge80, Weight: -0.35},
		{Key: clinical.FlagCognitiveMild, Weight: -0.25},
		{Key: clinical.FlagDelirium, Weight: -0.90},
		{Key: clinical.FlagMalnutrition, Weight: -0.40},
		{Key: clinical.FlagAlbuminLow, Weight: -0.25},
		{Key: clinical.FlagStroke, Weight: -0.70},
		{Key: clinical.FlagPostop, Weight: -0.15},
		{Key: clinical.FlagTrauma, Weight: -0.45},
		{Key: clinical.FlagDevices, Weight: -0.20},
	},
}

// ReadmissionModel is a logistic model of 30-day readmission.
var ReadmissionModel = linear.Model[clinical.Flag]{
	Name:      "readmission_30d",
	Intercept: -1.73,
	Terms: []term{
		{Key: clinical.FlagBedbound, Weight: 0.45},
		{Key: clinical.FlagChairBound, Weight: 0.30},
		{Key: clinical.FlagStandingAssist, Weight: 0.18},
		{Key: clinical.FlagWalkingAssist, Weight: 0.08},
		{Key: clinical.FlagImmobile3Days, Weight: 0.25},
		{Key: clinical.FlagICU, Weight: 0.30},
		{Key: clinical.FlagStepdown, Weight: 0.12},
		{Key: clinical.FlagAge70, Weight: 0.15},
		{Key: clinical.FlagAge80, Weight: 0.10},
		{Key: clinical.FlagCognitiveMild, Weight: 0.10},
		{Key: clinical.FlagDelirium, Weight: 0.30},
		{Key: clinical.FlagMalnutrition, Weight: 0.25},
		{Key: clinical.FlagAlbuminLow, Weight: 0.20},
		{Key: clinical.FlagStroke, Weight: 0.20},
		{Key: clinical.FlagPostop, Weight: 0.10},
		{Key: clinical.FlagTrauma, Weight: 0.15},
		{Key: clinical.FlagDevices, Weight: 0.10},
		{Key: clinical.FlagDiabetes, Weight: 0.15},
		{Key: clinical.FlagActiveCancer, Weight: 0.25},
		{Key: clinical.FlagSedatingMeds, Weight: 0.20},
	},
}
