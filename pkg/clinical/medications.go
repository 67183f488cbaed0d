package clinical

import "strings"

// MedicationClasses reports which clinical classes appear in a medication list.
type MedicationClasses struct {
	Sedating      bool `json:"sedating"`
	Anticoagulant bool `json:"anticoagulant"`
	Steroid       bool `json:"steroid"`
}

// ClassifyMedications matches names against the default vocabulary.
func ClassifyMedications(names []string) MedicationClasses {
	return defaultVocabulary.ClassifyMedications(names)
}

// ClassifyMedications lower-cases each name and sets a class when any of its
// tokens occurs anywhere in it. Dose and frequency text is ignored.
func (v Vocabulary) ClassifyMedications(names []string) MedicationClasses {
	var classes MedicationClasses
	for _, name := range names {
		lowered := strings.ToLower(name)
		if !classes.Sedating && containsAny(lowered, v.Medications.Sedating) {
			classes.Sedating = true
		}
		if !classes.Anticoagulant && containsAny(lowered, v.Medications.Anticoagulant) {
			classes.Anticoagulant = true
		}
		if !classes.Steroid && containsAny(lowered, v.Medications.Steroid) {
			classes.Steroid = true
		}
	}
	return classes
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
