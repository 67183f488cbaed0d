package clinical

import (
	"strings"

	"github.com/synaptica-ai/mobility/pkg/common/models"
)

// MapAdmissionCategory maps a diagnosis using the default vocabulary.
func MapAdmissionCategory(diagnosis string) models.AdmissionCategory {
	return defaultVocabulary.AdmissionCategory(diagnosis)
}

// AdmissionCategory returns the category of the first keyword rule whose
// keyword the lower-cased diagnosis contains, or general_medical.
//
// When several keywords match, table order decides; "post-op sepsis" is
// sepsis because sepsis is declared first. Whether that is the intended
// clinical priority is unresolved, so the order is kept as calibrated.
func (v Vocabulary) AdmissionCategory(diagnosis string) models.AdmissionCategory {
	text := strings.ToLower(diagnosis)
	if strings.TrimSpace(text) == "" {
		return models.AdmissionGeneralMedical
	}
	for _, rule := range v.Admission {
		if strings.Contains(text, rule.Keyword) {
			return rule.Category
		}
	}
	return models.AdmissionGeneralMedical
}
