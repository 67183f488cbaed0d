package clinical

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/synaptica-ai/mobility/pkg/common/models"
	"gopkg.in/yaml.v3"
)

// KeywordRule maps a diagnosis keyword to an admission category. Rules are
// evaluated in declaration order and the first contained keyword wins.
type KeywordRule struct {
	Keyword  string                   `yaml:"keyword" json:"keyword"`
	Category models.AdmissionCategory `yaml:"category" json:"category"`
}

// MedicationTokens holds lower-case generic-name fragments per class.
type MedicationTokens struct {
	Sedating      []string `yaml:"sedating" json:"sedating"`
	Anticoagulant []string `yaml:"anticoagulant" json:"anticoagulant"`
	Steroid       []string `yaml:"steroid" json:"steroid"`
}

// Vocabulary is the free-text matching data used by flag extraction.
type Vocabulary struct {
	Medications MedicationTokens `yaml:"medications" json:"medications"`
	Admission   []KeywordRule    `yaml:"admission" json:"admission"`
}

var defaultVocabulary = DefaultVocabulary()

// LoadVocabulary reads a YAML vocabulary. An empty path yields the defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultVocabulary(), err
	}

	var vocab Vocabulary
	if err := yaml.Unmarshal(content, &vocab); err != nil {
		return Vocabulary{}, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	if err := vocab.validate(); err != nil {
		return Vocabulary{}, err
	}
	return vocab.normalized(), nil
}

func (v Vocabulary) validate() error {
	switch {
	case len(v.Medications.Sedating) == 0:
		return errors.New("vocabulary has no sedating medication tokens")
	case len(v.Medications.Anticoagulant) == 0:
		return errors.New("vocabulary has no anticoagulant medication tokens")
	case len(v.Medications.Steroid) == 0:
		return errors.New("vocabulary has no steroid medication tokens")
	case len(v.Admission) == 0:
		return errors.New("vocabulary has no admission keywords")
	}
	for i, rule := range v.Admission {
		if strings.TrimSpace(rule.Keyword) == "" || rule.Category == "" {
			return fmt.Errorf("admission rule %d is incomplete", i)
		}
	}
	return nil
}

func (v Vocabulary) normalized() Vocabulary {
	out := Vocabulary{
		Medications: MedicationTokens{
			Sedating:      lowerAll(v.Medications.Sedating),
			Anticoagulant: lowerAll(v.Medications.Anticoagulant),
			Steroid:       lowerAll(v.Medications.Steroid),
		},
		Admission: make([]KeywordRule, len(v.Admission)),
	}
	for i, rule := range v.Admission {
		out.Admission[i] = KeywordRule{Keyword: strings.ToLower(strings.TrimSpace(rule.Keyword)), Category: rule.Category}
	}
	return out
}

func lowerAll(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Medications: MedicationTokens{
			Sedating: []string{
				"lorazepam", "diazepam", "alprazolam", "clonazepam", "midazolam",
				"temazepam", "zolpidem", "oxycodone", "hydrocodone", "morphine",
				"hydromorphone", "fentanyl", "tramadol", "quetiapine", "haloperidol",
			},
			Anticoagulant: []string{
				"heparin", "enoxaparin", "warfarin", "apixaban", "rivaroxaban", "dabigatran", "edoxaban",
			},
			Steroid: []string{"prednisone", "prednisolone", "dexamethasone", "hydrocortisone"},
		},
		// Order is significant: "post-op sepsis" resolves to sepsis and any
		// text containing "mi" that matched nothing earlier resolves to cardiac.
		Admission: []KeywordRule{
			{Keyword: "stroke", Category: models.AdmissionNeuro},
			{Keyword: "copd", Category: models.AdmissionMedicalPulm},
			{Keyword: "hip fracture", Category: models.AdmissionOrtho},
			{Keyword: "sepsis", Category: models.AdmissionSepsis},
			{Keyword: "trauma", Category: models.AdmissionTrauma},
			{Keyword: "post-op", Category: models.AdmissionPostop},
			{Keyword: "postoperative", Category: models.AdmissionPostop},
			{Keyword: "cancer", Category: models.AdmissionOncology},
			{Keyword: "heart failure", Category: models.AdmissionCardiac},
			{Keyword: "mi", Category: models.AdmissionCardiac},
		},
	}
}
