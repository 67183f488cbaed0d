package clinical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMedications(t *testing.T) {
	got := ClassifyMedications([]string{"Lorazepam 1mg PRN", "Metformin 500mg BID"})
	assert.Equal(t, MedicationClasses{Sedating: true}, got)
}

func TestClassifyMedicationsAllClasses(t *testing.T) {
	got := ClassifyMedications([]string{"APIXABAN 5 mg", "methylPREDNISOLONE iv", "hydromorphone pca"})
	assert.True(t, got.Sedating)
	assert.True(t, got.Anticoagulant)
	assert.True(t, got.Steroid)
}

func TestClassifyMedicationsEmpty(t *testing.T) {
	assert.Equal(t, MedicationClasses{}, ClassifyMedications(nil))
	assert.Equal(t, MedicationClasses{}, ClassifyMedications([]string{"", "acetaminophen"}))
}

func TestDefaultVocabularyTokenCounts(t *testing.T) {
	v := DefaultVocabulary()
	assert.Len(t, v.Medications.Sedating, 15)
	assert.Len(t, v.Medications.Anticoagulant, 7)
	assert.Len(t, v.Medications.Steroid, 4)
}
