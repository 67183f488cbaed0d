package assessment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/mobility/pkg/common/models"
)

func TestValidatorLenientWarnsOnUnknownEnums(t *testing.T) {
	base := dorothyBase()
	base.InputEcho.MobilityStatus = "crawling"
	base.InputEcho.LevelOfCare = "hallway"

	warnings, err := NewValidator(false).Validate(base)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "level_of_care")
	assert.Contains(t, warnings[1], "mobility_status")
}

func TestValidatorStrictRejectsUnknownEnums(t *testing.T) {
	base := dorothyBase()
	base.InputEcho.CognitiveStatus = "confused"

	_, err := NewValidator(true).Validate(base)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrUnknownEnum)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "cognitive_status", vErr.Field)
}

func TestValidatorAcceptsKnownProfile(t *testing.T) {
	warnings, err := NewValidator(true).Validate(dorothyBase())
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidatorOptionalEnumsMayBeEmpty(t *testing.T) {
	p := dorothy()
	p.Sex = ""
	p.BaselineFunction = ""

	_, err := NewValidator(true).ValidateProfile(p)
	assert.NoError(t, err)
}

func TestValidatorRejectsOutOfRangeNumbers(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*models.BaseRiskResult)
		field string
	}{
		{"negative age", func(b *models.BaseRiskResult) { b.InputEcho.Age = -1 }, "age"},
		{"negative immobility", func(b *models.BaseRiskResult) { b.InputEcho.DaysImmobile = -2 }, "days_immobile"},
		{"probability above one", func(b *models.BaseRiskResult) { b.VTE.Probability = 1.2 }, "vte.probability"},
		{"negative probability", func(b *models.BaseRiskResult) { b.Falls.Probability = -0.1 }, "falls.probability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := dorothyBase()
			tt.mut(&base)

			_, err := NewValidator(false).Validate(base)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestIsValidationErrorThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", &ValidationError{Field: "age", Reason: "must not be negative"})
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(errors.New("other")))
}
