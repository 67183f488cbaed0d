package assessment

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/synaptica-ai/mobility/pkg/common/models"
)

var (
	// ErrUnknownEnum marks an enum value outside its known set.
	ErrUnknownEnum = errors.New("unknown enum value")
	// ErrBaseCalculatorUnavailable is returned when profile assessment is
	// requested without a configured base risk calculator.
	ErrBaseCalculatorUnavailable = errors.New("base risk calculator not configured")
)

// ValidationError describes input rejected before the engine runs.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Validator checks inputs at the service boundary. In lenient mode unknown
// enum values are returned as warnings and contribute nothing downstream;
// in strict mode they are rejected.
type Validator struct {
	strict bool
}

func NewValidator(strict bool) Validator {
	return Validator{strict: strict}
}

func (v Validator) Strict() bool {
	return v.strict
}

func (v Validator) Validate(base models.BaseRiskResult) ([]string, error) {
	domains := []struct {
		name string
		risk models.RiskDomain
	}{
		{"deconditioning", base.Deconditioning},
		{"vte", base.VTE},
		{"falls", base.Falls},
		{"pressure", base.Pressure},
	}
	for _, d := range domains {
		p := d.risk.Probability
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, &ValidationError{
				Field:  d.name + ".probability",
				Reason: fmt.Sprintf("%v is outside [0, 1]", p),
			}
		}
	}
	return v.ValidateProfile(base.InputEcho)
}

func (v Validator) ValidateProfile(p models.PatientProfile) ([]string, error) {
	if p.Age < 0 {
		return nil, &ValidationError{Field: "age", Reason: "must not be negative"}
	}
	if p.DaysImmobile < 0 {
		return nil, &ValidationError{Field: "days_immobile", Reason: "must not be negative"}
	}

	checks := []struct {
		field string
		value string
		valid bool
	}{
		{"sex", string(p.Sex), p.Sex.Valid()},
		{"level_of_care", string(p.LevelOfCare), p.LevelOfCare.Valid()},
		{"mobility_status", string(p.MobilityStatus), p.MobilityStatus.Valid()},
		{"cognitive_status", string(p.CognitiveStatus), p.CognitiveStatus.Valid()},
		{"baseline_function", string(p.BaselineFunction), p.BaselineFunction.Valid()},
	}

	var warnings []string
	for _, c := range checks {
		if c.valid {
			continue
		}
		if v.strict {
			return nil, &ValidationError{
				Field:  c.field,
				Reason: fmt.Sprintf("%q is not recognised", c.value),
				Err:    ErrUnknownEnum,
			}
		}
		warnings = append(warnings, fmt.Sprintf("%s %q is not recognised and contributes nothing", c.field, c.value))
	}
	return warnings, nil
}

// joinWarnings renders warnings for a single log field.
func joinWarnings(w []string) string {
	return strings.Join(w, "; ")
}
