package application

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-paddock/internal/domain"
)

// questionIDPattern restricts ids to characters that are safe as map keys,
// flag values and file names.
var questionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]*$`)

// RegisterCatalogValidators registers the custom tags used by the catalog
// and simulation configuration structs.
func RegisterCatalogValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := v.RegisterValidation("questionid", validateQuestionID); err != nil {
		return fmt.Errorf("failed to register questionid validator: %w", err)
	}
	if err := v.RegisterValidation("optionsource", validateOptionsSource); err != nil {
		return fmt.Errorf("failed to register optionsource validator: %w", err)
	}
	return nil
}

// newValidator returns a validator with the catalog tags registered.
func newValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := RegisterCatalogValidators(v); err != nil {
		return nil, err
	}
	return v, nil
}

// validateSemver validates that a string follows X.Y.Z where X, Y and Z are
// non-negative integers.
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

func validateQuestionID(fl validator.FieldLevel) bool {
	return questionIDPattern.MatchString(fl.Field().String())
}

func validateOptionsSource(fl validator.FieldLevel) bool {
	switch domain.OptionsSource(fl.Field().String()) {
	case domain.SourceDrivers, domain.SourceTeams, domain.SourceRaces:
		return true
	default:
		return false
	}
}

// ValidateSimulationConfig checks run parameters before any work starts.
func ValidateSimulationConfig(cfg SimulationConfig) error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSimulation, err)
	}
	return nil
}
