package transform

import (
	"fmt"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/shopspring/decimal"
)

// SetContributionYears replaces the contribution time (Tc)
type SetContributionYears struct {
	Years decimal.Decimal
}

func (t *SetContributionYears) Name() string { return "set_contribution_years" }

func (t *SetContributionYears) Description() string {
	return fmt.Sprintf("Set contribution time to %s years", t.Years.String())
}

func (t *SetContributionYears) Validate(domain.PensionParameters) error {
	if t.Years.IsNegative() {
		return NewTransformError(t.Name(), "validate", "years must be non-negative", domain.ErrInvalidParameter)
	}
	return nil
}

func (t *SetContributionYears) Apply(base domain.PensionParameters) (domain.PensionParameters, error) {
	base.ContributionYears = t.Years
	return base, nil
}

// SetSurvivalExpectancy replaces the survival expectancy (Es)
type SetSurvivalExpectancy struct {
	Years decimal.Decimal
}

func (t *SetSurvivalExpectancy) Name() string { return "set_survival_expectancy" }

func (t *SetSurvivalExpectancy) Description() string {
	return fmt.Sprintf("Set survival expectancy to %s years", t.Years.String())
}

func (t *SetSurvivalExpectancy) Validate(domain.PensionParameters) error {
	if !t.Years.IsPositive() {
		return NewTransformError(t.Name(), "validate", "survival expectancy must be positive", domain.ErrInvalidSurvivalExpectancy)
	}
	return nil
}

func (t *SetSurvivalExpectancy) Apply(base domain.PensionParameters) (domain.PensionParameters, error) {
	base.SurvivalExpectancy = t.Years
	return base, nil
}

// SetAge replaces the age at retirement (Id)
type SetAge struct {
	Age decimal.Decimal
}

func (t *SetAge) Name() string { return "set_age" }

func (t *SetAge) Description() string {
	return fmt.Sprintf("Set retirement age to %s", t.Age.String())
}

func (t *SetAge) Validate(domain.PensionParameters) error {
	if t.Age.IsNegative() {
		return NewTransformError(t.Name(), "validate", "age must be non-negative", domain.ErrInvalidParameter)
	}
	return nil
}

func (t *SetAge) Apply(base domain.PensionParameters) (domain.PensionParameters, error) {
	base.Age = t.Age
	return base, nil
}

// SetAliquot replaces the contribution aliquot (a)
type SetAliquot struct {
	Aliquot decimal.Decimal
}

func (t *SetAliquot) Name() string { return "set_aliquot" }

func (t *SetAliquot) Description() string {
	return fmt.Sprintf("Set aliquot to %s", t.Aliquot.String())
}

func (t *SetAliquot) Validate(domain.PensionParameters) error {
	if t.Aliquot.IsNegative() || t.Aliquot.GreaterThan(decimal.NewFromInt(1)) {
		return NewTransformError(t.Name(), "validate", "aliquot must be between 0 and 1", domain.ErrInvalidParameter)
	}
	return nil
}

func (t *SetAliquot) Apply(base domain.PensionParameters) (domain.PensionParameters, error) {
	base.Aliquot = t.Aliquot
	return base, nil
}

// PostponeRetirement models working longer: every extra year adds to both
// the contribution time and the age. With NoContribution only the age moves.
type PostponeRetirement struct {
	Years          decimal.Decimal
	NoContribution bool
}

func (t *PostponeRetirement) Name() string { return "postpone_retirement" }

func (t *PostponeRetirement) Description() string {
	if t.NoContribution {
		return fmt.Sprintf("Postpone retirement by %s years without contributing", t.Years.String())
	}
	return fmt.Sprintf("Postpone retirement by %s years", t.Years.String())
}

func (t *PostponeRetirement) Validate(base domain.PensionParameters) error {
	if t.Years.IsNegative() {
		return NewTransformError(t.Name(), "validate", fmt.Sprintf("years must be non-negative, got %s", t.Years), nil)
	}
	return nil
}

func (t *PostponeRetirement) Apply(base domain.PensionParameters) (domain.PensionParameters, error) {
	if !t.NoContribution {
		base.ContributionYears = base.ContributionYears.Add(t.Years)
	}
	base.Age = base.Age.Add(t.Years)
	return base, nil
}
