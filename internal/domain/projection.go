package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PensionParameters are the actuarial inputs of the pension factor
type PensionParameters struct {
	ContributionYears  decimal.Decimal `yaml:"contribution_years" json:"contribution_years"`
	SurvivalExpectancy decimal.Decimal `yaml:"survival_expectancy" json:"survival_expectancy"`
	Age                decimal.Decimal `yaml:"age" json:"age"`
	Aliquot            decimal.Decimal `yaml:"aliquot" json:"aliquot"`
}

// DefaultPensionParameters returns Tc=38, Es=21.8, Id=60, a=0.31
func DefaultPensionParameters() PensionParameters {
	return PensionParameters{
		ContributionYears:  decimal.NewFromInt(38),
		SurvivalExpectancy: decimal.RequireFromString("21.8"),
		Age:                decimal.NewFromInt(60),
		Aliquot:            decimal.RequireFromString("0.31"),
	}
}

var (
	// ErrInvalidSurvivalExpectancy is returned when Es is zero
	ErrInvalidSurvivalExpectancy = errors.New("invalid survival expectancy")
	// ErrInvalidParameter is returned for negative actuarial inputs
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ParameterError names the offending pension parameter
type ParameterError struct {
	Field string
	Value decimal.Decimal
	Err   error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %s", e.Err, e.Field, e.Value.String())
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

// Validate reports the first parameter the factor formula cannot accept
func (p PensionParameters) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"contribution_years", p.ContributionYears},
		{"survival_expectancy", p.SurvivalExpectancy},
		{"age", p.Age},
		{"aliquot", p.Aliquot},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return &ParameterError{Field: f.name, Value: f.value, Err: ErrInvalidParameter}
		}
	}
	if p.SurvivalExpectancy.IsZero() {
		return &ParameterError{Field: "survival_expectancy", Value: p.SurvivalExpectancy, Err: ErrInvalidSurvivalExpectancy}
	}
	return nil
}

// BenefitStatus tells whether a benefit could be computed
type BenefitStatus string

const (
	StatusOK               BenefitStatus = "ok"
	StatusInsufficientData BenefitStatus = "insufficient_data"
)

// BenefitResult is the outcome of one evaluation
type BenefitResult struct {
	Status              BenefitStatus     `yaml:"status" json:"status"`
	AverageTopSelection decimal.Decimal   `yaml:"average_top_selection" json:"average_top_selection"`
	Factor              decimal.Decimal   `yaml:"factor" json:"factor"`
	FinalBenefit        decimal.Decimal   `yaml:"final_benefit" json:"final_benefit"`
	SelectionSize       int               `yaml:"selection_size" json:"selection_size"`
	Parameters          PensionParameters `yaml:"parameters" json:"parameters"`
	Warnings            []string          `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// AuditReason explains why a record left the pipeline
type AuditReason string

const (
	ReasonAboveCeiling  AuditReason = "above_ceiling"
	ReasonUnparseable   AuditReason = "unparseable"
	ReasonReferenceOnly AuditReason = "reference_only"
)

// AuditEntry is a record set aside by a stage
type AuditEntry struct {
	Record SalaryRecord `yaml:"record" json:"record"`
	Reason AuditReason  `yaml:"reason" json:"reason"`
}

// RecordCounts tallies records per stage
type RecordCounts struct {
	Parsed     int `yaml:"parsed" json:"parsed"`
	Skipped    int `yaml:"skipped" json:"skipped"`
	Dropped    int `yaml:"dropped" json:"dropped"`
	Audited    int `yaml:"audited" json:"audited"`
	Considered int `yaml:"considered" json:"considered"`
	Excluded   int `yaml:"excluded" json:"excluded"`
	Selected   int `yaml:"selected" json:"selected"`
	Remainder  int `yaml:"remainder" json:"remainder"`
	Promoted   int `yaml:"promoted" json:"promoted"`
	Reconciled int `yaml:"reconciled" json:"reconciled"`
}

// Summary is the audit log of a run
type Summary struct {
	RunID               string            `yaml:"run_id" json:"run_id"`
	AppliedIndices      []AppliedIndex    `yaml:"applied_indices,omitempty" json:"applied_indices,omitempty"`
	AverageTopSelection decimal.Decimal   `yaml:"average_top_selection" json:"average_top_selection"`
	Factor              decimal.Decimal   `yaml:"factor" json:"factor"`
	FinalBenefit        decimal.Decimal   `yaml:"final_benefit" json:"final_benefit"`
	Status              BenefitStatus     `yaml:"status" json:"status"`
	Counts              RecordCounts      `yaml:"counts" json:"counts"`
	Warnings            []string          `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Parameters          PensionParameters `yaml:"parameters" json:"parameters"`
}
