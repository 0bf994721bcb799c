package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// IndexBreakpoint starts a correction era at Year
type IndexBreakpoint struct {
	Year       int             `yaml:"year" json:"year"`
	Multiplier decimal.Decimal `yaml:"multiplier" json:"multiplier"`
}

// PeriodIndexTable maps a calendar year to its monetary correction multiplier.
// Years before the first breakpoint use the first multiplier; the last
// bucket is open-ended.
type PeriodIndexTable struct {
	Breakpoints []IndexBreakpoint `yaml:"breakpoints" json:"breakpoints"`
}

// AppliedIndex is a labelled era multiplier reported in the summary
type AppliedIndex struct {
	Label      string          `yaml:"label" json:"label"`
	Multiplier decimal.Decimal `yaml:"multiplier" json:"multiplier"`
}

// DefaultPeriodIndexTable returns the built-in era multipliers
func DefaultPeriodIndexTable() PeriodIndexTable {
	return PeriodIndexTable{Breakpoints: []IndexBreakpoint{
		{Year: 1900, Multiplier: decimal.NewFromInt(5000)},
		{Year: 1990, Multiplier: decimal.NewFromInt(1000)},
		{Year: 1994, Multiplier: decimal.RequireFromString("2.75")},
		{Year: 2000, Multiplier: decimal.RequireFromString("1.3")},
		{Year: 2010, Multiplier: decimal.RequireFromString("1.1")},
		{Year: 2020, Multiplier: decimal.RequireFromString("1.05")},
	}}
}

// Validate checks ordering and positivity of the breakpoints
func (t PeriodIndexTable) Validate() error {
	if len(t.Breakpoints) == 0 {
		return fmt.Errorf("index table has no breakpoints")
	}
	for i, bp := range t.Breakpoints {
		if !bp.Multiplier.IsPositive() {
			return fmt.Errorf("breakpoints[%d].multiplier must be positive", i)
		}
		if i > 0 && bp.Year <= t.Breakpoints[i-1].Year {
			return fmt.Errorf("breakpoints[%d].year must be greater than %d", i, t.Breakpoints[i-1].Year)
		}
	}
	return nil
}

// MultiplierFor returns the multiplier of the era containing year
func (t PeriodIndexTable) MultiplierFor(year int) decimal.Decimal {
	if len(t.Breakpoints) == 0 {
		return decimal.NewFromInt(1)
	}
	m := t.Breakpoints[0].Multiplier
	for _, bp := range t.Breakpoints {
		if year < bp.Year {
			break
		}
		m = bp.Multiplier
	}
	return m
}

// Labels returns the table as labelled buckets, e.g. "<1990", "1990-1993", "2020+"
func (t PeriodIndexTable) Labels() []AppliedIndex {
	n := len(t.Breakpoints)
	out := make([]AppliedIndex, 0, n)
	for i, bp := range t.Breakpoints {
		var label string
		switch {
		case n == 1:
			label = "all"
		case i == 0:
			label = fmt.Sprintf("<%d", t.Breakpoints[1].Year)
		case i == n-1:
			label = fmt.Sprintf("%d+", bp.Year)
		default:
			last := t.Breakpoints[i+1].Year - 1
			if last == bp.Year {
				label = fmt.Sprintf("%d", bp.Year)
			} else {
				label = fmt.Sprintf("%d-%d", bp.Year, last)
			}
		}
		out = append(out, AppliedIndex{Label: label, Multiplier: bp.Multiplier})
	}
	return out
}

// PipelineOptions tunes the normalization stages
type PipelineOptions struct {
	Ceiling                decimal.Decimal  `yaml:"ceiling" json:"ceiling"`
	TopFraction            decimal.Decimal  `yaml:"top_fraction" json:"top_fraction"`
	ExclusionMarkers       []string         `yaml:"exclusion_markers" json:"exclusion_markers"`
	ApplyCorrection        bool             `yaml:"apply_correction" json:"apply_correction"`
	IndexTable             PeriodIndexTable `yaml:"index_table" json:"index_table"`
	PertinenceAverageAbove decimal.Decimal  `yaml:"pertinence_average_above" json:"pertinence_average_above"`
	PertinenceBenefitBelow decimal.Decimal  `yaml:"pertinence_benefit_below" json:"pertinence_benefit_below"`
}

// DefaultPipelineOptions returns the standard stage settings
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Ceiling:                decimal.NewFromInt(50000),
		TopFraction:            decimal.RequireFromString("0.8"),
		ExclusionMarkers:       []string{"desconsiderado"},
		IndexTable:             DefaultPeriodIndexTable(),
		PertinenceAverageAbove: decimal.NewFromInt(20000),
		PertinenceBenefitBelow: decimal.NewFromInt(5000),
	}
}

// Validate checks option ranges
func (o PipelineOptions) Validate() error {
	if !o.Ceiling.IsPositive() {
		return fmt.Errorf("ceiling must be positive")
	}
	if o.TopFraction.LessThanOrEqual(decimal.Zero) || o.TopFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("top_fraction must be in (0, 1]")
	}
	if o.ApplyCorrection {
		if err := o.IndexTable.Validate(); err != nil {
			return fmt.Errorf("index_table: %w", err)
		}
	}
	return nil
}
