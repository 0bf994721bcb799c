package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/output"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing simulations
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("INSS BENEFIT SIMULATION COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Base Scenario: %s\n", compSet.BaseScenarioName))
	if compSet.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Configuration: %s\n", compSet.ConfigPath))
	}
	if compSet.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: %s\n", compSet.RunID))
	}
	sb.WriteString("\n")

	nameWidth := 22
	numWidth := 11

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "Contrib.",
		numWidth, "Age",
		numWidth, "Average",
		numWidth, "Factor",
		numWidth, "Benefit"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}
			sb.WriteString(fmt.Sprintf("  Factor:   %s%s\n",
				tf.deltaSymbol(alt.FactorDiffFromBase),
				alt.FactorDiffFromBase.StringFixed(4)))
			sb.WriteString(fmt.Sprintf("  Benefit:  %sR$ %s (%s)\n",
				tf.deltaSymbol(alt.BenefitDiffFromBase),
				tf.formatDecimal(alt.BenefitDiffFromBase),
				output.FormatPercentage(alt.BenefitPctFromBase)))
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("- %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single simulation row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}

	benefit := tf.formatDecimal(result.FinalBenefit)
	if result.Status != "" && result.Status != domain.StatusOK {
		benefit = "n/a"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, result.Parameters.ContributionYears.String(),
		numWidth, result.Parameters.Age.String(),
		numWidth, tf.formatDecimal(result.AverageTopSelection),
		numWidth, result.Factor.StringFixed(4),
		numWidth, benefit)
}

// formatDecimal formats a monetary amount with two places
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// deltaSymbol returns a + prefix for positive deltas; negatives carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary for each simulation
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		if alt.BenefitDiffFromBase.IsPositive() {
			change = fmt.Sprintf("+R$%s", tf.formatDecimal(alt.BenefitDiffFromBase))
		} else if alt.BenefitDiffFromBase.IsNegative() {
			change = fmt.Sprintf("-R$%s", tf.formatDecimal(alt.BenefitDiffFromBase.Abs()))
		}

		sb.WriteString(fmt.Sprintf("%s: %s", alt.ScenarioName, change))
	}

	return sb.String()
}
