package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Status",
		"Contribution Years",
		"Survival Expectancy",
		"Age",
		"Aliquot",
		"Average Top Selection",
		"Factor",
		"Final Benefit",
		"Factor Diff from Base",
		"Benefit Diff from Base",
		"Benefit % Change",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	p := result.Parameters
	return []string{
		result.ScenarioName,
		scenarioType,
		string(result.Status),
		p.ContributionYears.String(),
		p.SurvivalExpectancy.String(),
		p.Age.String(),
		p.Aliquot.String(),
		result.AverageTopSelection.StringFixed(2),
		result.Factor.StringFixed(4),
		result.FinalBenefit.StringFixed(2),
		result.FactorDiffFromBase.StringFixed(4),
		result.BenefitDiffFromBase.StringFixed(2),
		result.BenefitPctFromBase.StringFixed(2),
	}
}
