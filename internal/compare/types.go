package compare

import (
	"fmt"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult represents a single simulation with calculated metrics
type ComparisonResult struct {
	ScenarioName string                   `json:"scenarioName"`
	Description  string                   `json:"description"`
	Parameters   domain.PensionParameters `json:"parameters"`
	Status       domain.BenefitStatus     `json:"status"`

	// Key Metrics
	AverageTopSelection decimal.Decimal `json:"averageTopSelection"`
	Factor              decimal.Decimal `json:"factor"`
	FinalBenefit        decimal.Decimal `json:"finalBenefit"`

	// Comparison to Base
	FactorDiffFromBase  decimal.Decimal `json:"factorDiffFromBase"`
	BenefitDiffFromBase decimal.Decimal `json:"benefitDiffFromBase"`
	BenefitPctFromBase  decimal.Decimal `json:"benefitPctFromBase"`
}

// ComparisonSet represents a collection of simulation comparisons
type ComparisonSet struct {
	RunID              string             `json:"runId"`
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"configPath"`
}

// MetricsCalculator extracts key metrics from benefit results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics builds a comparison row from a benefit result
func (mc *MetricsCalculator) CalculateMetrics(name string, result domain.BenefitResult) ComparisonResult {
	return ComparisonResult{
		ScenarioName:        name,
		Parameters:          result.Parameters,
		Status:              result.Status,
		AverageTopSelection: result.AverageTopSelection,
		Factor:              result.Factor,
		FinalBenefit:        result.FinalBenefit,
	}
}

// CalculateComparison computes comparison metrics between a scenario and a base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.FactorDiffFromBase = scenario.Factor.Sub(base.Factor)
	scenario.BenefitDiffFromBase = scenario.FinalBenefit.Sub(base.FinalBenefit)

	if !base.FinalBenefit.IsZero() {
		scenario.BenefitPctFromBase = scenario.BenefitDiffFromBase.
			Div(base.FinalBenefit).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return scenario
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if len(compSet.AlternativeResults) == 0 || compSet.BaseResult == nil {
		return recommendations
	}
	if compSet.BaseResult.Status == domain.StatusInsufficientData {
		return append(recommendations, "Insufficient data: add salary records before comparing simulations")
	}

	best := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.FinalBenefit.GreaterThan(best.FinalBenefit) {
			best = alt
		}
	}

	if best != compSet.BaseResult {
		recommendations = append(recommendations, fmt.Sprintf(
			"Best Benefit: %s raises the monthly benefit by R$ %s (%s%%)",
			best.ScenarioName, best.BenefitDiffFromBase.StringFixed(2), best.BenefitPctFromBase.StringFixed(2)))
	} else {
		recommendations = append(recommendations,
			"Base parameters already give the highest benefit among the simulations")
	}

	if best.Factor.LessThan(decimal.NewFromInt(1)) {
		recommendations = append(recommendations, fmt.Sprintf(
			"Pension factor %s is below 1: the benefit is reduced relative to the average salary",
			best.Factor.StringFixed(4)))
	}

	return recommendations
}
