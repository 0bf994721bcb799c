package calculation

import (
	"fmt"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/shopspring/decimal"
)

// PertinenceThresholds control the review warning attached to results
type PertinenceThresholds struct {
	AverageAbove decimal.Decimal
	BenefitBelow decimal.Decimal
}

// MeanCorrected averages CorrectedAmount over records
func MeanCorrected(records []domain.SalaryRecord) decimal.Decimal {
	if len(records) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.CorrectedAmount)
	}
	return sum.Div(decimal.NewFromInt(int64(len(records))))
}

// Aggregate computes the benefit of records under params. An empty set
// yields StatusInsufficientData, not an error; invalid parameters do.
func Aggregate(records []domain.SalaryRecord, params domain.PensionParameters, thresholds PertinenceThresholds) (domain.BenefitResult, error) {
	factor, err := PensionFactor(params)
	if err != nil {
		return domain.BenefitResult{}, err
	}

	result := domain.BenefitResult{
		Factor:        factor,
		SelectionSize: len(records),
		Parameters:    params,
	}
	if len(records) == 0 {
		result.Status = domain.StatusInsufficientData
		result.Warnings = []string{"insufficient data: no records available for the average"}
		return result, nil
	}

	average := MeanCorrected(records)
	result.Status = domain.StatusOK
	result.AverageTopSelection = average.Round(2)
	result.FinalBenefit = average.Mul(factor).Round(2)

	if pertinent(average, result.FinalBenefit, thresholds) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"average %s is above %s but benefit %s is below %s: review excluded salaries and the contribution ceiling",
			result.AverageTopSelection.StringFixed(2), thresholds.AverageAbove.StringFixed(2),
			result.FinalBenefit.StringFixed(2), thresholds.BenefitBelow.StringFixed(2)))
	}
	return result, nil
}

func pertinent(average, benefit decimal.Decimal, t PertinenceThresholds) bool {
	if t.AverageAbove.IsZero() && t.BenefitBelow.IsZero() {
		return false
	}
	return average.GreaterThan(t.AverageAbove) && benefit.LessThan(t.BenefitBelow)
}
