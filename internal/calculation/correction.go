package calculation

import (
	"github.com/rgehrsitz/inss-calc/internal/domain"
)

// ApplyCorrection rescales every record by its era multiplier:
// CorrectedAmount = round(GrossAmount * multiplier, 2).
func ApplyCorrection(records []domain.SalaryRecord, table domain.PeriodIndexTable) []domain.SalaryRecord {
	out := make([]domain.SalaryRecord, len(records))
	for i, r := range records {
		c := r.Clone()
		c.CorrectedAmount = c.GrossAmount.Mul(table.MultiplierFor(c.Period.Year)).Round(2)
		c.Corrected = true
		out[i] = c
	}
	return out
}
