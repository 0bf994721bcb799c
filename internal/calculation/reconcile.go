package calculation

import (
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/shopspring/decimal"
)

// Reconciliation is the union of the top selection and promoted records
type Reconciliation struct {
	Records  []domain.SalaryRecord `yaml:"records" json:"records"`
	Promoted []domain.SalaryRecord `yaml:"promoted" json:"promoted"`
	MinTop   decimal.Decimal       `yaml:"min_top" json:"min_top"`
}

// minimumCorrected returns the smallest corrected amount among records that
// were not themselves promoted, so a merged set yields the same threshold.
func minimumCorrected(records []domain.SalaryRecord) (decimal.Decimal, bool) {
	var (
		lowest decimal.Decimal
		found  bool
	)
	for _, r := range records {
		if r.Reconciled {
			continue
		}
		if !found || r.CorrectedAmount.LessThan(lowest) {
			lowest = r.CorrectedAmount
			found = true
		}
	}
	return lowest, found
}

// Reconcile promotes pool records whose corrected amount beats the lowest
// selected one. Promoted records are appended; the selection is not re-cut.
// Applying it to its own output is a no-op.
func Reconcile(top, pool []domain.SalaryRecord) Reconciliation {
	merged := domain.CloneRecords(top)
	minTop, ok := minimumCorrected(top)
	if !ok {
		return Reconciliation{Records: merged}
	}

	present := make(map[domain.RecordKey]bool, len(merged))
	for _, r := range merged {
		present[r.Key()] = true
	}

	var promoted []domain.SalaryRecord
	for _, r := range pool {
		if r.Duplicate || r.Unparseable() {
			continue
		}
		if !r.CorrectedAmount.GreaterThan(minTop) {
			continue
		}
		if present[r.Key()] {
			continue
		}
		p := r.Clone()
		p.Considered = true
		p.Reconciled = true
		present[p.Key()] = true
		promoted = append(promoted, p)
		merged = append(merged, p)
	}

	return Reconciliation{Records: merged, Promoted: promoted, MinTop: minTop}
}
