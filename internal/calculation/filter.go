package calculation

import (
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/shopspring/decimal"
)

// FilterOutliers moves records above ceiling, or whose amounts could not be
// read, to the audit list. Kept records preserve input order.
func FilterOutliers(records []domain.SalaryRecord, ceiling decimal.Decimal) ([]domain.SalaryRecord, []domain.AuditEntry) {
	kept := make([]domain.SalaryRecord, 0, len(records))
	var audit []domain.AuditEntry

	for _, r := range records {
		switch {
		case r.Unparseable():
			audit = append(audit, domain.AuditEntry{Record: r.Clone(), Reason: domain.ReasonUnparseable})
		case r.GrossAmount.GreaterThan(ceiling) || r.CorrectedAmount.GreaterThan(ceiling):
			audit = append(audit, domain.AuditEntry{Record: r.Clone(), Reason: domain.ReasonAboveCeiling})
		default:
			kept = append(kept, r.Clone())
		}
	}
	return kept, audit
}
