package calculation

import (
	"sort"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/shopspring/decimal"
)

// Selection is the result of the top-percentile cut
type Selection struct {
	Top       []domain.SalaryRecord `yaml:"top" json:"top"`
	Remainder []domain.SalaryRecord `yaml:"remainder" json:"remainder"`
	N         int                   `yaml:"n" json:"n"`
	K         int                   `yaml:"k" json:"k"`
}

// SelectionSize returns floor(n * fraction)
func SelectionSize(n int, fraction decimal.Decimal) int {
	if n <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(n)).Mul(fraction).Floor().IntPart())
}

// SelectTop ranks records by corrected amount, highest first, keeping input
// order among equal amounts, and keeps the first floor(n * fraction).
func SelectTop(records []domain.SalaryRecord, fraction decimal.Decimal) Selection {
	ranked := domain.CloneRecords(records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CorrectedAmount.GreaterThan(ranked[j].CorrectedAmount)
	})

	n := len(ranked)
	k := SelectionSize(n, fraction)
	return Selection{
		Top:       ranked[:k:k],
		Remainder: ranked[k:],
		N:         n,
		K:         k,
	}
}
