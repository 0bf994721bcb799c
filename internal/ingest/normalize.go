package ingest

import (
	"strconv"
	"strings"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/shopspring/decimal"
)

// ParseAmount converts a locale numeric token ("1.234,56", "R$ 2.000,00",
// "1234.56") into a decimal. It never fails: an unreadable token yields zero
// and ok=false.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Zero, false
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// NormalizeAmount applies ParseAmount and the non-negativity rule, returning
// the audit flag to attach, if any.
func NormalizeAmount(s string, unparseableFlag string) (decimal.Decimal, string) {
	d, ok := ParseAmount(s)
	if !ok {
		return decimal.Zero, unparseableFlag
	}
	if d.IsNegative() {
		return decimal.Zero, domain.FlagNegativeAmount
	}
	return d, ""
}

// resolvePeriod reads the period column, falling back to the year column
func resolvePeriod(row RawRow) (domain.Period, bool) {
	if p, err := domain.ParsePeriod(row.Period); err == nil {
		return p, true
	}
	year := strings.TrimSpace(row.Year)
	if len(year) != 4 {
		return domain.Period{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return domain.Period{}, false
	}
	p := domain.Period{Month: 1, Year: y}
	if p.Validate() != nil {
		return domain.Period{}, false
	}
	return p, true
}

func parseDuplicate(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "sim", "s", "yes", "1", "x":
		return true
	}
	return false
}

// Normalize converts a batch of raw rows into typed salary records. Rows
// without a resolvable period are dropped and counted; malformed amounts
// are flagged, never fatal.
func Normalize(batch Batch) ([]domain.SalaryRecord, ParseReport) {
	report := batch.Report
	records := make([]domain.SalaryRecord, 0, len(batch.Rows))

	for _, row := range batch.Rows {
		period, ok := resolvePeriod(row)
		if !ok {
			report.Parsed--
			report.Dropped++
			continue
		}

		rec := domain.SalaryRecord{
			Source:    batch.Source.Name,
			Sequence:  row.Sequence,
			Reference: strings.TrimSpace(row.Reference),
			Period:    period,
			Origin:    batch.Source.Origin,
			Note:      strings.TrimSpace(row.Note),
			Duplicate: parseDuplicate(row.Duplicate),
		}

		gross, flag := NormalizeAmount(row.Amount, domain.FlagUnparseableAmount)
		rec.GrossAmount = gross
		if flag != "" {
			rec.Flags = append(rec.Flags, flag)
		}

		if strings.TrimSpace(row.Index) != "" {
			if idx, ok := ParseAmount(row.Index); ok {
				rec.Index = idx
			}
		}

		rec.CorrectedAmount = gross
		if strings.TrimSpace(row.Corrected) != "" {
			corrected, flag := NormalizeAmount(row.Corrected, domain.FlagUnparseableCorrected)
			rec.CorrectedAmount = corrected
			if flag != "" && !rec.HasFlag(flag) {
				rec.Flags = append(rec.Flags, flag)
			}
		}

		if rec.Unparseable() {
			report.Unparseable++
		}
		records = append(records, rec)
	}
	return records, report
}
