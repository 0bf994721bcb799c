package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Period is the month/year (competência) a salary record pertains to
type Period struct {
	Month int `yaml:"month" json:"month"`
	Year  int `yaml:"year" json:"year"`
}

var (
	periodMonthYear    = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	periodDayMonthYear = regexp.MustCompile(`^\d{1,2}/(\d{1,2})/(\d{4})$`)
	periodISO          = regexp.MustCompile(`^(\d{4})-(\d{1,2})(?:-\d{1,2})?$`)
)

// ParsePeriod parses MM/YYYY, M/YYYY, DD/MM/YYYY and YYYY-MM forms.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	var monthStr, yearStr string
	switch {
	case periodMonthYear.MatchString(s):
		m := periodMonthYear.FindStringSubmatch(s)
		monthStr, yearStr = m[1], m[2]
	case periodDayMonthYear.MatchString(s):
		m := periodDayMonthYear.FindStringSubmatch(s)
		monthStr, yearStr = m[1], m[2]
	case periodISO.MatchString(s):
		m := periodISO.FindStringSubmatch(s)
		yearStr, monthStr = m[1], m[2]
	default:
		return Period{}, fmt.Errorf("unrecognized period %q", s)
	}

	month, _ := strconv.Atoi(monthStr)
	year, _ := strconv.Atoi(yearStr)
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks the month range and the 4-digit year
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("month %d out of range", p.Month)
	}
	if p.Year < 1000 || p.Year > 9999 {
		return fmt.Errorf("year %d is not a 4-digit year", p.Year)
	}
	return nil
}

// String renders the period as MM/YYYY
func (p Period) String() string {
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}

// Before reports whether p is calendar-earlier than other
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// MarshalText implements encoding.TextMarshaler
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Origin identifies which kind of document produced a record
type Origin int

const (
	PrimaryHistory Origin = iota
	BenefitLetter
	Manual
)

func (o Origin) String() string {
	switch o {
	case PrimaryHistory:
		return "cnis"
	case BenefitLetter:
		return "carta"
	case Manual:
		return "manual"
	default:
		return "unknown"
	}
}

// ParseOrigin maps a configuration value to an Origin
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cnis", "primary", "primary_history", "":
		return PrimaryHistory, nil
	case "carta", "letter", "benefit_letter":
		return BenefitLetter, nil
	case "manual":
		return Manual, nil
	default:
		return PrimaryHistory, fmt.Errorf("unknown origin %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Origin) UnmarshalText(text []byte) error {
	parsed, err := ParseOrigin(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Audit flags attached to records by the normalizer
const (
	FlagUnparseableAmount    = "unparseable_amount"
	FlagNegativeAmount       = "negative_amount"
	FlagUnparseableCorrected = "unparseable_corrected"
)

// RecordKey identifies a record across stages
type RecordKey struct {
	Source   string
	Sequence int
}

// SalaryRecord is one salary/contribution entry of a beneficiary's history
type SalaryRecord struct {
	Source          string          `yaml:"source" json:"source"`
	Sequence        int             `yaml:"sequence" json:"sequence"`
	Reference       string          `yaml:"reference,omitempty" json:"reference,omitempty"`
	Period          Period          `yaml:"period" json:"period"`
	GrossAmount     decimal.Decimal `yaml:"gross_amount" json:"gross_amount"`
	Index           decimal.Decimal `yaml:"index" json:"index"`
	CorrectedAmount decimal.Decimal `yaml:"corrected_amount" json:"corrected_amount"`
	Origin          Origin          `yaml:"origin" json:"origin"`
	Considered      bool            `yaml:"considered" json:"considered"`
	Note            string          `yaml:"note,omitempty" json:"note,omitempty"`
	Duplicate       bool            `yaml:"duplicate,omitempty" json:"duplicate,omitempty"`
	Flags           []string        `yaml:"flags,omitempty" json:"flags,omitempty"`
	Corrected       bool            `yaml:"corrected,omitempty" json:"corrected,omitempty"`
	Reconciled      bool            `yaml:"reconciled,omitempty" json:"reconciled,omitempty"`
}

// Key returns the identity of the record
func (r SalaryRecord) Key() RecordKey {
	return RecordKey{Source: r.Source, Sequence: r.Sequence}
}

// HasFlag reports whether the record carries the given audit flag
func (r SalaryRecord) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Unparseable reports whether a numeric column of the record could not be read
func (r SalaryRecord) Unparseable() bool {
	return r.HasFlag(FlagUnparseableAmount) || r.HasFlag(FlagUnparseableCorrected)
}

// Clone returns a copy that shares no slices with r
func (r SalaryRecord) Clone() SalaryRecord {
	c := r
	if r.Flags != nil {
		c.Flags = append([]string(nil), r.Flags...)
	}
	return c
}

// WithFlag returns a copy of r carrying flag
func (r SalaryRecord) WithFlag(flag string) SalaryRecord {
	c := r.Clone()
	if !c.HasFlag(flag) {
		c.Flags = append(c.Flags, flag)
	}
	return c
}

// CloneRecords copies a slice of records
func CloneRecords(records []SalaryRecord) []SalaryRecord {
	if records == nil {
		return nil
	}
	out := make([]SalaryRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
