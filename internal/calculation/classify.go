package calculation

import (
	"strings"
	"unicode"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Classification splits classified records by what they feed
type Classification struct {
	// Records holds every classified record in input order
	Records []domain.SalaryRecord
	// Selection holds considered records of history sources
	Selection []domain.SalaryRecord
	// Pool holds excluded records of any source
	Pool  []domain.SalaryRecord
	Audit []domain.AuditEntry
}

// foldText lowercases s and strips diacritics so "DESCONSIDERADO" and
// "desconsíderado" compare equal.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// hasMarker reports whether note contains any of the exclusion markers
func hasMarker(note string, markers []string) bool {
	if note == "" {
		return false
	}
	folded := foldText(note)
	for _, m := range markers {
		if m = strings.TrimSpace(m); m == "" {
			continue
		}
		if strings.Contains(folded, foldText(m)) {
			return true
		}
	}
	return false
}

// Classify sets Origin and Considered on every record. Sources not present
// in sources are treated as history sources of their record's origin.
func Classify(records []domain.SalaryRecord, sources map[string]domain.SourceConfig, markers []string) Classification {
	var c Classification
	c.Records = make([]domain.SalaryRecord, 0, len(records))

	for _, r := range records {
		rec := r.Clone()
		src, known := sources[rec.Source]
		role := domain.FeedsHistory
		if known {
			rec.Origin = src.Origin
			role = src.Role()
		}
		rec.Considered = !(known && src.Excluded) && !hasMarker(rec.Note, markers)
		c.Records = append(c.Records, rec)

		switch {
		case !rec.Considered:
			c.Pool = append(c.Pool, rec)
		case role == domain.FeedsHistory:
			c.Selection = append(c.Selection, rec)
		default:
			c.Audit = append(c.Audit, domain.AuditEntry{Record: rec, Reason: domain.ReasonReferenceOnly})
		}
	}
	return c
}
