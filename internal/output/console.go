package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(26)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// ConsoleFormatter renders a human-readable run report
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *calculation.Report) ([]byte, error) {
	var buf bytes.Buffer
	s := report.Summary

	fmt.Fprintln(&buf, titleStyle.Render("INSS BENEFIT CALCULATION"))
	fmt.Fprintf(&buf, "Run: %s\n\n", s.RunID)

	fmt.Fprintln(&buf, sectionStyle.Render("SOURCES"))
	for _, src := range report.Sources {
		r := src.Report
		fmt.Fprintf(&buf, "  %-16s lines %d, parsed %d, skipped %d, dropped %d\n",
			src.Name, r.Lines, r.Parsed, r.Skipped, r.Dropped)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, sectionStyle.Render("RECORDS"))
	writeField(&buf, "Considered", fmt.Sprintf("%d", s.Counts.Considered))
	writeField(&buf, "Excluded (pool)", fmt.Sprintf("%d", s.Counts.Excluded))
	writeField(&buf, "Audited", fmt.Sprintf("%d", s.Counts.Audited))
	writeField(&buf, "Selected (top)", fmt.Sprintf("%d of %d", s.Counts.Selected, report.Selection.N))
	writeField(&buf, "Promoted", fmt.Sprintf("%d", s.Counts.Promoted))
	writeField(&buf, "Reconciled set", fmt.Sprintf("%d", s.Counts.Reconciled))
	fmt.Fprintln(&buf)

	if len(s.AppliedIndices) > 0 {
		fmt.Fprintln(&buf, sectionStyle.Render("MONETARY CORRECTION"))
		for _, idx := range s.AppliedIndices {
			writeField(&buf, idx.Label, "x"+idx.Multiplier.String())
		}
		fmt.Fprintln(&buf)
	}

	p := s.Parameters
	fmt.Fprintln(&buf, sectionStyle.Render("PARAMETERS"))
	writeField(&buf, "Contribution time (Tc)", p.ContributionYears.String())
	writeField(&buf, "Survival expectancy (Es)", p.SurvivalExpectancy.String())
	writeField(&buf, "Age (Id)", p.Age.String())
	writeField(&buf, "Aliquot (a)", p.Aliquot.String())
	fmt.Fprintln(&buf)

	var result strings.Builder
	if s.Status == domain.StatusInsufficientData {
		result.WriteString("Status: insufficient data\n")
		result.WriteString("No salary records remained for the calculation")
	} else {
		fmt.Fprintf(&result, "Average of top salaries: %s\n", FormatCurrency(s.AverageTopSelection))
		fmt.Fprintf(&result, "Pension factor:          %s\n", s.Factor.StringFixed(4))
		fmt.Fprintf(&result, "Final benefit:           %s", FormatCurrency(s.FinalBenefit))
	}
	fmt.Fprintln(&buf, boxStyle.Render(result.String()))

	if len(s.Warnings) > 0 {
		fmt.Fprintln(&buf)
		for _, w := range s.Warnings {
			fmt.Fprintln(&buf, warnStyle.Render("! "+w))
		}
	}

	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, label, value string) {
	fmt.Fprintf(buf, "  %s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}
