package output

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/domain"
)

// MarkdownFormatter renders the run as a Markdown document
type MarkdownFormatter struct{}

func (m MarkdownFormatter) Name() string { return "markdown" }

func (m MarkdownFormatter) Format(report *calculation.Report) ([]byte, error) {
	var buf bytes.Buffer
	s := report.Summary
	p := s.Parameters

	fmt.Fprintln(&buf, "# INSS Benefit Calculation")
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Run `%s`\n\n", s.RunID)

	fmt.Fprintln(&buf, "## Formula")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "The benefit is the average of the highest salaries multiplied by the pension factor:")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "    f = (Tc × a / Es) × (1 + (Id + Tc × a) / 100)")
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Only the top %d of %d considered salaries enter the average; excluded salaries above the smallest of them are brought back.\n\n",
		report.Selection.K, report.Selection.N)

	fmt.Fprintln(&buf, "## Result")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "| Item | Value |")
	fmt.Fprintln(&buf, "|---|---|")
	fmt.Fprintf(&buf, "| Status | %s |\n", s.Status)
	fmt.Fprintf(&buf, "| Contribution time (Tc) | %s |\n", p.ContributionYears)
	fmt.Fprintf(&buf, "| Survival expectancy (Es) | %s |\n", p.SurvivalExpectancy)
	fmt.Fprintf(&buf, "| Age (Id) | %s |\n", p.Age)
	fmt.Fprintf(&buf, "| Aliquot (a) | %s |\n", p.Aliquot)
	if s.Status == domain.StatusOK {
		fmt.Fprintf(&buf, "| Average of top salaries | %s |\n", FormatCurrency(s.AverageTopSelection))
		fmt.Fprintf(&buf, "| Pension factor | %s |\n", s.Factor.StringFixed(4))
		fmt.Fprintf(&buf, "| Final benefit | %s |\n", FormatCurrency(s.FinalBenefit))
	}
	fmt.Fprintln(&buf)

	for _, w := range s.Warnings {
		fmt.Fprintf(&buf, "> **Warning:** %s\n\n", w)
	}

	if len(s.AppliedIndices) > 0 {
		fmt.Fprintln(&buf, "## Monetary Correction")
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "| Period | Multiplier |")
		fmt.Fprintln(&buf, "|---|---|")
		for _, idx := range s.AppliedIndices {
			fmt.Fprintf(&buf, "| %s | %s |\n", idx.Label, idx.Multiplier)
		}
		fmt.Fprintln(&buf)
	}

	writeRecordTable(&buf, "Selected Salaries", report.Selection.Top)
	writeRecordTable(&buf, "Promoted From Exclusions", report.Reconciliation.Promoted)

	if len(report.Audit) > 0 {
		fmt.Fprintln(&buf, "## Audit")
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "| Source | Seq | Period | Gross | Reason |")
		fmt.Fprintln(&buf, "|---|---|---|---|---|")
		for _, a := range report.Audit {
			r := a.Record
			fmt.Fprintf(&buf, "| %s | %d | %s | %s | %s |\n",
				r.Source, r.Sequence, r.Period, r.GrossAmount.StringFixed(2), a.Reason)
		}
		fmt.Fprintln(&buf)
	}

	return buf.Bytes(), nil
}

// writeRecordTable lists records in calendar order
func writeRecordTable(buf *bytes.Buffer, title string, records []domain.SalaryRecord) {
	if len(records) == 0 {
		return
	}
	records = append([]domain.SalaryRecord(nil), records...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Period.Before(records[j].Period)
	})
	fmt.Fprintf(buf, "## %s\n\n", title)
	fmt.Fprintln(buf, "| Period | Gross | Corrected | Source | Note |")
	fmt.Fprintln(buf, "|---|---|---|---|---|")
	for _, r := range records {
		fmt.Fprintf(buf, "| %s | %s | %s | %s | %s |\n",
			r.Period, r.GrossAmount.StringFixed(2), r.CorrectedAmount.StringFixed(2), r.Source, r.Note)
	}
	fmt.Fprintln(buf)
}

// RenderMarkdown renders Markdown for the terminal
func RenderMarkdown(markdown []byte, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(string(markdown))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
