package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/ingest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func buildTestReport(t *testing.T, amounts ...string) *calculation.Report {
	t.Helper()
	var b strings.Builder
	for i, a := range amounts {
		fmt.Fprintf(&b, "%d,%02d/2010,%s,2010\n", i+1, i%12+1, a)
	}
	history, err := ingest.ParseString(b.String(), domain.SourceConfig{
		Name: "cnis", Format: domain.FormatDelimited, Layout: domain.LayoutHistory,
		Header: new(bool), Origin: domain.PrimaryHistory,
	})
	require.NoError(t, err)

	letter := ingest.Batch{
		Source: domain.SourceConfig{Name: "carta", Origin: domain.BenefitLetter, Feeds: domain.FeedsExclusions},
		Rows: []ingest.RawRow{
			{Sequence: 1, Period: "03/1999", Amount: "75,00", Note: "DESCONSIDERADO"},
		},
		Report: ingest.ParseReport{Lines: 1, Parsed: 1},
	}

	pc := calculation.PipelineContext{
		Options:    domain.DefaultPipelineOptions(),
		Parameters: domain.DefaultPensionParameters(),
	}
	report, err := calculation.NewEngine().Run(context.Background(), pc, []ingest.Batch{history, letter})
	require.NoError(t, err)
	return report
}

func sampleReport(t *testing.T) *calculation.Report {
	return buildTestReport(t, "100", "90", "80", "70", "60", "50", "40", "30", "20", "10", "999999")
}

type stubFormatter struct {
	out []byte
	err error
}

func (s stubFormatter) Name() string { return "stub" }

func (s stubFormatter) Format(*calculation.Report) ([]byte, error) { return s.out, s.err }

func TestWriteFormatted(t *testing.T) {
	chdir(t, t.TempDir())

	formatter := stubFormatter{out: []byte("test output content")}

	filename, err := WriteFormatted(formatter, &calculation.Report{}, "txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "inss_report_"), "Should have correct prefix")
	assert.True(t, strings.HasSuffix(filename, ".txt"), "Should have correct extension")

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "test output content", string(content))
}

func TestWriteFormatted_FormatterError(t *testing.T) {
	formatter := stubFormatter{err: errors.New("formatter error")}

	filename, err := WriteFormatted(formatter, &calculation.Report{}, "txt")
	assert.Error(t, err)
	assert.Empty(t, filename)
	assert.Contains(t, err.Error(), "formatter error")
}

func TestGetFormatterByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"console", "console"},
		{"csv", "csv"},
		{"json", "json"},
		{"yaml", "yaml"},
		{"markdown", "markdown"},
		{"md", "markdown"},
		{" YML ", "yaml"},
		{"records", "csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := GetFormatterByName(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.Name())
		})
	}

	assert.Nil(t, GetFormatterByName("html"), "Should return nil for unknown formatter")
}

func TestAvailableFormatterNames(t *testing.T) {
	assert.Equal(t, []string{"console", "csv", "json", "markdown", "yaml"}, AvailableFormatterNames())
	assert.Contains(t, AvailableFormatAliases(), "md")
}

func TestRecordsCSV_Format(t *testing.T) {
	report := sampleReport(t)

	out, err := RecordsCSV{}.Format(report)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(report.Rows)+1)
	assert.Equal(t, RecordsHeader, rows[0])

	first := rows[1]
	assert.Equal(t, "01/2010", first[0])
	assert.Equal(t, "100.00", first[1])
	assert.Equal(t, "cnis", first[5])
	assert.Equal(t, "true", first[6])
	assert.Equal(t, calculation.RecordSelected, first[7])
	assert.Equal(t, "cnis", first[8])
	assert.Equal(t, "1", first[9])

	last := rows[len(rows)-1]
	assert.Equal(t, "carta", last[8])
	assert.Equal(t, calculation.RecordPromoted, last[7])
}

func TestJSONFormatter_Format(t *testing.T) {
	report := sampleReport(t)

	out, err := JSONFormatter{}.Format(report)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "\n  ", "compact output")

	var decoded struct {
		Summary struct {
			RunID        string `json:"run_id"`
			Status       string `json:"status"`
			FinalBenefit string `json:"final_benefit"`
		} `json:"summary"`
		Audit []struct {
			Reason string `json:"reason"`
		} `json:"audit"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, report.RunID, decoded.Summary.RunID)
	assert.Equal(t, "ok", decoded.Summary.Status)
	assert.Equal(t, report.Summary.FinalBenefit.String(), decoded.Summary.FinalBenefit)
	require.Len(t, decoded.Audit, 1)
	assert.Equal(t, "above_ceiling", decoded.Audit[0].Reason)

	pretty, err := JSONFormatter{Pretty: true}.Format(report)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  \"summary\"")
}

func TestYAMLFormatter_Format(t *testing.T) {
	report := sampleReport(t)

	out, err := YAMLFormatter{}.Format(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	summary, ok := decoded["summary"].(map[string]any)
	require.True(t, ok, "summary should be a mapping")
	assert.Equal(t, "ok", summary["status"])
	assert.Contains(t, decoded, "trace")
	assert.Contains(t, string(out), "period: 11/2010")
}

func TestConsoleFormatter_Format(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(sampleReport(t))
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "INSS BENEFIT CALCULATION")
	assert.Contains(t, content, "SOURCES")
	assert.Contains(t, content, "cnis")
	assert.Contains(t, content, "Pension factor:")
	assert.Contains(t, content, "R$ ")
	assert.NotContains(t, content, "MONETARY CORRECTION")
}

func TestConsoleFormatter_InsufficientData(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport(t, "1000"))
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "insufficient data")
	assert.NotContains(t, content, "Final benefit")
}

func TestMarkdownFormatter_Format(t *testing.T) {
	report := sampleReport(t)

	out, err := MarkdownFormatter{}.Format(report)
	require.NoError(t, err)

	content := string(out)
	assert.True(t, strings.HasPrefix(content, "# INSS Benefit Calculation"))
	assert.Contains(t, content, "## Formula")
	assert.Contains(t, content, "f = (Tc × a / Es)")
	assert.Contains(t, content, "## Selected Salaries")
	assert.Contains(t, content, "## Promoted From Exclusions")
	assert.Contains(t, content, "| Pension factor | "+report.Summary.Factor.StringFixed(4)+" |")
	assert.Contains(t, content, "above_ceiling")
}

func TestMarkdownFormatter_SelectionInCalendarOrder(t *testing.T) {
	// ranking puts 03/2010 (90) ahead of 02/2010 (50)
	report := buildTestReport(t, "10", "50", "90")
	require.Len(t, report.Selection.Top, 2)
	require.Equal(t, "03/2010", report.Selection.Top[0].Period.String())

	out, err := MarkdownFormatter{}.Format(report)
	require.NoError(t, err)

	content := string(out)
	feb := strings.Index(content, "| 02/2010 |")
	mar := strings.Index(content, "| 03/2010 |")
	require.NotEqual(t, -1, feb)
	require.NotEqual(t, -1, mar)
	assert.Less(t, feb, mar)
	assert.Equal(t, "03/2010", report.Selection.Top[0].Period.String(), "report must not be reordered")
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown([]byte("# Title\n\nSome *text*.\n"), 0)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "R$ 58,01", FormatCurrency(decimal.RequireFromString("58.01")))
	assert.Equal(t, "R$ 1.234,50", FormatCurrency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "12.35%", FormatPercentage(decimal.RequireFromString("12.345")))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
