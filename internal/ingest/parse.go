package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rgehrsitz/inss-calc/internal/domain"
)

// RawRow is one extracted tuple before normalization. Numeric fields keep
// their document text.
type RawRow struct {
	Line      int
	Sequence  int
	Reference string
	Period    string
	Year      string
	Amount    string
	Index     string
	Corrected string
	Note      string
	Duplicate string
}

// ParseReport counts what happened to the input lines of one source
type ParseReport struct {
	Lines       int `yaml:"lines" json:"lines"`
	Parsed      int `yaml:"parsed" json:"parsed"`
	Skipped     int `yaml:"skipped" json:"skipped"`
	Dropped     int `yaml:"dropped" json:"dropped"`
	Unparseable int `yaml:"unparseable" json:"unparseable"`
}

// Add accumulates another report
func (r ParseReport) Add(other ParseReport) ParseReport {
	return ParseReport{
		Lines:       r.Lines + other.Lines,
		Parsed:      r.Parsed + other.Parsed,
		Skipped:     r.Skipped + other.Skipped,
		Dropped:     r.Dropped + other.Dropped,
		Unparseable: r.Unparseable + other.Unparseable,
	}
}

// Batch is the parsed content of one source
type Batch struct {
	Source domain.SourceConfig
	Rows   []RawRow
	Report ParseReport
}

var (
	// seq MM/YYYY amount index corrected [note]
	letterLine = regexp.MustCompile(`^(\d{1,4})\s+(\d{2}/\d{4})\s+([0-9.,]+)\s+([0-9.,]+)\s+([0-9.,]+)(\s+.*)?$`)
	// MM/YYYY #.##0,00 anywhere in the line
	historyToken = regexp.MustCompile(`(\d{2}/\d{4})\s+([0-9.]+,[0-9]{2})`)
)

// maxTextLine bounds the lines the matchers see; longer lines are skipped
const maxTextLine = 64 * 1024

// ParseText extracts records from free-form extracted document text.
// Lines matching neither layout are skipped and counted.
func ParseText(r io.Reader) ([]RawRow, ParseReport, error) {
	var (
		rows   []RawRow
		report ParseReport
	)

	br := bufio.NewReader(r)
	line := 0
	for {
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, report, fmt.Errorf("failed to read text: %w", err)
		}
		if raw == "" && err != nil {
			break
		}
		line++
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		report.Lines++

		if len(text) > maxTextLine {
			report.Skipped++
			continue
		}

		if m := letterLine.FindStringSubmatch(text); m != nil {
			rows = append(rows, RawRow{
				Line:      line,
				Sequence:  len(rows) + 1,
				Reference: m[1],
				Period:    m[2],
				Amount:    m[3],
				Index:     m[4],
				Corrected: m[5],
				Note:      strings.TrimSpace(m[6]),
			})
			report.Parsed++
			continue
		}

		if m := historyToken.FindStringSubmatch(text); m != nil {
			rows = append(rows, RawRow{
				Line:     line,
				Sequence: len(rows) + 1,
				Period:   m[1],
				Amount:   m[2],
			})
			report.Parsed++
			continue
		}

		report.Skipped++
	}
	return rows, report, nil
}

// layoutFields is the positional field count of each delimited layout
var layoutFields = map[domain.DelimitedLayout]int{
	domain.LayoutHistory: 4,
	domain.LayoutLetter:  9,
}

// ParseDelimited reads semicolon-delimited rows whose first field holds
// comma-separated values mapped positionally onto layout.
func ParseDelimited(r io.Reader, layout domain.DelimitedLayout, header bool) ([]RawRow, ParseReport, error) {
	want, ok := layoutFields[layout]
	if !ok {
		return nil, ParseReport{}, fmt.Errorf("unknown delimited layout %q", layout)
	}

	var (
		rows   []RawRow
		report ParseReport
	)

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	first := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("failed to read delimited row: %w", err)
		}
		if first && header {
			first = false
			continue
		}
		first = false

		line, _ := cr.FieldPos(0)
		report.Lines++

		fields := strings.Split(record[0], ",")
		if len(fields) != want {
			report.Dropped++
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		row := RawRow{Line: line, Sequence: len(rows) + 1}
		switch layout {
		case domain.LayoutHistory:
			row.Reference = fields[0]
			row.Period = fields[1]
			row.Amount = fields[2]
			row.Year = fields[3]
		case domain.LayoutLetter:
			row.Reference = fields[0]
			row.Period = fields[2]
			row.Amount = fields[3]
			row.Index = fields[4]
			row.Corrected = fields[5]
			row.Note = fields[6]
			row.Year = fields[7]
			row.Duplicate = fields[8]
		}
		rows = append(rows, row)
		report.Parsed++
	}
	return rows, report, nil
}

// Parse dispatches on the configured source format
func Parse(r io.Reader, src domain.SourceConfig) (Batch, error) {
	var (
		rows   []RawRow
		report ParseReport
		err    error
	)
	switch src.Format {
	case domain.FormatText:
		rows, report, err = ParseText(r)
	case domain.FormatDelimited:
		rows, report, err = ParseDelimited(r, src.Layout, src.HasHeader())
	default:
		return Batch{}, fmt.Errorf("source %s: unknown format %q", src.Name, src.Format)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("source %s: %w", src.Name, err)
	}
	return Batch{Source: src, Rows: rows, Report: report}, nil
}
