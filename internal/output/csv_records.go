package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/inss-calc/internal/calculation"
)

// RecordsHeader is the column order of the records export
var RecordsHeader = []string{
	"period", "gross_amount", "index", "corrected_amount", "note",
	"origin", "considered", "status", "source", "sequence",
}

// RecordsCSV exports every record of a run with its final status
type RecordsCSV struct{}

func (c RecordsCSV) Name() string { return "csv" }

func (c RecordsCSV) Format(report *calculation.Report) ([]byte, error) {
	return WriteRecordsCSV(report.Rows)
}

// WriteRecordsCSV renders rows in the records export layout
func WriteRecordsCSV(rows []calculation.RecordRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(RecordsHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		r := row.Record
		if err := w.Write([]string{
			r.Period.String(),
			r.GrossAmount.StringFixed(2),
			r.Index.String(),
			r.CorrectedAmount.StringFixed(2),
			r.Note,
			r.Origin.String(),
			strconv.FormatBool(r.Considered),
			row.Status,
			r.Source,
			strconv.Itoa(r.Sequence),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
