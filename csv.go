package columnar

import (
	"bytes"
	"encoding/csv"
	"io"
)

// CSVGenerator streams reports as comma-separated values. Several reports
// are written one after another, separated by an empty line.
type CSVGenerator struct {
	reportSet
}

// NewCSVGenerator returns an empty CSVGenerator.
func NewCSVGenerator() *CSVGenerator { return &CSVGenerator{} }

// Generate encodes every added report. With no reports the output is empty.
func (g *CSVGenerator) Generate() ([]byte, error) {
	var buf bytes.Buffer
	for i, e := range g.entries {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if err := writeCSV(&buf, e.report, e.opts); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeCSV(w io.Writer, r *Report, opts Options) error {
	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}
	if err := cw.Write(r.Header()); err != nil {
		return err
	}
	for row, err := range r.EachRow() {
		if err != nil {
			return err
		}
		if err := cw.Write(stringCells(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func stringCells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = CellString(v)
	}
	return out
}
