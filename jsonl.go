package columnar

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSONLGenerator streams one JSON object per row, keyed by header label in
// column order. Rows of several reports follow each other.
type JSONLGenerator struct {
	reportSet
}

// NewJSONLGenerator returns an empty JSONLGenerator.
func NewJSONLGenerator() *JSONLGenerator { return &JSONLGenerator{} }

// Generate encodes every row of every added report.
func (g *JSONLGenerator) Generate() ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range g.entries {
		if err := writeJSONL(&buf, e.report); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeJSONL(w io.Writer, r *Report) error {
	header := r.Header()
	for row, err := range r.EachRow() {
		if err != nil {
			return err
		}
		line, err := orderedObject(header, row)
		if err != nil {
			return err
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// orderedObject encodes row as an object whose keys keep header order.
// Cells without a header label are dropped.
func orderedObject(header []string, row []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cell := range row {
		if i >= len(header) {
			break
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(header[i])
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(cell)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
