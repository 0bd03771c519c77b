package columnar

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// TSVGenerator writes tab-separated values without quoting. Tabs, line breaks
// and backslashes inside labels and cells are written as the escapes \t,
// \n, \r and \\ so every line keeps one field per column.
type TSVGenerator struct {
	reportSet
}

// NewTSVGenerator returns an empty TSVGenerator.
func NewTSVGenerator() *TSVGenerator { return &TSVGenerator{} }

// Generate encodes every added report, separated by an empty line.
func (g *TSVGenerator) Generate() ([]byte, error) {
	var buf bytes.Buffer
	for i, e := range g.entries {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if err := writeTSV(&buf, e.report); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeTSV(w io.Writer, r *Report) error {
	if _, err := fmt.Fprintln(w, joinTSV(r.Header())); err != nil {
		return err
	}
	for row, err := range r.EachRow() {
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, joinTSV(stringCells(row))); err != nil {
			return err
		}
	}
	return nil
}

var tsvFieldReplacer = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

func joinTSV(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = tsvFieldReplacer.Replace(f)
	}
	return strings.Join(escaped, "\t")
}
