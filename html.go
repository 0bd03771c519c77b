package columnar

import (
	"bytes"
	"fmt"
	"html"
	"io"
)

// HTMLGenerator renders each report as a <table>. Options.Name becomes the
// caption; cells are HTML-escaped.
type HTMLGenerator struct {
	reportSet
}

// NewHTMLGenerator returns an empty HTMLGenerator.
func NewHTMLGenerator() *HTMLGenerator { return &HTMLGenerator{} }

// Generate renders every added report, one table after another.
func (g *HTMLGenerator) Generate() ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range g.entries {
		if err := writeHTML(&buf, e.report, e.opts); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeHTML(w io.Writer, r *Report, opts Options) error {
	header := r.Header()
	rows, err := textRows(r, len(header))
	if err != nil {
		return err
	}
	aligns := opts.Alignments

	if _, err := fmt.Fprintln(w, "<table>"); err != nil {
		return err
	}
	if opts.Name != "" {
		if _, err := fmt.Fprintf(w, "  <caption>%s</caption>\n", html.EscapeString(opts.Name)); err != nil {
			return err
		}
	}

	if err := writeHTMLSection(w, "thead", "th", [][]string{header}, aligns); err != nil {
		return err
	}
	if err := writeHTMLSection(w, "tbody", "td", rows, aligns); err != nil {
		return err
	}
	if len(opts.Footer) > 0 {
		if err := writeHTMLSection(w, "tfoot", "td", [][]string{opts.Footer}, aligns); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(w, "</table>")
	return err
}

func writeHTMLSection(w io.Writer, section, cellTag string, rows [][]string, aligns []Alignment) error {
	if _, err := fmt.Fprintf(w, "  <%s>\n", section); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, "    <tr>"); err != nil {
			return err
		}
		for i, cell := range row {
			style := alignStyle(aligns, i)
			if _, err := fmt.Fprintf(w, "      <%s%s>%s</%s>\n", cellTag, style, html.EscapeString(cell), cellTag); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "    </tr>"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  </%s>\n", section)
	return err
}

func alignStyle(aligns []Alignment, col int) string {
	if col >= len(aligns) {
		return ""
	}
	switch aligns[col] {
	case AlignRight:
		return ` style="text-align: right"`
	case AlignCenter:
		return ` style="text-align: center"`
	default:
		return ""
	}
}
