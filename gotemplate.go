package columnar

import (
	"bytes"
	"fmt"
	"io"
	"text/template"
)

// TemplateRow is the data a [TemplateGenerator] executes its template with.
type TemplateRow struct {
	// Report is the section name from Options.Name.
	Report string
	// Index is the zero-based row number within the report.
	Index int
	// Header holds the report's labels.
	Header []string
	// Values holds the cells in column order.
	Values []any
	// Cells maps each label to its cell. Later columns win on duplicates.
	Cells map[string]any
}

// TemplateGenerator renders every row through a Go text/template and
// writes each result on its own line.
type TemplateGenerator struct {
	reportSet
	text string
}

// NewTemplateGenerator returns a generator for the template text tmpl.
func NewTemplateGenerator(tmpl string) *TemplateGenerator {
	return &TemplateGenerator{text: tmpl}
}

// Generate renders every row of every added report.
func (g *TemplateGenerator) Generate() ([]byte, error) {
	tmpl, err := template.New("row").Parse(g.text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTemplate, err)
	}
	var buf bytes.Buffer
	for _, e := range g.entries {
		if err := writeGoTemplate(&buf, tmpl, e.report, e.opts); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeGoTemplate(w io.Writer, tmpl *template.Template, r *Report, opts Options) error {
	header := r.Header()
	i := 0
	for row, err := range r.EachRow() {
		if err != nil {
			return err
		}
		cells := make(map[string]any, len(header))
		for j, v := range row {
			if j < len(header) {
				cells[header[j]] = v
			}
		}
		data := TemplateRow{Report: opts.Name, Index: i, Header: header, Values: row, Cells: cells}
		if err := tmpl.Execute(w, data); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		i++
	}
	return nil
}
