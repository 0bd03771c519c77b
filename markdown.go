package columnar

import (
	"bytes"
	"io"
	"strings"

	"github.com/nao1215/markdown"
)

// MarkdownGenerator renders each report as a GitHub-flavored Markdown
// table, preceded by a level-two heading when Options.Name is set.
type MarkdownGenerator struct {
	reportSet
}

// NewMarkdownGenerator returns an empty MarkdownGenerator.
func NewMarkdownGenerator() *MarkdownGenerator { return &MarkdownGenerator{} }

// Generate renders every added report into one document.
func (g *MarkdownGenerator) Generate() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeMarkdown(&buf, g.entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMarkdown(w io.Writer, entries []entry) error {
	md := markdown.NewMarkdown(w)
	for i, e := range entries {
		if i > 0 {
			md.PlainText("")
		}
		if e.opts.Name != "" {
			md.H2(e.opts.Name).PlainText("")
		}
		header := make([]string, 0, len(e.report.Header()))
		for _, label := range e.report.Header() {
			header = append(header, escapeMarkdownCell(label))
		}
		rows, err := textRows(e.report, len(header))
		if err != nil {
			return err
		}
		for _, row := range rows {
			for j, cell := range row {
				row[j] = escapeMarkdownCell(cell)
			}
		}
		md.Table(markdown.TableSet{Header: header, Rows: rows})
	}
	return md.Build()
}

var markdownCellReplacer = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func escapeMarkdownCell(s string) string {
	return markdownCellReplacer.Replace(s)
}

// textRows materializes r as strings fitted to n columns. Rows of skipped
// records (empty segments) are dropped.
func textRows(r *Report, n int) ([][]string, error) {
	var out [][]string
	for row, err := range r.EachRow() {
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}
		cells := stringCells(row)
		if len(cells) != n {
			fitted := make([]string, n)
			copy(fitted, cells)
			cells = fitted
		}
		out = append(out, cells)
	}
	return out, nil
}
