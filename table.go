package columnar

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

type borderChars struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
	topTee, bottomTee, leftTee, rightTee       string
	cross                                      string
}

var borderSets = map[BorderStyle]borderChars{
	BorderRounded: {
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		topTee: "┬", bottomTee: "┴", leftTee: "├", rightTee: "┤",
		cross: "┼",
	},
	BorderASCII: {
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		topTee: "+", bottomTee: "+", leftTee: "+", rightTee: "+",
		cross: "+",
	},
	BorderHeavy: {
		topLeft: "┏", topRight: "┓", bottomLeft: "┗", bottomRight: "┛",
		horizontal: "━", vertical: "┃",
		topTee: "┳", bottomTee: "┻", leftTee: "┣", rightTee: "┫",
		cross: "╋",
	},
	BorderDouble: {
		topLeft: "╔", topRight: "╗", bottomLeft: "╚", bottomRight: "╝",
		horizontal: "═", vertical: "║",
		topTee: "╦", bottomTee: "╩", leftTee: "╠", rightTee: "╣",
		cross: "╬",
	},
}

// TableGenerator renders reports as terminal tables. Options.Name is the
// title; the remaining table fields of [Options] control borders,
// alignment, truncation, wrapping, numbering, paging and styling.
type TableGenerator struct {
	reportSet
}

// NewTableGenerator returns an empty TableGenerator.
func NewTableGenerator() *TableGenerator { return &TableGenerator{} }

// Generate renders every added report, separated by an empty line.
func (g *TableGenerator) Generate() ([]byte, error) {
	var buf bytes.Buffer
	for i, e := range g.entries {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if err := writeTable(&buf, e.report, e.opts); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// tableLayout is the resolved geometry of one table.
type tableLayout struct {
	widths     []int
	aligns     []Alignment
	styles     []func(string) string
	wrapWidths []int
}

func writeTable(w io.Writer, r *Report, opts Options) error {
	header := r.Header()
	rows, err := textRows(r, len(header))
	if err != nil {
		return err
	}
	footer := opts.Footer
	aligns := opts.Alignments
	styles := opts.Styles
	wrapWidths := opts.WrapWidths

	// Row numbering prepends a column.
	if opts.NumberHeader != "" {
		header = append([]string{opts.NumberHeader}, header...)
		for i, row := range rows {
			rows[i] = append([]string{fmt.Sprintf("%d", i+1)}, row...)
		}
		if len(footer) > 0 {
			footer = append([]string{""}, footer...)
		}
		aligns = append([]Alignment{AlignRight}, aligns...)
		styles = append([]func(string) string{nil}, styles...)
		if len(wrapWidths) > 0 {
			wrapWidths = append([]int{0}, wrapWidths...)
		}
	}

	numCols := colCount(header, rows, footer)
	layout := tableLayout{
		widths:     computeWidths(numCols, header, rows, footer),
		aligns:     extendAligns(aligns, numCols),
		styles:     extendStyles(styles, numCols),
		wrapWidths: wrapWidths,
	}
	for i, limit := range opts.MaxWidths {
		if opts.NumberHeader != "" {
			i++
		}
		if i < numCols && limit > 0 && layout.widths[i] > limit {
			layout.widths[i] = limit
		}
	}

	if opts.Border == BorderNone {
		err = layout.renderPlain(w, header, rows, footer, opts.PageSize)
	} else {
		err = layout.renderBordered(w, borderSets[opts.Border], opts.Name, header, rows, footer, opts.PageSize)
	}
	if err != nil {
		return err
	}

	if opts.Caption != "" {
		if _, err := fmt.Fprintln(w, opts.Caption); err != nil {
			return err
		}
	}
	return nil
}

func colCount(header []string, rows [][]string, footer []string) int {
	n := len(header)
	for _, row := range rows {
		n = max(n, len(row))
	}
	return max(n, len(footer))
}

func computeWidths(numCols int, header []string, rows [][]string, footer []string) []int {
	widths := make([]int, numCols)
	measure := func(cells []string) {
		for i, cell := range cells {
			if i < numCols {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}
	measure(footer)
	return widths
}

func extendAligns(aligns []Alignment, numCols int) []Alignment {
	if len(aligns) >= numCols {
		return aligns[:numCols]
	}
	extended := make([]Alignment, numCols)
	copy(extended, aligns)
	return extended
}

func extendStyles(styles []func(string) string, numCols int) []func(string) string {
	if len(styles) >= numCols {
		return styles[:numCols]
	}
	extended := make([]func(string) string, numCols)
	copy(extended, styles)
	return extended
}

// --- Cell wrapping ---

func wrapCell(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var lines []string
	for len(s) > 0 {
		line := runewidth.Truncate(s, width, "")
		if line == "" {
			// A rune wider than width still has to advance.
			line = string([]rune(s)[0])
		}
		lines = append(lines, line)
		s = s[len(line):]
	}
	return lines
}

// lines splits a row into the visual lines it occupies once wrapped.
func (l tableLayout) lines(cells []string) [][]string {
	wrapped := make([][]string, len(l.widths))
	n := 1
	for i, width := range l.widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		ww := 0
		if i < len(l.wrapWidths) {
			ww = l.wrapWidths[i]
		}
		if ww > 0 && ww < width {
			wrapped[i] = wrapCell(cell, ww)
		} else {
			wrapped[i] = []string{cell}
		}
		n = max(n, len(wrapped[i]))
	}
	out := make([][]string, n)
	for line := range n {
		out[line] = make([]string, len(l.widths))
		for i := range l.widths {
			if line < len(wrapped[i]) {
				out[line][i] = wrapped[i][line]
			}
		}
	}
	return out
}

func (l tableLayout) cell(i int, s string) string {
	formatted := formatTableCell(s, l.widths[i], l.aligns[i])
	if l.styles[i] != nil {
		formatted = l.styles[i](formatted)
	}
	return formatted
}

// --- Plain table (BorderNone) ---

func (l tableLayout) renderPlain(w io.Writer, header []string, rows [][]string, footer []string, pageSize int) error {
	if len(header) > 0 {
		if err := l.plainRow(w, header); err != nil {
			return err
		}
		if err := l.plainSep(w); err != nil {
			return err
		}
	}
	for i, row := range rows {
		if pageSize > 0 && len(header) > 0 && i > 0 && i%pageSize == 0 {
			if err := l.plainSep(w); err != nil {
				return err
			}
			if err := l.plainRow(w, header); err != nil {
				return err
			}
			if err := l.plainSep(w); err != nil {
				return err
			}
		}
		if err := l.plainRow(w, row); err != nil {
			return err
		}
	}
	if len(footer) > 0 {
		if err := l.plainSep(w); err != nil {
			return err
		}
		return l.plainRow(w, footer)
	}
	return nil
}

func (l tableLayout) plainSep(w io.Writer) error {
	sep := make([]string, len(l.widths))
	for i, width := range l.widths {
		sep[i] = strings.Repeat("-", width)
	}
	_, err := fmt.Fprintln(w, strings.Join(sep, "  "))
	return err
}

func (l tableLayout) plainRow(w io.Writer, cells []string) error {
	for _, line := range l.lines(cells) {
		parts := make([]string, len(l.widths))
		for i := range l.widths {
			parts[i] = l.cell(i, line[i])
		}
		text := strings.TrimRight(strings.Join(parts, "  "), " ")
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	return nil
}

// --- Bordered table ---

func (l tableLayout) renderBordered(w io.Writer, bc borderChars, title string, header []string, rows [][]string, footer []string, pageSize int) error {
	if title != "" {
		// Full-width top border (no column separators).
		if err := l.hline(w, bc.topLeft, bc.horizontal, bc.horizontal, bc.topRight); err != nil {
			return err
		}
		inner := tableInnerWidth(l.widths) - 2
		padded := alignCell(title, inner, AlignCenter)
		if _, err := fmt.Fprintf(w, "%s %s %s\n", bc.vertical, padded, bc.vertical); err != nil {
			return err
		}
		if err := l.hline(w, bc.leftTee, bc.horizontal, bc.topTee, bc.rightTee); err != nil {
			return err
		}
	} else {
		if err := l.hline(w, bc.topLeft, bc.horizontal, bc.topTee, bc.topRight); err != nil {
			return err
		}
	}

	divider := func() error { return l.hline(w, bc.leftTee, bc.horizontal, bc.cross, bc.rightTee) }

	if len(header) > 0 {
		if err := l.borderedRow(w, header, bc.vertical); err != nil {
			return err
		}
		if err := divider(); err != nil {
			return err
		}
	}

	for i, row := range rows {
		if pageSize > 0 && len(header) > 0 && i > 0 && i%pageSize == 0 {
			if err := divider(); err != nil {
				return err
			}
			if err := l.borderedRow(w, header, bc.vertical); err != nil {
				return err
			}
			if err := divider(); err != nil {
				return err
			}
		}
		if err := l.borderedRow(w, row, bc.vertical); err != nil {
			return err
		}
	}

	if len(footer) > 0 {
		if err := divider(); err != nil {
			return err
		}
		if err := l.borderedRow(w, footer, bc.vertical); err != nil {
			return err
		}
	}

	return l.hline(w, bc.bottomLeft, bc.horizontal, bc.bottomTee, bc.bottomRight)
}

// tableInnerWidth returns the character width between the outer vertical
// borders: each cell plus one space of padding per side, and one border
// between neighbours.
func tableInnerWidth(widths []int) int {
	n := 0
	for _, w := range widths {
		n += w + 2
	}
	if len(widths) > 1 {
		n += len(widths) - 1
	}
	return n
}

func (l tableLayout) hline(w io.Writer, left, fill, mid, right string) error {
	var sb strings.Builder
	sb.WriteString(left)
	for i, width := range l.widths {
		sb.WriteString(strings.Repeat(fill, width+2))
		if i < len(l.widths)-1 {
			sb.WriteString(mid)
		}
	}
	sb.WriteString(right)
	_, err := fmt.Fprintln(w, sb.String())
	return err
}

func (l tableLayout) borderedRow(w io.Writer, cells []string, vert string) error {
	for _, line := range l.lines(cells) {
		var sb strings.Builder
		sb.WriteString(vert)
		for i := range l.widths {
			sb.WriteString(" ")
			sb.WriteString(l.cell(i, line[i]))
			sb.WriteString(" ")
			if i < len(l.widths)-1 {
				sb.WriteString(vert)
			}
		}
		sb.WriteString(vert)
		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func formatTableCell(s string, width int, align Alignment) string {
	if width > 0 && runewidth.StringWidth(s) > width {
		if width <= 3 {
			s = runewidth.Truncate(s, width, "")
		} else {
			s = runewidth.Truncate(s, width, "...")
		}
	}
	return alignCell(s, width, align)
}

func alignCell(s string, width int, align Alignment) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
