// Package xlsx exports reports as Excel workbooks, one worksheet per report.
//
// Importing the package registers the [columnar.XLSX] format:
//
//	import _ "github.com/bjaus/columnar/xlsx"
//
//	data, err := report.Export(columnar.XLSX, columnar.Options{Name: "Users"})
package xlsx

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bjaus/columnar"
	"github.com/xuri/excelize/v2"
)

func init() {
	columnar.Register(columnar.XLSX, func() columnar.Generator[[]byte] { return New() })
}

const (
	// MaxSheetName is the length worksheet names are truncated to.
	MaxSheetName = 25

	headerHeight = 40
	itemHeight   = 20
	headerFill   = "0A9700"
	headerFont   = "FFFFFF"
)

var (
	sheetNameEscape = regexp.MustCompile(`["~#%&:;<>!=',@{|}/?*()+\[\]$]`)

	// Cells starting with these are prefixed with a quote so spreadsheet
	// applications do not evaluate them as formulas.
	formulaPrefixes = []string{"+", "-", "=", "@", "{="}
)

type sheet struct {
	report *columnar.Report
	name   string
}

// Generator writes an xlsx workbook.
type Generator struct {
	sheets []sheet
	names  map[string]int
}

// New returns an empty Generator.
func New() *Generator {
	return &Generator{names: make(map[string]int)}
}

// AddReport queues r as a worksheet named after opts.Name, which is
// required. The name is sanitized, truncated to [MaxSheetName] runes and
// made unique within the workbook.
func (g *Generator) AddReport(r *columnar.Report, opts columnar.Options) error {
	if opts.Name == "" {
		return fmt.Errorf("%w: xlsx requires Options.Name (worksheet name)", columnar.ErrMissingOption)
	}
	name := SanitizeSheetName(opts.Name)
	if name == "" {
		return fmt.Errorf("%w: worksheet name %q is empty once sanitized", columnar.ErrMissingOption, opts.Name)
	}
	g.sheets = append(g.sheets, sheet{report: r, name: g.unique(name)})
	return nil
}

func (g *Generator) unique(name string) string {
	key := strings.ToLower(name)
	n := g.names[key]
	g.names[key] = n + 1
	if n == 0 {
		return name
	}
	suffix := fmt.Sprintf("_%d", n+1)
	runes := []rune(name)
	if len(runes)+len(suffix) > MaxSheetName {
		runes = runes[:MaxSheetName-len(suffix)]
	}
	return g.unique(string(runes) + suffix)
}

// Generate builds the workbook and returns its bytes. It fails with
// [columnar.ErrNoReports] when no report was added.
func (g *Generator) Generate() ([]byte, error) {
	if len(g.sheets) == 0 {
		return nil, columnar.ErrNoReports
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, itemStyle, err := styles(f)
	if err != nil {
		return nil, err
	}

	defaultSheet := f.GetSheetName(0)
	for i, s := range g.sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, s, headerStyle, itemStyle); err != nil {
			return nil, fmt.Errorf("worksheet %q: %w", s.name, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func styles(f *excelize.File) (header, item int, err error) {
	alignment := &excelize.Alignment{Vertical: "center", Horizontal: "left", WrapText: true}
	header, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Font:      &excelize.Font{Color: headerFont},
		Alignment: alignment,
	})
	if err != nil {
		return 0, 0, err
	}
	item, err = f.NewStyle(&excelize.Style{Alignment: alignment})
	if err != nil {
		return 0, 0, err
	}
	return header, item, nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle, itemStyle int) error {
	sw, err := f.NewStreamWriter(s.name)
	if err != nil {
		return err
	}

	header := s.report.Header()
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := sw.SetRow("A1", values, excelize.RowOpts{Height: headerHeight, StyleID: headerStyle}); err != nil {
		return err
	}

	line := 2
	for row, err := range s.report.EachRow() {
		if err != nil {
			return err
		}
		// Skipped records produce empty rows.
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, SanitizeRow(row), excelize.RowOpts{Height: itemHeight, StyleID: itemStyle}); err != nil {
			return err
		}
		line++
	}
	return sw.Flush()
}

// SanitizeRow converts cells to values excelize writes natively and
// neutralizes strings that a spreadsheet would evaluate as formulas.
func SanitizeRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = sanitizeCell(v)
	}
	return out
}

func sanitizeCell(v any) any {
	switch x := v.(type) {
	case nil, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, time.Time:
		return x
	case string:
		return escapeFormula(x)
	default:
		return escapeFormula(columnar.CellString(v))
	}
}

func escapeFormula(s string) string {
	for _, p := range formulaPrefixes {
		if strings.HasPrefix(s, p) {
			return "'" + s
		}
	}
	return s
}

// SanitizeSheetName strips characters Excel rejects or misreads in
// worksheet names and truncates the result to [MaxSheetName] runes.
func SanitizeSheetName(name string) string {
	name = strings.TrimSpace(sheetNameEscape.ReplaceAllString(name, ""))
	if runes := []rune(name); len(runes) > MaxSheetName {
		name = string(runes[:MaxSheetName])
	}
	return name
}

// Export writes r as a single-sheet workbook named sheetName.
func Export(r *columnar.Report, sheetName string) ([]byte, error) {
	return columnar.To(r, func() columnar.Generator[[]byte] { return New() }, columnar.Options{Name: sheetName})
}
