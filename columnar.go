package columnar

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel errors for programmatic error handling.
var (
	ErrColumnsNotDefined = errors.New("columns not defined")
	ErrUnknownField      = errors.New("unknown field")
	ErrNotImplemented    = errors.New("not implemented")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingOption     = errors.New("missing required option")
	ErrNoReports         = errors.New("no reports added")
	ErrSealed            = errors.New("report already materialized")
	ErrCycle             = errors.New("report composition cycle")
	ErrInvalidTemplate   = errors.New("invalid template")
)

// Scope is opaque, read-only context forwarded to every wrapper.
type Scope map[string]any

// Format identifies an export adapter in the registry.
type Format string

const (
	Hash     Format = "hash"
	CSV      Format = "csv"
	TSV      Format = "tsv"
	JSON     Format = "json"
	JSONL    Format = "jsonl"
	YAML     Format = "yaml"
	Markdown Format = "markdown"
	HTML     Format = "html"
	Table    Format = "table"
	XLSX     Format = "xlsx"
)

const goTemplatePrefix = "go-template="

// String returns the format name.
func (f Format) String() string { return string(f) }

// GoTemplate returns a Format that renders every row through a Go
// text/template. See [TemplateGenerator] for the data passed to it.
func GoTemplate(tmpl string) Format {
	return Format(goTemplatePrefix + tmpl)
}

// Formats returns the registered format names in sorted order.
// Hash and GoTemplate are not included: hash is structured rather than
// encoded, and GoTemplate is parameterized.
func Formats() []Format {
	registryMu.RLock()
	out := make([]Format, 0, len(registry))
	for f := range registry {
		out = append(out, f)
	}
	registryMu.RUnlock()
	slices.Sort(out)
	return out
}

// ParseFormat parses a format string. Recognizes every registered format,
// "hash", and go-template=<tmpl> strings.
func ParseFormat(s string) (Format, error) {
	if strings.HasPrefix(s, goTemplatePrefix) {
		return Format(s), nil
	}
	if Format(s) == Hash {
		return Hash, nil
	}
	if _, ok := LookupFormat(Format(s)); ok {
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// BorderStyle controls table border characters.
type BorderStyle int

const (
	BorderRounded BorderStyle = iota // ╭─╮╰╯│┬┴├┤┼
	BorderNone                       // No borders, space-separated columns
	BorderASCII                      // +-+|
	BorderHeavy                      // ┏━┓┗┛┃┳┻┣┫╋
	BorderDouble                     // ╔═╗╚╝║╦╩╠╣╬
)

// Alignment controls column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Options carries per-report export settings. Every adapter reads the
// fields it understands and ignores the rest.
type Options struct {
	// Name labels the report's section: worksheet name for xlsx, heading
	// for markdown, caption for html, title for table, "name" key for
	// json and yaml. Required by xlsx.
	Name string

	// Delimiter is the CSV field delimiter. Default: comma.
	Delimiter rune

	// Indent controls JSON and YAML indentation.
	// Without it, JSON is compact and YAML uses its default indent.
	Indent string

	// Border is the table border style. Default: BorderRounded.
	Border BorderStyle

	// Alignments sets per-column alignment for table and html.
	Alignments []Alignment

	// Footer renders a row below the table body (table, html).
	Footer []string

	// NumberHeader, when set, prepends a row number column (table).
	NumberHeader string

	// Caption renders a line below the table (table).
	Caption string

	// MaxWidths truncates table cells with "...". Zero means no limit.
	MaxWidths []int

	// WrapWidths wraps table cells onto several lines. Zero means no wrap.
	WrapWidths []int

	// PageSize re-prints the table header every PageSize rows.
	PageSize int

	// Styles wraps each fully formatted table cell, per column.
	Styles []func(string) string
}
