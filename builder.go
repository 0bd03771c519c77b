package columnar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HeaderBuilder resolves a column key to its header label.
type HeaderBuilder func(key string, r *Report) string

// RowBuilder resolves a column key against a wrapped record to a cell value.
type RowBuilder func(rec *Wrapper, key string, r *Report) (any, error)

// RowResolver reshapes or filters a raw record before the chains run.
// Returning false skips the record: the report contributes an empty
// segment for it.
type RowResolver func(record any) (any, bool)

// DefaultNamespace prefixes header translation paths.
const DefaultNamespace = "columnar"

// DefaultHeader looks the label up under
// "<namespace>.<snake_case_name>.headers.<key>" when the report has a
// [Translator], and falls back to the raw key otherwise. An empty report
// name drops its path segment.
func DefaultHeader(key string, r *Report) string {
	if r.translator == nil {
		return key
	}
	return r.translator.Translate(HeaderPath(r.namespace, r.Name(), key))
}

// HeaderPath builds the translation path for a column header.
func HeaderPath(namespace, name, key string) string {
	parts := make([]string, 0, 4)
	if namespace != "" {
		parts = append(parts, namespace)
	}
	if name != "" {
		parts = append(parts, Underscore(name))
	}
	parts = append(parts, "headers", key)
	return strings.Join(parts, ".")
}

// TitleHeader title-cases the key, treating underscores as spaces:
// "created_at" becomes "Created At".
func TitleHeader(key string, _ *Report) string {
	// Casers are stateful and must not be shared between goroutines.
	return cases.Title(language.Und).String(strings.ReplaceAll(key, "_", " "))
}

// DefaultRow resolves key on the chain and passes the result through the
// formatters.
func DefaultRow(rec *Wrapper, key string, _ *Report) (any, error) {
	return rec.Value(key)
}

// StringRow is [DefaultRow] followed by conversion to the value's text form.
func StringRow(rec *Wrapper, key string, r *Report) (any, error) {
	v, err := DefaultRow(rec, key, r)
	if err != nil {
		return nil, err
	}
	return CellString(v), nil
}

func identityResolver(record any) (any, bool) { return record, true }

var (
	acronymBoundary = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// Underscore converts a type name to snake case. Package separators
// ("." and "::") become "/": "admin.UserReport" becomes "admin/user_report".
func Underscore(name string) string {
	word := strings.ReplaceAll(name, "::", "/")
	word = strings.ReplaceAll(word, ".", "/")
	word = acronymBoundary.ReplaceAllString(word, "${1}_${2}")
	word = wordBoundary.ReplaceAllString(word, "${1}_${2}")
	return strings.ToLower(word)
}

// CellString returns the text form of a cell value. nil becomes the empty
// string and times use RFC 3339.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	default:
		return fmt.Sprint(v)
	}
}
