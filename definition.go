package columnar

import "slices"

// Definition is the immutable column declaration of a report type: its
// name, the ordered set of column keys, and the decorator and formatter
// chains applied to every record.
//
// Declare one per report type, usually as a package-level variable:
//
//	var UserReport = columnar.Define("UserReport",
//		[]string{"name", "age", "role"},
//		columnar.WithDecorators(roleDecorator),
//	)
//
// Declaring again produces a new Definition; nothing is merged.
type Definition struct {
	name       string
	columns    []string
	decorators []Decorator
	formatters []Formatter
}

// DefinitionOption configures a Definition.
type DefinitionOption func(*Definition)

// WithDecorators replaces the decorator chain. Decorators wrap the raw
// record in the given order, so the last one is outermost.
func WithDecorators(ds ...Decorator) DefinitionOption {
	return func(d *Definition) {
		d.decorators = slices.Clone(ds)
	}
}

// WithFormatters replaces the formatter chain. Formatters wrap the
// decorated record in the given order.
func WithFormatters(fs ...Formatter) DefinitionOption {
	return func(d *Definition) {
		d.formatters = slices.Clone(fs)
	}
}

// Define declares a report type. Duplicate keys keep their first position.
// The default chains are a single pass-through decorator and formatter.
func Define(name string, columns []string, opts ...DefinitionOption) *Definition {
	d := &Definition{
		name:       name,
		columns:    uniqueKeys(columns),
		decorators: []Decorator{{}},
		formatters: []Formatter{{}},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the report type name used for header translation paths.
func (d *Definition) Name() string { return d.name }

// Columns returns a copy of the declared column keys.
func (d *Definition) Columns() []string { return slices.Clone(d.columns) }

// Decorators returns a copy of the decorator chain.
func (d *Definition) Decorators() []Decorator { return slices.Clone(d.decorators) }

// Formatters returns a copy of the formatter chain.
func (d *Definition) Formatters() []Formatter { return slices.Clone(d.formatters) }

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
