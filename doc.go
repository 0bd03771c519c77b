// Package columnar turns any record source into a labeled, columnar report
// that can be exported to many formats.
//
// A report type is declared once with [Define]: its ordered column keys and
// the chains of [Decorator] and [Formatter] wrappers applied to every
// record. A [Report] binds a declaration to a [Source] and produces a
// header and rows:
//
//	var Users = columnar.Define("UserReport", []string{"name", "age", "role"},
//		columnar.WithDecorators(columnar.Decorator{Fields: map[string]columnar.FieldFunc{
//			"role": func(w *columnar.Wrapper) (any, error) {
//				v, err := w.Next("role")
//				if err != nil {
//					return nil, err
//				}
//				return roleNames[v.(int)], nil
//			},
//		}}),
//	)
//
//	r, err := columnar.New(Users, columnar.Slice(users))
//	header := r.Header()
//	rows, err := r.Rows()
//
// # Row pipeline
//
// For each record the optional [RowResolver] runs first and may skip the
// record. The record is then wrapped by each decorator in order, then by
// each formatter. For every column the [RowBuilder] resolves the key
// against the outermost [Wrapper]: overrides win, unknown keys fall through
// to the raw record via [Lookup], and every formatter's Format hook then
// post-processes the value. Unresolvable keys fail with [ErrUnknownField].
//
// # Composition
//
// [Report.Add] and [Report.Prepend] attach other reports. Header and rows
// concatenate across the composition tree in order, each sub-report
// building its segment from the same record. A record skipped by a
// sub-report's resolver contributes an empty segment, so composed rows can
// be shorter than the header.
//
// # Headers
//
// [DefaultHeader] uses the raw key unless a [Translator] is configured, in
// which case it looks up "columnar.<snake_case_name>.headers.<key>".
// [TitleHeader] and any custom [HeaderBuilder] can replace it.
//
// # Export
//
// Generators implement [Generator]. [Report.Export] looks one up by
// [Format] in the registry; convenience methods such as [Report.ToHash],
// [Report.ToCSV] and [Report.ToMarkdown] wrap it, and [To] runs any
// generator factory directly. [Stream] writes row-independent formats
// while rows are produced. The xlsx format lives in the xlsx sub-package
// and registers itself when imported.
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrColumnsNotDefined]: neither a definition nor explicit columns
//   - [ErrUnknownField]: a key could not be resolved on a record
//   - [ErrNotImplemented]: an [UnimplementedGenerator] method was called
//   - [ErrUnsupportedFormat]: unknown format string
//   - [ErrMissingOption]: an adapter requires an option that was not set
//   - [ErrNoReports]: Generate called before any AddReport
//   - [ErrSealed]: composition changed after header or rows were produced
//   - [ErrCycle]: a report would contain itself
//   - [ErrInvalidTemplate]: invalid go-template syntax
package columnar
