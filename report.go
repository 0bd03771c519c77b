package columnar

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
)

// Report binds a data source to a column set, builder functions and a
// composition tree of sub-reports.
//
// A Report is mutable through [Report.Add] and [Report.Prepend] until its
// header or rows are first produced; afterwards it is sealed and safe for
// concurrent read-only use.
type Report struct {
	def        *Definition
	source     Source
	scope      Scope
	columns    []string
	header     HeaderBuilder
	row        RowBuilder
	resolver   RowResolver
	translator Translator
	namespace  string
	batchSize  int
	logger     *slog.Logger

	// reports holds the composition tree; it always contains the receiver.
	reports []*Report

	sealed       bool
	cachedHeader []string
	cachedRows   [][]any
	rowsDone     bool
}

// Option configures a Report.
type Option func(*Report)

// WithScope sets the context forwarded to every wrapper.
func WithScope(scope Scope) Option {
	return func(r *Report) {
		r.scope = scope
	}
}

// WithColumns overrides the definition's columns. Duplicates are dropped.
func WithColumns(keys ...string) Option {
	return func(r *Report) {
		r.columns = uniqueKeys(keys)
	}
}

// WithHeaderBuilder replaces [DefaultHeader].
func WithHeaderBuilder(fn HeaderBuilder) Option {
	return func(r *Report) {
		if fn != nil {
			r.header = fn
		}
	}
}

// WithRowBuilder replaces [DefaultRow].
func WithRowBuilder(fn RowBuilder) Option {
	return func(r *Report) {
		if fn != nil {
			r.row = fn
		}
	}
}

// WithRowResolver installs a pre-filter/reshape hook run on each raw record.
func WithRowResolver(fn RowResolver) Option {
	return func(r *Report) {
		if fn != nil {
			r.resolver = fn
		}
	}
}

// WithTranslator enables header translation in [DefaultHeader].
func WithTranslator(t Translator) Option {
	return func(r *Report) {
		r.translator = t
	}
}

// WithNamespace sets the first segment of header translation paths.
// Default: [DefaultNamespace].
func WithNamespace(ns string) Option {
	return func(r *Report) {
		r.namespace = ns
	}
}

// WithBatchSize sets the page size requested from a [BatchSource].
func WithBatchSize(n int) Option {
	return func(r *Report) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithLogger sets the logger used for debug tracing. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Report) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a report over src. def may be nil when [WithColumns] is
// given; with neither, New fails with [ErrColumnsNotDefined].
func New(def *Definition, src Source, opts ...Option) (*Report, error) {
	r := &Report{
		def:       def,
		source:    src,
		scope:     Scope{},
		header:    DefaultHeader,
		row:       DefaultRow,
		resolver:  identityResolver,
		namespace: DefaultNamespace,
		batchSize: DefaultBatchSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.columns == nil {
		if def == nil || len(def.columns) == 0 {
			return nil, fmt.Errorf("%w: report %q", ErrColumnsNotDefined, r.Name())
		}
		r.columns = def.Columns()
	}
	if len(r.columns) == 0 {
		return nil, fmt.Errorf("%w: report %q", ErrColumnsNotDefined, r.Name())
	}
	r.reports = []*Report{r}
	return r, nil
}

// Name returns the definition name, or "" for an undeclared report.
func (r *Report) Name() string {
	if r.def == nil {
		return ""
	}
	return r.def.name
}

// Columns returns a copy of this report's own column keys, excluding
// sub-reports.
func (r *Report) Columns() []string { return slices.Clone(r.columns) }

// Scope returns the scope forwarded to wrappers.
func (r *Report) Scope() Scope { return r.scope }

// Add appends other to the composition tree: its columns follow the
// receiver's.
func (r *Report) Add(other *Report) error {
	if err := r.canCompose(other); err != nil {
		return err
	}
	r.reports = append(r.reports, other)
	return nil
}

// Prepend inserts other at the head of the composition tree: its columns
// lead the receiver's.
func (r *Report) Prepend(other *Report) error {
	if err := r.canCompose(other); err != nil {
		return err
	}
	r.reports = slices.Insert(r.reports, 0, other)
	return nil
}

func (r *Report) canCompose(other *Report) error {
	if r.sealed {
		return fmt.Errorf("%w: cannot compose %q into %q", ErrSealed, other.Name(), r.Name())
	}
	if other == r || other.contains(r) {
		return fmt.Errorf("%w: %q already contains %q", ErrCycle, other.Name(), r.Name())
	}
	return nil
}

// seal writes the flag only once so that reads of a sealed report never
// write shared state.
func (r *Report) seal() {
	if !r.sealed {
		r.sealed = true
	}
}

func (r *Report) contains(target *Report) bool {
	for _, sub := range r.reports {
		if sub == target {
			return true
		}
		if sub != r && sub.contains(target) {
			return true
		}
	}
	return false
}

// Header returns the labels of the whole composition tree, in tree order.
// It is computed once and cached.
func (r *Report) Header() []string {
	if r.cachedHeader == nil {
		r.seal()
		header := make([]string, 0, len(r.columns))
		for _, sub := range r.reports {
			if sub == r {
				header = append(header, r.buildHeader()...)
			} else {
				header = append(header, sub.Header()...)
			}
		}
		r.cachedHeader = header
	}
	return r.cachedHeader
}

func (r *Report) buildHeader() []string {
	out := make([]string, len(r.columns))
	for i, key := range r.columns {
		out[i] = r.header(key, r)
	}
	return out
}

// Rows materializes [Report.EachRow] once and caches the result. Later
// calls return the same slice.
func (r *Report) Rows() ([][]any, error) {
	if r.rowsDone {
		return r.cachedRows, nil
	}
	rows := make([][]any, 0)
	for row, err := range r.EachRow() {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	r.cachedRows = rows
	r.rowsDone = true
	return rows, nil
}

// EachRow returns a lazy sequence of rows. Every call iterates the source
// from the start; a [BatchSource] is used when the source provides one.
// Iteration stops after the first error.
func (r *Report) EachRow() iter.Seq2[[]any, error] {
	r.seal()
	return func(yield func([]any, error) bool) {
		for record, err := range r.records() {
			if err != nil {
				yield(nil, err)
				return
			}
			row, err := r.collectRow(record)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (r *Report) records() iter.Seq2[any, error] {
	bs, ok := r.source.(BatchSource)
	if !ok {
		if r.source == nil {
			return func(func(any, error) bool) {}
		}
		return r.source.Records()
	}
	return func(yield func(any, error) bool) {
		n := 0
		for batch, err := range bs.Batches(r.batchSize) {
			if err != nil {
				yield(nil, err)
				return
			}
			r.logger.Debug("columnar: batch fetched", "report", r.Name(), "batch", n, "size", len(batch))
			n++
			for _, record := range batch {
				if !yield(record, nil) {
					return
				}
			}
		}
	}
}

func (r *Report) collectRow(record any) ([]any, error) {
	row := make([]any, 0, len(r.columns))
	for _, sub := range r.reports {
		var (
			segment []any
			err     error
		)
		if sub == r {
			segment, err = r.buildRow(record)
		} else {
			segment, err = sub.collectRow(record)
		}
		if err != nil {
			return nil, err
		}
		row = append(row, segment...)
	}
	return row, nil
}

func (r *Report) buildRow(record any) ([]any, error) {
	current, ok := r.resolver(record)
	if !ok {
		r.logger.Debug("columnar: record skipped", "report", r.Name())
		return []any{}, nil
	}

	var (
		decorators []Decorator
		formatters []Formatter
	)
	if r.def != nil {
		decorators, formatters = r.def.decorators, r.def.formatters
	}
	rec := Wrap(current, r.scope, decorators, formatters)

	out := make([]any, len(r.columns))
	for i, key := range r.columns {
		v, err := r.row(rec, key, r)
		if err != nil {
			return nil, fmt.Errorf("report %q column %q: %w", r.Name(), key, err)
		}
		out[i] = v
	}
	return out, nil
}
