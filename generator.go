package columnar

import (
	"fmt"
	"strings"
	"sync"
)

// Generator accumulates reports and produces one artifact from them.
// AddReport may be called any number of times before a single Generate.
type Generator[A any] interface {
	AddReport(r *Report, opts Options) error
	Generate() (A, error)
}

// UnimplementedGenerator can be embedded by adapters under construction.
// Both methods fail with [ErrNotImplemented].
type UnimplementedGenerator[A any] struct{}

// AddReport returns ErrNotImplemented.
func (UnimplementedGenerator[A]) AddReport(*Report, Options) error {
	return fmt.Errorf("%w: AddReport", ErrNotImplemented)
}

// Generate returns ErrNotImplemented.
func (UnimplementedGenerator[A]) Generate() (A, error) {
	var zero A
	return zero, fmt.Errorf("%w: Generate", ErrNotImplemented)
}

// To runs r through a fresh generator from factory.
func To[A any](r *Report, factory func() Generator[A], opts Options) (A, error) {
	g := factory()
	if err := g.AddReport(r, opts); err != nil {
		var zero A
		return zero, err
	}
	return g.Generate()
}

// Factory creates an encoding generator for the registry.
type Factory func() Generator[[]byte]

var (
	registryMu sync.RWMutex
	registry   = map[Format]Factory{
		CSV:      func() Generator[[]byte] { return NewCSVGenerator() },
		TSV:      func() Generator[[]byte] { return NewTSVGenerator() },
		JSON:     func() Generator[[]byte] { return NewJSONGenerator() },
		JSONL:    func() Generator[[]byte] { return NewJSONLGenerator() },
		YAML:     func() Generator[[]byte] { return NewYAMLGenerator() },
		Markdown: func() Generator[[]byte] { return NewMarkdownGenerator() },
		HTML:     func() Generator[[]byte] { return NewHTMLGenerator() },
		Table:    func() Generator[[]byte] { return NewTableGenerator() },
	}
)

// Register makes a generator available under f, replacing any previous
// registration. Adapter packages call it from init.
func Register(f Format, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[f] = factory
}

// LookupFormat returns the factory registered for f. Go template formats are
// resolved on the fly.
func LookupFormat(f Format) (Factory, bool) {
	if tmpl, ok := strings.CutPrefix(string(f), goTemplatePrefix); ok {
		return func() Generator[[]byte] { return NewTemplateGenerator(tmpl) }, true
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[f]
	return factory, ok
}

// Export encodes the report with the generator registered for f.
// Formats provided by sub-packages, such as xlsx, must be imported
// (for their side effect) before use.
func (r *Report) Export(f Format, opts Options) ([]byte, error) {
	factory, ok := LookupFormat(f)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	return To(r, factory, opts)
}

// ToHash returns the header and rows as a [Dataset].
func (r *Report) ToHash() (Dataset, error) {
	sets, err := To(r, func() Generator[[]Dataset] { return NewHashGenerator() }, Options{Name: r.Name()})
	if err != nil {
		return Dataset{}, err
	}
	return sets[0], nil
}

// ToCSV encodes the report as CSV.
func (r *Report) ToCSV(opts Options) ([]byte, error) { return r.Export(CSV, opts) }

// ToTSV encodes the report as tab-separated values.
func (r *Report) ToTSV(opts Options) ([]byte, error) { return r.Export(TSV, opts) }

// ToJSON encodes the report as a JSON document.
func (r *Report) ToJSON(opts Options) ([]byte, error) { return r.Export(JSON, opts) }

// ToJSONL encodes one JSON object per row.
func (r *Report) ToJSONL(opts Options) ([]byte, error) { return r.Export(JSONL, opts) }

// ToYAML encodes the report as a YAML document.
func (r *Report) ToYAML(opts Options) ([]byte, error) { return r.Export(YAML, opts) }

// ToMarkdown renders the report as a GitHub-flavored Markdown table.
func (r *Report) ToMarkdown(opts Options) ([]byte, error) { return r.Export(Markdown, opts) }

// ToHTML renders the report as an HTML table.
func (r *Report) ToHTML(opts Options) ([]byte, error) { return r.Export(HTML, opts) }

// ToTable renders the report as a terminal table.
func (r *Report) ToTable(opts Options) ([]byte, error) { return r.Export(Table, opts) }
