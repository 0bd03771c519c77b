package columnar

// FieldFunc resolves one overridden key. w is the wrapper that declared the
// override; call w.Next with the same key to reach the value underneath.
type FieldFunc func(w *Wrapper) (any, error)

// FormatFunc post-processes a resolved value.
type FormatFunc func(value any, scope Scope) (any, error)

// Decorator overrides resolution of specific keys on the record it wraps.
// Keys absent from Fields resolve against the wrapped value unchanged.
// The zero Decorator is a pass-through.
type Decorator struct {
	Fields map[string]FieldFunc
}

// Formatter is a wrapper applied after every decorator. Besides
// overriding keys, its Format hook post-processes every value resolved
// through the chain, including values supplied by decorators.
// The zero Formatter is a pass-through.
type Formatter struct {
	Fields map[string]FieldFunc
	Format FormatFunc
}

// Wrapper is one layer of the transformation chain around a record. The
// innermost layer holds the raw record; each decorator and formatter adds
// one layer on top.
type Wrapper struct {
	inner  *Wrapper
	record any
	scope  Scope
	fields map[string]FieldFunc
	format FormatFunc
}

// Wrap builds the chain for record: decorators first, in order, then
// formatters. The returned wrapper is the outermost layer.
func Wrap(record any, scope Scope, decorators []Decorator, formatters []Formatter) *Wrapper {
	w := &Wrapper{record: record, scope: scope}
	for _, d := range decorators {
		w = &Wrapper{inner: w, record: record, scope: scope, fields: d.Fields}
	}
	for _, f := range formatters {
		w = &Wrapper{inner: w, record: record, scope: scope, fields: f.Fields, format: f.Format}
	}
	return w
}

// Field resolves key without formatting. An override declared on this
// layer wins; otherwise the key falls through to the layer below and
// finally to the raw record via [Lookup].
func (w *Wrapper) Field(key string) (any, error) {
	if fn, ok := w.fields[key]; ok {
		return fn(w)
	}
	return w.Next(key)
}

// Next resolves key on the layer below this one, skipping this layer's own
// override. On the innermost layer it looks the key up on the raw record.
func (w *Wrapper) Next(key string) (any, error) {
	if w.inner == nil {
		return Lookup(w.record, key)
	}
	return w.inner.Field(key)
}

// Format passes value through every formatter hook in the chain,
// innermost first.
func (w *Wrapper) Format(value any) (any, error) {
	if w.inner != nil {
		v, err := w.inner.Format(value)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if w.format == nil {
		return value, nil
	}
	return w.format(value, w.scope)
}

// Value resolves key and formats the result.
func (w *Wrapper) Value(key string) (any, error) {
	v, err := w.Field(key)
	if err != nil {
		return nil, err
	}
	return w.Format(v)
}

// Record returns the raw record at the bottom of the chain.
func (w *Wrapper) Record() any { return w.record }

// Scope returns the context shared by every layer.
func (w *Wrapper) Scope() Scope { return w.scope }
