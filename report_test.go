package columnar_test

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bjaus/columnar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fixtures ---

type user struct {
	Name      string
	Age       int
	Role      int
	CreatedAt time.Time
	Street    string
}

var (
	sashaCreated = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	olegCreated  = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
)

func users() []user {
	return []user{
		{Name: "Sasha", Age: 18, Role: 1, CreatedAt: sashaCreated, Street: "Mittowa"},
		{Name: "Oleg", Age: 30, Role: 2, CreatedAt: olegCreated, Street: "Mittowa"},
	}
}

var userColumns = []string{"name", "age", "role", "created_at"}

var timeFormatter = columnar.Formatter{
	Format: func(v any, _ columnar.Scope) (any, error) {
		if t, ok := v.(time.Time); ok {
			return t.Format(time.RFC3339), nil
		}
		return v, nil
	},
}

var roleDecorator = columnar.Decorator{
	Fields: map[string]columnar.FieldFunc{
		"role": func(w *columnar.Wrapper) (any, error) {
			v, err := w.Next("role")
			if err != nil {
				return nil, err
			}
			switch v {
			case 1:
				return "Student", nil
			case 2:
				return "Worker", nil
			default:
				return nil, fmt.Errorf("unknown role %v", v)
			}
		},
	},
}

func newUserReport(t *testing.T, opts ...columnar.Option) *columnar.Report {
	t.Helper()
	r, err := columnar.New(columnar.Define("UserReport", userColumns), columnar.Slice(users()), opts...)
	require.NoError(t, err)
	return r
}

func newStreetReport(t *testing.T) *columnar.Report {
	t.Helper()
	r, err := columnar.New(columnar.Define("AddressReport", []string{"street"}), nil)
	require.NoError(t, err)
	return r
}

// countingSource counts how often the records are iterated.
type countingSource struct {
	records []any
	calls   int
}

func (s *countingSource) Records() iter.Seq2[any, error] {
	s.calls++
	return columnar.Slice(s.records).Records()
}

// batchingSource implements both interfaces and records which one ran.
type batchingSource struct {
	records   []any
	sizes     []int
	usedFlat  bool
	usedBatch bool
}

func (s *batchingSource) Records() iter.Seq2[any, error] {
	s.usedFlat = true
	return columnar.Slice(s.records).Records()
}

func (s *batchingSource) Batches(size int) iter.Seq2[[]any, error] {
	s.usedBatch = true
	s.sizes = append(s.sizes, size)
	return func(yield func([]any, error) bool) {
		for i := 0; i < len(s.records); i += size {
			end := min(i+size, len(s.records))
			if !yield(s.records[i:end], nil) {
				return
			}
		}
	}
}

type failingSource struct{ err error }

func (s failingSource) Records() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		yield(nil, s.err)
	}
}

var errSourceFailed = errors.New("source failed")

// ============================================================
// Tests
// ============================================================

func TestNewRequiresColumns(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		def  *columnar.Definition
		opts []columnar.Option
	}{
		"nil definition":          {def: nil},
		"definition without keys": {def: columnar.Define("Empty", nil)},
		"empty explicit columns":  {def: nil, opts: []columnar.Option{columnar.WithColumns()}},
		"explicit override empty": {def: columnar.Define("UserReport", userColumns), opts: []columnar.Option{columnar.WithColumns()}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := columnar.New(tt.def, columnar.Slice(users()), tt.opts...)
			require.ErrorIs(t, err, columnar.ErrColumnsNotDefined)
		})
	}
}

func TestNewExplicitColumnsWithoutDefinition(t *testing.T) {
	t.Parallel()
	r, err := columnar.New(nil, columnar.Slice(users()), columnar.WithColumns("name", "age"))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, r.Header())
	assert.Empty(t, r.Name())
}

func TestHeader(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		opts []columnar.Option
		want []string
	}{
		"declared columns": {
			want: []string{"name", "age", "role", "created_at"},
		},
		"custom columns": {
			opts: []columnar.Option{columnar.WithColumns("name", "age")},
			want: []string{"name", "age"},
		},
		"duplicate custom columns": {
			opts: []columnar.Option{columnar.WithColumns("age", "name", "age")},
			want: []string{"age", "name"},
		},
		"translator": {
			opts: []columnar.Option{columnar.WithTranslator(columnar.TranslatorFunc(func(p string) string { return p }))},
			want: []string{
				"columnar.user_report.headers.name",
				"columnar.user_report.headers.age",
				"columnar.user_report.headers.role",
				"columnar.user_report.headers.created_at",
			},
		},
		"translator with namespace": {
			opts: []columnar.Option{
				columnar.WithTranslator(columnar.TranslatorFunc(func(p string) string { return p })),
				columnar.WithNamespace("app"),
				columnar.WithColumns("name"),
			},
			want: []string{"app.user_report.headers.name"},
		},
		"custom header builder": {
			opts: []columnar.Option{columnar.WithHeaderBuilder(func(key string, _ *columnar.Report) string {
				return strings.ToUpper(key)
			})},
			want: []string{"NAME", "AGE", "ROLE", "CREATED_AT"},
		},
		"title header": {
			opts: []columnar.Option{columnar.WithHeaderBuilder(columnar.TitleHeader)},
			want: []string{"Name", "Age", "Role", "Created At"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := newUserReport(t, tt.opts...)
			assert.Equal(t, tt.want, r.Header())
		})
	}
}

func TestRows(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		def  *columnar.Definition
		opts []columnar.Option
		want [][]any
	}{
		"declared columns": {
			def: columnar.Define("UserReport", userColumns),
			want: [][]any{
				{"Sasha", 18, 1, sashaCreated},
				{"Oleg", 30, 2, olegCreated},
			},
		},
		"custom columns": {
			def:  columnar.Define("UserReport", userColumns),
			opts: []columnar.Option{columnar.WithColumns("name", "age")},
			want: [][]any{{"Sasha", 18}, {"Oleg", 30}},
		},
		"string row builder": {
			def:  columnar.Define("UserReport", userColumns),
			opts: []columnar.Option{columnar.WithRowBuilder(columnar.StringRow)},
			want: [][]any{
				{"Sasha", "18", "1", "2025-02-03T04:05:06Z"},
				{"Oleg", "30", "2", "2024-02-03T04:05:06Z"},
			},
		},
		"formatter": {
			def: columnar.Define("UserReport", userColumns, columnar.WithFormatters(timeFormatter)),
			want: [][]any{
				{"Sasha", 18, 1, "2025-02-03T04:05:06Z"},
				{"Oleg", 30, 2, "2024-02-03T04:05:06Z"},
			},
		},
		"decorator": {
			def: columnar.Define("UserReport", userColumns, columnar.WithDecorators(roleDecorator)),
			want: [][]any{
				{"Sasha", 18, "Student", sashaCreated},
				{"Oleg", 30, "Worker", olegCreated},
			},
		},
		"decorator and formatter": {
			def: columnar.Define("UserReport", userColumns,
				columnar.WithDecorators(roleDecorator),
				columnar.WithFormatters(timeFormatter),
			),
			want: [][]any{
				{"Sasha", 18, "Student", "2025-02-03T04:05:06Z"},
				{"Oleg", 30, "Worker", "2024-02-03T04:05:06Z"},
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r, err := columnar.New(tt.def, columnar.Slice(users()), tt.opts...)
			require.NoError(t, err)
			rows, err := r.Rows()
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestEndToEndMapRecords(t *testing.T) {
	t.Parallel()
	records := []map[string]any{
		{"name": "Sasha", "age": 18},
		{"name": "Oleg", "age": 30},
	}
	r, err := columnar.New(nil, columnar.Slice(records), columnar.WithColumns("name", "age"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, r.Header())
	rows, err := r.Rows()
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"Sasha", 18}, {"Oleg", 30}}, rows)
}

func TestShapeMatchesColumnCount(t *testing.T) {
	t.Parallel()
	records := make([]map[string]any, 25)
	for i := range records {
		records[i] = map[string]any{"a": i, "b": i * 2, "c": i * 3}
	}
	r, err := columnar.New(columnar.Define("Shape", []string{"a", "b", "c"}), columnar.Slice(records))
	require.NoError(t, err)

	assert.Len(t, r.Header(), 3)
	rows, err := r.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 25)
	for _, row := range rows {
		assert.Len(t, row, 3)
	}
}

func TestUnknownColumnFails(t *testing.T) {
	t.Parallel()
	r := newUserReport(t, columnar.WithColumns("name", "salary"))
	_, err := r.Rows()
	require.ErrorIs(t, err, columnar.ErrUnknownField)
	assert.Contains(t, err.Error(), "salary")
}

func TestDecoratorErrorPropagates(t *testing.T) {
	t.Parallel()
	def := columnar.Define("UserReport", []string{"role"}, columnar.WithDecorators(roleDecorator))
	r, err := columnar.New(def, columnar.Slice([]user{{Role: 9}}))
	require.NoError(t, err)
	_, err = r.Rows()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role 9")
}

func TestSourceErrorPropagates(t *testing.T) {
	t.Parallel()
	r, err := columnar.New(nil, failingSource{err: errSourceFailed}, columnar.WithColumns("name"))
	require.NoError(t, err)
	_, err = r.Rows()
	require.ErrorIs(t, err, errSourceFailed)
}

func TestScopeReachesWrappers(t *testing.T) {
	t.Parallel()
	greeting := columnar.Decorator{Fields: map[string]columnar.FieldFunc{
		"name": func(w *columnar.Wrapper) (any, error) {
			v, err := w.Next("name")
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("%s %v", w.Scope()["greeting"], v), nil
		},
	}}
	def := columnar.Define("Greeting", []string{"name"}, columnar.WithDecorators(greeting))
	r, err := columnar.New(def, columnar.Slice(users()), columnar.WithScope(columnar.Scope{"greeting": "Hi"}))
	require.NoError(t, err)
	rows, err := r.Rows()
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"Hi Sasha"}, {"Hi Oleg"}}, rows)
}

func TestAddAndPrepend(t *testing.T) {
	t.Parallel()
	t.Run("add", func(t *testing.T) {
		t.Parallel()
		r := newUserReport(t)
		require.NoError(t, r.Add(newStreetReport(t)))
		assert.Equal(t, []string{"name", "age", "role", "created_at", "street"}, r.Header())
		rows, err := r.Rows()
		require.NoError(t, err)
		assert.Equal(t, [][]any{
			{"Sasha", 18, 1, sashaCreated, "Mittowa"},
			{"Oleg", 30, 2, olegCreated, "Mittowa"},
		}, rows)
	})
	t.Run("prepend", func(t *testing.T) {
		t.Parallel()
		r := newUserReport(t)
		require.NoError(t, r.Prepend(newStreetReport(t)))
		assert.Equal(t, []string{"street", "name", "age", "role", "created_at"}, r.Header())
		rows, err := r.Rows()
		require.NoError(t, err)
		assert.Equal(t, [][]any{
			{"Mittowa", "Sasha", 18, 1, sashaCreated},
			{"Mittowa", "Oleg", 30, 2, olegCreated},
		}, rows)
	})
	t.Run("two columns", func(t *testing.T) {
		t.Parallel()
		r := newUserReport(t, columnar.WithColumns("name", "age"))
		require.NoError(t, r.Add(newStreetReport(t)))
		rows, err := r.Rows()
		require.NoError(t, err)
		assert.Equal(t, []any{"Sasha", 18, "Mittowa"}, rows[0])
	})
}

func TestCompositionOrder(t *testing.T) {
	t.Parallel()
	mk := func(keys ...string) *columnar.Report {
		r, err := columnar.New(nil, columnar.Slice(users()), columnar.WithColumns(keys...))
		require.NoError(t, err)
		return r
	}

	a, b, c := mk("name"), mk("age"), mk("street")
	require.NoError(t, a.Add(b))
	require.NoError(t, a.Add(c))
	assert.Equal(t, []string{"name", "age", "street"}, a.Header())

	d, e := mk("name"), mk("age")
	require.NoError(t, d.Prepend(e))
	assert.Equal(t, []string{"age", "name"}, d.Header())

	// Nested trees flatten in order.
	outer, inner, leaf := mk("role"), mk("name"), mk("age")
	require.NoError(t, inner.Add(leaf))
	require.NoError(t, outer.Prepend(inner))
	assert.Equal(t, []string{"name", "age", "role"}, outer.Header())
	rows, err := outer.Rows()
	require.NoError(t, err)
	assert.Equal(t, []any{"Sasha", 18, 1}, rows[0])
}

func TestCompositionSharesReference(t *testing.T) {
	t.Parallel()
	root := newUserReport(t, columnar.WithColumns("name"))
	sub, err := columnar.New(nil, nil, columnar.WithColumns("age"))
	require.NoError(t, err)
	require.NoError(t, root.Add(sub))

	// Extending the attached report after composition shows up in the root.
	require.NoError(t, sub.Add(newStreetReport(t)))
	assert.Equal(t, []string{"name", "age", "street"}, root.Header())
}

func TestComposeAfterMaterializeFails(t *testing.T) {
	t.Parallel()
	tests := map[string]func(r *columnar.Report){
		"header":   func(r *columnar.Report) { r.Header() },
		"rows":     func(r *columnar.Report) { _, _ = r.Rows() },
		"each row": func(r *columnar.Report) { r.EachRow() },
	}
	for name, touch := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := newUserReport(t)
			touch(r)
			require.ErrorIs(t, r.Add(newStreetReport(t)), columnar.ErrSealed)
			require.ErrorIs(t, r.Prepend(newStreetReport(t)), columnar.ErrSealed)
		})
	}
}

func TestComposeCycleFails(t *testing.T) {
	t.Parallel()
	a := newUserReport(t)
	b := newStreetReport(t)
	require.ErrorIs(t, a.Add(a), columnar.ErrCycle)
	require.NoError(t, a.Add(b))
	require.ErrorIs(t, b.Add(a), columnar.ErrCycle)
	require.ErrorIs(t, b.Prepend(a), columnar.ErrCycle)
}

func TestRowsCached(t *testing.T) {
	t.Parallel()
	src := &countingSource{records: []any{map[string]any{"n": 1}, map[string]any{"n": 2}}}
	r, err := columnar.New(nil, src, columnar.WithColumns("n"))
	require.NoError(t, err)

	first, err := r.Rows()
	require.NoError(t, err)
	second, err := r.Rows()
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	require.Len(t, second, 2)
	assert.Same(t, &first[0], &second[0])
}

func TestEachRowRestarts(t *testing.T) {
	t.Parallel()
	src := &countingSource{records: []any{map[string]any{"n": 1}, map[string]any{"n": 2}}}
	r, err := columnar.New(nil, src, columnar.WithColumns("n"))
	require.NoError(t, err)

	collect := func() [][]any {
		var out [][]any
		for row, err := range r.EachRow() {
			require.NoError(t, err)
			out = append(out, row)
		}
		return out
	}
	assert.Equal(t, [][]any{{1}, {2}}, collect())
	assert.Equal(t, [][]any{{1}, {2}}, collect())
	assert.Equal(t, 2, src.calls)
}

func TestConcurrentReadsOfMaterializedReport(t *testing.T) {
	t.Parallel()
	r := newUserReport(t, columnar.WithColumns("name", "age"))
	require.NoError(t, r.Add(newStreetReport(t)))
	want, err := r.Rows()
	require.NoError(t, err)
	header := r.Header()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var got [][]any
			for row, err := range r.EachRow() {
				assert.NoError(t, err)
				got = append(got, row)
			}
			assert.Equal(t, want, got)
			assert.Equal(t, header, r.Header())
			rows, err := r.Rows()
			assert.NoError(t, err)
			assert.Equal(t, want, rows)
		}()
	}
	wg.Wait()
}

func TestEachRowEarlyStop(t *testing.T) {
	t.Parallel()
	r := newUserReport(t, columnar.WithColumns("name"))
	var got []any
	for row, err := range r.EachRow() {
		require.NoError(t, err)
		got = append(got, row[0])
		break
	}
	assert.Equal(t, []any{"Sasha"}, got)
}

func TestBatchSourcePreferred(t *testing.T) {
	t.Parallel()
	records := make([]any, 7)
	for i := range records {
		records[i] = map[string]any{"n": i}
	}
	src := &batchingSource{records: records}
	r, err := columnar.New(nil, src, columnar.WithColumns("n"), columnar.WithBatchSize(3))
	require.NoError(t, err)

	rows, err := r.Rows()
	require.NoError(t, err)
	assert.Len(t, rows, 7)
	assert.True(t, src.usedBatch)
	assert.False(t, src.usedFlat)
	assert.Equal(t, []int{3}, src.sizes)
}

func TestRowResolver(t *testing.T) {
	t.Parallel()
	adultsOnly := func(record any) (any, bool) {
		u := record.(user)
		return u, u.Age >= 21
	}

	t.Run("skips record", func(t *testing.T) {
		t.Parallel()
		r := newUserReport(t, columnar.WithColumns("name"), columnar.WithRowResolver(adultsOnly))
		rows, err := r.Rows()
		require.NoError(t, err)
		assert.Equal(t, [][]any{{}, {"Oleg"}}, rows)
	})

	t.Run("reshapes record", func(t *testing.T) {
		t.Parallel()
		upper := func(record any) (any, bool) {
			u := record.(user)
			u.Name = strings.ToUpper(u.Name)
			return u, true
		}
		r := newUserReport(t, columnar.WithColumns("name"), columnar.WithRowResolver(upper))
		rows, err := r.Rows()
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"SASHA"}, {"OLEG"}}, rows)
	})

	t.Run("skipped sub-report shortens composed row", func(t *testing.T) {
		t.Parallel()
		root := newUserReport(t, columnar.WithColumns("name"))
		sub, err := columnar.New(nil, nil, columnar.WithColumns("age"), columnar.WithRowResolver(adultsOnly))
		require.NoError(t, err)
		require.NoError(t, root.Add(sub))

		assert.Len(t, root.Header(), 2)
		rows, err := root.Rows()
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"Sasha"}, {"Oleg", 30}}, rows)
	})
}

func TestDefinitionIsImmutable(t *testing.T) {
	t.Parallel()
	keys := []string{"name", "age", "name"}
	def := columnar.Define("UserReport", keys)
	keys[0] = "changed"

	cols := def.Columns()
	assert.Equal(t, []string{"name", "age"}, cols)
	cols[0] = "mutated"
	assert.Equal(t, []string{"name", "age"}, def.Columns())
	assert.Equal(t, "UserReport", def.Name())
	assert.Len(t, def.Decorators(), 1)
	assert.Len(t, def.Formatters(), 1)

	redefined := columnar.Define("UserReport", []string{"street"})
	assert.Equal(t, []string{"street"}, redefined.Columns())
	assert.Equal(t, []string{"name", "age"}, def.Columns())
}

func TestToHash(t *testing.T) {
	t.Parallel()
	r := newUserReport(t)
	ds, err := r.ToHash()
	require.NoError(t, err)

	rows, err := r.Rows()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"header": r.Header(), "rows": rows}, ds.Map())
	assert.Equal(t, "UserReport", ds.Name)
}
