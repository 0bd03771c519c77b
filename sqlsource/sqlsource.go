// Package sqlsource feeds reports from database/sql queries.
//
// A [Source] runs its query once per iteration. Reports use
// [Source.Batches], which pages through the result with LIMIT/OFFSET so only
// one page is held in memory at a time. The query must have a stable
// ORDER BY for paging to be meaningful.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/bjaus/columnar"
)

// Row is one result row keyed by column name. It implements
// [columnar.Accessor].
type Row map[string]any

// Field returns the value of column key.
func (r Row) Field(key string) (any, error) {
	v, ok := r[key]
	if !ok {
		return nil, fmt.Errorf("%w: column %q not in result", columnar.ErrUnknownField, key)
	}
	return v, nil
}

// Source is a query bound to a database.
//
// A Source holds the context it was created with because the iteration
// methods it implements take none. That context governs every query of
// every iteration for the Source's whole lifetime: once it is canceled,
// all later iterations fail with its error. Create a new Source per
// request rather than sharing one across requests.
type Source struct {
	ctx   context.Context
	db    *sql.DB
	query string
	args  []any
}

// New returns a Source for query. ctx bounds every query the source runs,
// in Records and Batches alike, for as long as the Source is used.
func New(ctx context.Context, db *sql.DB, query string, args ...any) *Source {
	return &Source{ctx: ctx, db: db, query: query, args: args}
}

// Records streams the whole result set in a single query.
func (s *Source) Records() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		rows, err := s.db.QueryContext(s.ctx, s.query, s.args...)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()
		for row, err := range scan(rows) {
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

// Batches pages through the result size rows at a time.
func (s *Source) Batches(size int) iter.Seq2[[]any, error] {
	if size <= 0 {
		size = columnar.DefaultBatchSize
	}
	paged := fmt.Sprintf("SELECT * FROM (%s) AS page LIMIT ? OFFSET ?", s.query)
	return columnar.Paged(func(offset, limit int) ([]Row, error) {
		args := append(append([]any{}, s.args...), limit, offset)
		rows, err := s.db.QueryContext(s.ctx, paged, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		page := make([]Row, 0, limit)
		for row, err := range scan(rows) {
			if err != nil {
				return nil, err
			}
			page = append(page, row)
		}
		return page, nil
	}).Batches(size)
}

func scan(rows *sql.Rows) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		cols, err := rows.Columns()
		if err != nil {
			yield(nil, err)
			return
		}
		for rows.Next() {
			values := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				yield(nil, err)
				return
			}
			row := make(Row, len(cols))
			for i, c := range cols {
				if b, ok := values[i].([]byte); ok {
					row[c] = string(b)
				} else {
					row[c] = values[i]
				}
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}
