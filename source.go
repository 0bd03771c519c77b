package columnar

import "iter"

// Source yields the records a report is built from. Records must be
// restartable: every call starts from the first record.
type Source interface {
	Records() iter.Seq2[any, error]
}

// BatchSource fetches records a batch at a time. Reports prefer it over
// [Source] to bound memory on large data sets.
type BatchSource interface {
	Batches(size int) iter.Seq2[[]any, error]
}

// Slice returns a Source over items.
func Slice[T any](items []T) Source {
	return sliceSource[T](items)
}

type sliceSource[T any] []T

func (s sliceSource[T]) Records() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for _, item := range s {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Seq returns a Source over seq. seq itself must be restartable for the
// report's EachRow to be.
func Seq[T any](seq iter.Seq[T]) Source {
	return seqSource[T]{seq: seq}
}

type seqSource[T any] struct {
	seq iter.Seq[T]
}

func (s seqSource[T]) Records() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for item := range s.seq {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// FetchFunc returns up to limit records starting at offset. A short or
// empty page ends the iteration.
type FetchFunc[T any] func(offset, limit int) ([]T, error)

// Paged returns a source backed by offset/limit fetching. It implements
// both [Source] and [BatchSource].
func Paged[T any](fetch FetchFunc[T]) *PagedSource[T] {
	return &PagedSource[T]{fetch: fetch}
}

// PagedSource is the Source returned by [Paged].
type PagedSource[T any] struct {
	fetch FetchFunc[T]
}

// DefaultBatchSize is the page size used when a report does not set one.
const DefaultBatchSize = 1000

// Batches yields pages of size records until a short page arrives.
func (p *PagedSource[T]) Batches(size int) iter.Seq2[[]any, error] {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return func(yield func([]any, error) bool) {
		for offset := 0; ; offset += size {
			page, err := p.fetch(offset, size)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page) == 0 {
				return
			}
			batch := make([]any, len(page))
			for i, item := range page {
				batch[i] = item
			}
			if !yield(batch, nil) {
				return
			}
			if len(page) < size {
				return
			}
		}
	}
}

// Records flattens [PagedSource.Batches] with the default batch size.
func (p *PagedSource[T]) Records() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for batch, err := range p.Batches(DefaultBatchSize) {
			if err != nil {
				yield(nil, err)
				return
			}
			for _, item := range batch {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
