// Package queue provides the ordered sequence abstraction the
// resolution pipeline is built on: append, slice, sort, stable
// grouping, first-occurrence dedup, recursive flattening, and strictly
// sequential resolution with drop-on-failure semantics.
package queue

import (
	"context"
	"sort"
)

// Queue is an ordered, mutable sequence of items. A Queue owns its
// elements exclusively; elements are never shared across queues during
// normal operation.
type Queue[T any] struct {
	items []T
}

// New creates a queue over the given items.
func New[T any](items ...T) *Queue[T] {
	return &Queue[T]{items: items}
}

// Add appends an item. No uniqueness check is performed.
func (q *Queue[T]) Add(item T) {
	q.items = append(q.items, item)
}

// Len returns the number of items.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// At returns the item at index i.
func (q *Queue[T]) At(i int) T {
	return q.items[i]
}

// Items returns the underlying slice. Callers must not mutate it.
func (q *Queue[T]) Items() []T {
	return q.items
}

// Slice returns a new queue over the half-open index range
// [start, end), clamped to the queue bounds. The source is not mutated.
func (q *Queue[T]) Slice(start, end int) *Queue[T] {
	if start < 0 {
		start = 0
	}
	if end > len(q.items) {
		end = len(q.items)
	}
	if start >= end {
		return New[T]()
	}
	out := make([]T, end-start)
	copy(out, q.items[start:end])
	return &Queue[T]{items: out}
}

// Sort sorts the queue in place using a three-way comparator: cmp must
// return a negative value when a orders before b, positive when after,
// and zero for ties. The sort is stable.
func (q *Queue[T]) Sort(cmp func(a, b T) int) {
	sort.SliceStable(q.items, func(i, j int) bool {
		return cmp(q.items[i], q.items[j]) < 0
	})
}

// Group stable-partitions the queue into buckets keyed by key,
// concatenated in first-occurrence order of each key. Within a bucket
// the original relative order is preserved. This is not a sort: bucket
// order is determined by when each key was first seen.
func Group[T any, K comparable](q *Queue[T], key func(T) K) *Queue[T] {
	var order []K
	buckets := make(map[K][]T)
	for _, item := range q.items {
		k := key(item)
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], item)
	}

	out := make([]T, 0, len(q.items))
	for _, k := range order {
		out = append(out, buckets[k]...)
	}
	return &Queue[T]{items: out}
}

// DedupFunc rebuilds the queue keeping only the first occurrence of
// each element under eq, preserving the relative order of kept
// elements.
func DedupFunc[T any](q *Queue[T], eq func(a, b T) bool) *Queue[T] {
	kept := make([]T, 0, len(q.items))
	for _, item := range q.items {
		dup := false
		for _, k := range kept {
			if eq(k, item) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, item)
		}
	}
	return &Queue[T]{items: kept}
}

// Dedup is DedupFunc under plain value identity, for element types that
// define no custom equality.
func Dedup[T comparable](q *Queue[T]) *Queue[T] {
	return DedupFunc(q, func(a, b T) bool { return a == b })
}

// Expander is implemented by queue elements that expand into
// sub-elements during flattening. Terminal elements return nil.
type Expander[T any] interface {
	Expand() []T
}

// Flatten recursively replaces every element whose Expand returns
// sub-elements with its (recursively flattened) expansion, splicing in
// place and preserving order. Terminal elements pass through unchanged.
// Queues are only built downward during resolution, so the recursion
// always terminates.
func Flatten[T Expander[T]](q *Queue[T]) *Queue[T] {
	out := New[T]()
	flattenInto(q.items, out)
	return out
}

func flattenInto[T Expander[T]](items []T, out *Queue[T]) {
	for _, item := range items {
		if sub := item.Expand(); sub != nil {
			flattenInto(sub, out)
			continue
		}
		out.Add(item)
	}
}

// ResolveAll applies fn to every element strictly one at a time, in
// original order: the operation for element i+1 does not start until
// the operation for element i has settled. Successful results are
// collected into a new queue in input order; elements whose operation
// fails are dropped without aborting the rest. This collect-successes
// policy is the pipeline's only failure handling for entity-level
// errors. Callers that want drop diagnostics wrap fn.
func ResolveAll[T, R any](ctx context.Context, q *Queue[T], fn func(context.Context, T) (R, error)) *Queue[R] {
	out := New[R]()
	for _, item := range q.items {
		r, err := fn(ctx, item)
		if err != nil {
			continue
		}
		out.Add(r)
	}
	return out
}
