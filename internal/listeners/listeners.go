// Package listeners keeps the callback sets hosts hand out removers for.
package listeners

import "sort"

// Set is a set of callbacks kept in registration order. Callbacks may add or
// remove entries while the set is being visited: removed ones are skipped
// and added ones wait for the next visit. The zero value is ready to use.
// A Set is not safe for concurrent use.
type Set[T any] struct {
	next int
	fns  map[int]T
}

// Add registers fn and returns the func that removes it.
func (s *Set[T]) Add(fn T) func() {
	if s.fns == nil {
		s.fns = make(map[int]T)
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() { delete(s.fns, id) }
}

// Each visits every callback registered when the visit started.
func (s *Set[T]) Each(visit func(T)) {
	for _, id := range s.ids() {
		if fn, ok := s.fns[id]; ok {
			visit(fn)
		}
	}
}

// Take removes and returns every callback in registration order.
func (s *Set[T]) Take() []T {
	ids := s.ids()
	if len(ids) == 0 {
		return nil
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.fns[id])
	}
	s.fns = nil
	return out
}

// Len returns the number of registered callbacks.
func (s *Set[T]) Len() int {
	return len(s.fns)
}

func (s *Set[T]) ids() []int {
	if len(s.fns) == 0 {
		return nil
	}
	ids := make([]int, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
