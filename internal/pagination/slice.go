package pagination

import (
	"cmp"
	"context"
	"slices"
)

// SliceSource adapts an in-memory slice to the Source contract,
// parameterized by an ordering-key accessor and an optional filter
// predicate. It backs the in-memory store and tests.
type SliceSource[T any, K cmp.Ordered] struct {
	items []T
	key   func(T) K
	match func(T) bool
}

// NewSliceSource builds a source over items. A nil match keeps every item.
func NewSliceSource[T any, K cmp.Ordered](items []T, key func(T) K, match func(T) bool) *SliceSource[T, K] {
	return &SliceSource[T, K]{items: items, key: key, match: match}
}

func (s *SliceSource[T, K]) PageAfter(_ context.Context, marker *K, limit int) ([]T, error) {
	out := s.filtered(func(k K) bool { return marker == nil || k > *marker })
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(s.key(a), s.key(b)) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SliceSource[T, K]) PageBefore(_ context.Context, marker *K, limit int) ([]T, error) {
	out := s.filtered(func(k K) bool { return marker == nil || k < *marker })
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(s.key(b), s.key(a)) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SliceSource[T, K]) filtered(keep func(K) bool) []T {
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if s.match != nil && !s.match(item) {
			continue
		}
		if keep(s.key(item)) {
			out = append(out, item)
		}
	}
	return out
}
