// Package pagination implements marker-based keyset pagination over any
// entity set totally ordered by a unique comparable key.
//
// One fixed convention applies everywhere: a page selects keys strictly
// greater than the marker, ascending, limited to limit. A marker that is
// no longer present in the set still yields a well-defined page because
// selection uses ordering comparisons, never equality lookup.
package pagination

import (
	"cmp"
	"context"
	"errors"
)

// ErrInvalidLimit rejects non-positive page limits.
var ErrInvalidLimit = errors.New("pagination: limit must be positive")

// Source supplies ordered slices of entities around a marker. A nil
// marker means no bound on that side.
type Source[T any, K cmp.Ordered] interface {
	// PageAfter returns up to limit entities with keys strictly greater
	// than marker, in ascending key order.
	PageAfter(ctx context.Context, marker *K, limit int) ([]T, error)
	// PageBefore returns up to limit entities with keys strictly less
	// than marker, in descending key order.
	PageBefore(ctx context.Context, marker *K, limit int) ([]T, error)
}

// Page is one slice of a paginated listing together with its cursors.
// A nil cursor means there is no page in that direction.
type Page[T any, K cmp.Ordered] struct {
	Items []T
	Prev  *K
	Next  *K
}

// Paginate returns the ascending page of at most limit entities
// immediately following marker, plus prev/next cursors.
//
// Next is the key of the last entity in the page, absent when the page
// is empty or already ends at the overall maximum key. Prev is the
// greatest key strictly below the effective marker (the marker itself,
// or the minimum key of the set when no marker was given), absent when
// nothing precedes it.
func Paginate[T any, K cmp.Ordered](ctx context.Context, src Source[T, K], key func(T) K, marker *K, limit int) (Page[T, K], error) {
	if limit <= 0 {
		return Page[T, K]{}, ErrInvalidLimit
	}

	items, err := src.PageAfter(ctx, marker, limit)
	if err != nil {
		return Page[T, K]{}, err
	}

	first, err := src.PageAfter(ctx, nil, 1)
	if err != nil {
		return Page[T, K]{}, err
	}
	if len(first) == 0 {
		// Empty set: no entities, no cursors.
		return Page[T, K]{Items: items}, nil
	}
	last, err := src.PageBefore(ctx, nil, 1)
	if err != nil {
		return Page[T, K]{}, err
	}

	page := Page[T, K]{Items: items}

	if len(items) > 0 {
		if end := key(items[len(items)-1]); end != key(last[0]) {
			page.Next = &end
		}
	}

	effective := key(first[0])
	if marker != nil {
		effective = *marker
	}
	before, err := src.PageBefore(ctx, &effective, limit)
	if err != nil {
		return Page[T, K]{}, err
	}
	if len(before) > 0 {
		prev := key(before[0])
		page.Prev = &prev
	}

	return page, nil
}
