package pagination

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id   int
	kind string
}

func rowSource(ids ...int) *SliceSource[row, int] {
	items := make([]row, 0, len(ids))
	for _, id := range ids {
		items = append(items, row{id: id})
	}
	return NewSliceSource(items, func(r row) int { return r.id }, nil)
}

func rowIDs(items []row) []int {
	out := make([]int, 0, len(items))
	for _, r := range items {
		out = append(out, r.id)
	}
	return out
}

func marker(id int) *int { return &id }

func TestPaginateWalksTheSet(t *testing.T) {
	ctx := context.Background()
	src := rowSource(1, 3, 7, 9, 12)
	key := func(r row) int { return r.id }

	tests := []struct {
		name     string
		marker   *int
		wantPage []int
		wantPrev *int
		wantNext *int
	}{
		{name: "first page", marker: nil, wantPage: []int{1, 3}, wantNext: marker(3)},
		{name: "middle page", marker: marker(3), wantPage: []int{7, 9}, wantPrev: marker(1), wantNext: marker(9)},
		{name: "final page", marker: marker(9), wantPage: []int{12}, wantPrev: marker(7)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, err := Paginate(ctx, src, key, tc.marker, 2)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPage, rowIDs(page.Items))
			assert.Equal(t, tc.wantPrev, page.Prev)
			assert.Equal(t, tc.wantNext, page.Next)
		})
	}
}

func TestPaginateRoundTrip(t *testing.T) {
	ctx := context.Background()
	ids := []int{2, 5, 6, 8, 11, 13, 21, 34}
	src := rowSource(ids...)
	key := func(r row) int { return r.id }

	var collected []int
	var cursor *int
	for {
		page, err := Paginate(ctx, src, key, cursor, 3)
		require.NoError(t, err)
		collected = append(collected, rowIDs(page.Items)...)
		if page.Next == nil {
			break
		}
		cursor = page.Next
	}

	// Following next to exhaustion yields every id exactly once, in order.
	assert.Equal(t, ids, collected)
}

func TestPaginateEmptySet(t *testing.T) {
	page, err := Paginate(context.Background(), rowSource(), func(r row) int { return r.id }, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.Prev)
	assert.Nil(t, page.Next)
}

func TestPaginateInvalidLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		_, err := Paginate(context.Background(), rowSource(1, 2), func(r row) int { return r.id }, nil, limit)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	}
}

func TestPaginateStaleMarker(t *testing.T) {
	ctx := context.Background()
	src := rowSource(1, 3, 7, 9, 12)
	key := func(r row) int { return r.id }

	// 5 was never in the set; ordering comparisons still give a page.
	page, err := Paginate(ctx, src, key, marker(5), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 9}, rowIDs(page.Items))
	require.NotNil(t, page.Prev)
	assert.Equal(t, 3, *page.Prev)
	require.NotNil(t, page.Next)
	assert.Equal(t, 9, *page.Next)

	// A marker past the end degrades to an empty page, never a failure.
	page, err = Paginate(ctx, src, key, marker(40), 2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	require.NotNil(t, page.Prev)
	assert.Equal(t, 12, *page.Prev)
	assert.Nil(t, page.Next)
}

func TestPaginateMarkerBelowMinimum(t *testing.T) {
	page, err := Paginate(context.Background(), rowSource(3, 7, 9), func(r row) int { return r.id }, marker(1), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, rowIDs(page.Items))
	assert.Nil(t, page.Prev)
	require.NotNil(t, page.Next)
	assert.Equal(t, 7, *page.Next)
}

func TestSliceSourceFilter(t *testing.T) {
	items := []row{
		{id: 1, kind: "a"},
		{id: 2, kind: "b"},
		{id: 3, kind: "a"},
		{id: 4, kind: "a"},
	}
	src := NewSliceSource(items, func(r row) int { return r.id }, func(r row) bool { return r.kind == "a" })

	page, err := Paginate(context.Background(), src, func(r row) int { return r.id }, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, rowIDs(page.Items))
	require.NotNil(t, page.Next)
	assert.Equal(t, 3, *page.Next)
}
