// Package listing computes bounded, filtered and ordered views over a collection.
package listing

import (
	"cmp"
	"iter"
	"math"
	"slices"
	"strings"

	"taskhub/internal/errors"
)

// DefaultSortField is the key used when the caller does not ask for one.
const DefaultSortField = "created_at"

// ErrUnknownSortField is returned by ParseSort for keys outside the allowed set.
var ErrUnknownSortField = errors.New("unknown sort field")

// Sort names an ordering key and its direction.
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSort orders newest first.
func DefaultSort() Sort {
	return Sort{Field: DefaultSortField, Desc: true}
}

// String renders the sort in its query form, e.g. "-created_at".
func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}

	return s.Field
}

// ParseSort reads "field" or "-field". An empty value yields DefaultSort.
func ParseSort(raw string, allowed ...string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort(), nil
	}

	s := Sort{Field: raw}
	if field, ok := strings.CutPrefix(raw, "-"); ok {
		s = Sort{Field: field, Desc: true}
	} else if field, ok := strings.CutPrefix(raw, "+"); ok {
		s = Sort{Field: field}
	}

	if !slices.Contains(allowed, s.Field) {
		return Sort{}, errors.Wrapf(ErrUnknownSortField, "sort by %q", s.Field)
	}

	return s, nil
}

// Page is a zero-based page index and a page size.
type Page struct {
	Offset int
	Size   int
}

// Bounds returns the half-open window [start, end) the page covers inside a
// collection of n items. ok is false when the window is empty.
func (p Page) Bounds(n int) (start, end int, ok bool) {
	if p.Size <= 0 || p.Offset < 0 {
		return 0, 0, false
	}
	// offset*size would overflow or land past the end
	if p.Offset > (n-1)/p.Size {
		return 0, 0, false
	}

	start = p.Offset * p.Size
	end = min(start+p.Size, n)

	return start, end, start < end
}

// Window returns the row offset and limit for stores that page on their own.
// ok is false when the page is empty or its offset cannot be represented.
func (p Page) Window() (offset, limit int, ok bool) {
	if p.Size <= 0 || p.Offset < 0 || p.Offset > math.MaxInt/p.Size {
		return 0, 0, false
	}

	return p.Offset * p.Size, p.Size, true
}

// Query describes one view. A nil Filter matches everything and a nil Compare
// keeps the source order.
type Query[T any] struct {
	Filter  func(T) bool
	Compare func(a, b T) int
	Page    Page
}

// Apply returns a lazy sequence over the requested page. The source slice is
// copied up front so later mutations of items do not leak into the view, and
// every range over the result recomputes it from that copy.
func Apply[T any](items []T, q Query[T]) iter.Seq[T] {
	snapshot := slices.Clone(items)

	return func(yield func(T) bool) {
		if q.Page.Size <= 0 {
			return
		}

		matched := make([]T, 0, len(snapshot))
		for _, item := range snapshot {
			if q.Filter == nil || q.Filter(item) {
				matched = append(matched, item)
			}
		}

		if q.Compare != nil {
			slices.SortStableFunc(matched, q.Compare)
		}

		start, end, ok := q.Page.Bounds(len(matched))
		if !ok {
			return
		}

		for _, item := range matched[start:end] {
			if !yield(item) {
				return
			}
		}
	}
}

// Collect materialises a sequence, always returning a non-nil slice.
func Collect[T any](seq iter.Seq[T]) []T {
	out := make([]T, 0)
	for item := range seq {
		out = append(out, item)
	}

	return out
}

// Direction flips a comparison result for descending sorts.
func Direction(desc bool, c int) int {
	if desc {
		return -c
	}

	return c
}

// Then chains comparators, falling through to the next on a tie.
func Then[T any](cmps ...func(a, b T) int) func(a, b T) int {
	return func(a, b T) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}

		return 0
	}
}

// By builds a comparator from a key extractor.
func By[T any, K cmp.Ordered](key func(T) K, desc bool) func(a, b T) int {
	return func(a, b T) int {
		return Direction(desc, cmp.Compare(key(a), key(b)))
	}
}
