package listing

import (
	"strconv"
	"strings"
)

// Predicate reports whether an item belongs in the listing.
// A nil Predicate matches everything.
type Predicate[T any] func(T) bool

// Field extracts the searchable text of one column.
type Field[T any] func(T) string

// All ANDs the predicates, skipping nil ones. With nothing left it returns nil.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}

	return func(item T) bool {
		for _, p := range active {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// Search matches items where at least one field contains query, ignoring case.
// The query is matched as typed, surrounding spaces included.
// A blank query yields nil so the search is never evaluated.
func Search[T any](query string, fields ...Field[T]) Predicate[T] {
	if strings.TrimSpace(query) == "" || len(fields) == 0 {
		return nil
	}
	needle := strings.ToLower(query)

	return func(item T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(item)), needle) {
				return true
			}
		}
		return false
	}
}

// Filter returns the items accepted by p, preserving order.
// A nil predicate returns a copy of items.
func Filter[T any](items []T, p Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if p == nil || p(item) {
			out = append(out, item)
		}
	}
	return out
}

// Number formats a float the way it is displayed in tables: 10, 10.5, 0.25.
func Number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Int formats an integer field for searching.
func Int(i int) string {
	return strconv.Itoa(i)
}
