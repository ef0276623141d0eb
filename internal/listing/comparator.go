package listing

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrUnknownSortKey is returned for a sort key that is not registered.
var ErrUnknownSortKey = errors.New("unknown sort key")

// Direction is the sort order.
type Direction int

// Directions.
const (
	Ascending Direction = iota
	Descending
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Arrow is the indicator shown next to a sorted column header.
func (d Direction) Arrow() string {
	if d == Descending {
		return "↓"
	}
	return "↑"
}

// Comparator orders two items: negative, zero or positive.
type Comparator[T any] func(a, b T) int

// ByString compares a text field ignoring case.
func ByString[T any](f func(T) string) Comparator[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(f(a)), strings.ToLower(f(b)))
	}
}

// ByNumber compares a numeric field.
func ByNumber[T any](f func(T) float64) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(f(a), f(b))
	}
}

// ByTime compares an instant.
func ByTime[T any](f func(T) time.Time) Comparator[T] {
	return func(a, b T) int {
		return f(a).Compare(f(b))
	}
}

// SortKeys is an ordered registry of named comparators.
type SortKeys[T any] struct {
	byName map[string]Comparator[T]
	names  []string
}

// NewSortKeys creates an empty registry.
func NewSortKeys[T any]() *SortKeys[T] {
	return &SortKeys[T]{byName: make(map[string]Comparator[T])}
}

// Add registers a comparator under name and returns the registry for chaining.
func (k *SortKeys[T]) Add(name string, c Comparator[T]) *SortKeys[T] {
	if _, exists := k.byName[name]; !exists {
		k.names = append(k.names, name)
	}
	k.byName[name] = c
	return k
}

// Get returns the comparator for name.
func (k *SortKeys[T]) Get(name string) (Comparator[T], bool) {
	if k == nil {
		return nil, false
	}
	c, ok := k.byName[name]
	return c, ok
}

// Names returns the registered keys in registration order.
func (k *SortKeys[T]) Names() []string {
	if k == nil {
		return nil
	}
	return slices.Clone(k.names)
}

// Validate returns ErrUnknownSortKey when name is not registered. Empty is valid.
func (k *SortKeys[T]) Validate(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := k.Get(name); !ok {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownSortKey, name, strings.Join(k.Names(), ", "))
	}
	return nil
}

// SortState is the active sort column and direction.
type SortState struct {
	Key       string
	Direction Direction
}

// Toggle selects key. The same key flips the direction; a new key starts ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		return SortState{Key: key, Direction: s.Direction.Flip()}
	}
	return SortState{Key: key, Direction: Ascending}
}

func (s SortState) String() string {
	if s.Key == "" {
		return "unsorted"
	}
	return s.Key + " " + s.Direction.String()
}

// Sort returns a sorted copy of items. A nil comparator keeps the input order.
func Sort[T any](items []T, c Comparator[T], dir Direction) []T {
	out := slices.Clone(items)
	if c == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		if dir == Descending {
			return c(b, a)
		}
		return c(a, b)
	})
	return out
}
