package listing

import "fmt"

// Config describes how one entity type is listed.
type Config[T any] struct {
	// Noun names the entity in counts, e.g. "products".
	Noun        string
	Search      []Field[T]
	Sort        *SortKeys[T]
	DefaultSort SortState
	PageSize    int
}

// Query is the user's current view of a listing.
type Query[T any] struct {
	Text     string
	Filters  []Predicate[T]
	Sort     SortState
	Page     int
	PageSize int
}

// Result is the outcome of running a query.
type Result[T any] struct {
	Page    Page[T]
	Sort    SortState
	Matched int
	Total   int
	Loading bool
}

// Empty reports whether the collection was loaded but nothing matched.
func (r Result[T]) Empty() bool {
	return !r.Loading && r.Matched == 0
}

// Summary renders "n of m products".
func (r Result[T]) Summary(noun string) string {
	if r.Loading {
		return "loading " + noun + "..."
	}
	return fmt.Sprintf("%d of %d %s", r.Matched, r.Total, noun)
}

// Pipeline runs filter, sort and paginate over an already fetched collection.
type Pipeline[T any] struct {
	Config Config[T]
	Query  Query[T]
}

// Apply filters, sorts and paginates items. A nil slice means the collection
// is still loading; an empty one means there is no data.
func (p Pipeline[T]) Apply(items []T) Result[T] {
	state := p.Query.Sort
	if state.Key == "" {
		state = p.Config.DefaultSort
	}

	if items == nil {
		return Result[T]{Loading: true, Sort: state, Page: Page[T]{Number: 1, TotalPages: 1}}
	}

	pred := All(append([]Predicate[T]{Search(p.Query.Text, p.Config.Search...)}, p.Query.Filters...)...)
	matched := Filter(items, pred)

	compare, _ := p.Config.Sort.Get(state.Key)
	sorted := Sort(matched, compare, state.Direction)

	size := p.Query.PageSize
	if size == 0 {
		size = p.Config.PageSize
	}

	return Result[T]{
		Page:    Paginate(sorted, size, p.Query.Page),
		Sort:    state,
		Matched: len(matched),
		Total:   len(items),
	}
}

// Validate checks the query's sort key against the registry.
func (p Pipeline[T]) Validate() error {
	return p.Config.Sort.Validate(p.Query.Sort.Key)
}
