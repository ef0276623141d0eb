package listing

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Page is one slice of a listing.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// Offset is the zero-based index of the first item on the page.
func (p Page[T]) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Paginate returns page number (1-indexed) of the given size.
// number is clamped into [1, TotalPages]; a size <= 0 puts everything on one page.
// An empty input yields page 1 of 1 with no items.
func Paginate[T any](items []T, size, number int) Page[T] {
	total := len(items)
	if size <= 0 {
		size = max(total, 1)
	}

	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	number = min(max(number, 1), pages)

	start := min((number-1)*size, total)
	end := min(start+size, total)

	return Page[T]{
		Items:      items[start:end:end],
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
	}
}
