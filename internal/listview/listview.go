// Package listview derives a displayed page of records from a full in-memory
// list, a set of filter predicates, a page size and a page number.
//
// Every function in this package is pure: the same inputs always produce the
// same page. Rolling date windows take the reference time as an argument.
package listview

// All is the sentinel value that disables an equality filter.
const All = "all"

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 10

// PageSizes lists the page sizes offered by the views.
var PageSizes = []int{5, 10, 25, 50, 100}

// windowSize is the number of page links shown around the current page.
const windowSize = 5

// Predicate reports whether an item belongs to the filtered set.
type Predicate[T any] func(T) bool

// Filter returns the items accepted by every predicate, in input order.
// Nil predicates are ignored, so callers can pass optional filters directly.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	out := make([]T, 0, len(items))
outer:
	for _, it := range items {
		for _, p := range active {
			if !p(it) {
				continue outer
			}
		}
		out = append(out, it)
	}
	return out
}

// Page is one slice of a filtered list plus its navigation metadata. Page
// numbers are 1-based and always within [1, TotalPages].
type Page[T any] struct {
	Items       []T   `json:"items"`
	Page        int   `json:"page"`
	PageSize    int   `json:"per_page"`
	Total       int   `json:"total"`
	TotalPages  int   `json:"total_pages"`
	First       int   `json:"first"`
	Prev        int   `json:"prev"`
	Next        int   `json:"next"`
	Last        int   `json:"last"`
	HasPrev     bool  `json:"has_prev"`
	HasNext     bool  `json:"has_next"`
	PageNumbers []int `json:"page_numbers"`
	// StartIndex and EndIndex are the 1-based positions of the first and last
	// item shown; both are 0 for an empty list.
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// TotalPages returns the number of pages needed for total items. An empty
// list still has one (empty) page.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage bounds page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	}
	return page
}

// Paginate slices items for the requested page. Out-of-range pages are clamped.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := TotalPages(total, size)
	page = ClampPage(page, pages)

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	p := Page[T]{
		Items:       items[start:end:end],
		Page:        page,
		PageSize:    size,
		Total:       total,
		TotalPages:  pages,
		First:       1,
		Prev:        ClampPage(page-1, pages),
		Next:        ClampPage(page+1, pages),
		Last:        pages,
		HasPrev:     page > 1,
		HasNext:     page < pages,
		PageNumbers: PageWindow(page, pages),
	}
	if total > 0 {
		p.StartIndex = start + 1
		p.EndIndex = end
	}
	return p
}

// PageWindow returns up to five consecutive page numbers centred on current
// where possible and shifted to stay within [1, totalPages].
func PageWindow(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	current = ClampPage(current, totalPages)

	n := windowSize
	if totalPages < n {
		n = totalPages
	}
	first := current - windowSize/2
	if first < 1 {
		first = 1
	}
	if first+n-1 > totalPages {
		first = totalPages - n + 1
	}

	out := make([]int, n)
	for i := range out {
		out[i] = first + i
	}
	return out
}
