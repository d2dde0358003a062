package listview

// View keeps the mutable selection of a list screen: the full list, the
// active predicates, the page size and the current page. Any change to the
// list, the predicates or the page size moves back to page 1.
//
// A View is not safe for concurrent use.
type View[T any] struct {
	items    []T
	preds    []Predicate[T]
	pageSize int
	page     int

	filtered []T
}

// NewView returns an empty view showing pageSize items per page.
func NewView[T any](pageSize int) *View[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View[T]{pageSize: pageSize, page: 1}
}

// SetItems replaces the full list.
func (v *View[T]) SetItems(items []T) {
	v.items = items
	v.page = 1
	v.refilter()
}

// SetPredicates replaces the active filters.
func (v *View[T]) SetPredicates(preds ...Predicate[T]) {
	v.preds = preds
	v.page = 1
	v.refilter()
}

// SetPageSize changes the number of items per page.
func (v *View[T]) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	v.pageSize = size
	v.page = 1
}

// PageSize returns the configured page size.
func (v *View[T]) PageSize() int { return v.pageSize }

// Filtered returns every item that passes the active predicates.
func (v *View[T]) Filtered() []T { return v.filtered }

// GoToPage moves to page n, clamped to the valid range.
func (v *View[T]) GoToPage(n int) Page[T] {
	v.page = ClampPage(n, TotalPages(len(v.filtered), v.pageSize))
	return v.Current()
}

func (v *View[T]) FirstPage() Page[T] { return v.GoToPage(1) }
func (v *View[T]) PrevPage() Page[T]  { return v.GoToPage(v.page - 1) }
func (v *View[T]) NextPage() Page[T]  { return v.GoToPage(v.page + 1) }

func (v *View[T]) LastPage() Page[T] {
	return v.GoToPage(TotalPages(len(v.filtered), v.pageSize))
}

// Current renders the current page.
func (v *View[T]) Current() Page[T] {
	return Paginate(v.filtered, v.page, v.pageSize)
}

func (v *View[T]) refilter() {
	v.filtered = Filter(v.items, v.preds...)
}
