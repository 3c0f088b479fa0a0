package model

import "strings"

// DefaultPageSize is used when no page size is configured or remembered.
const DefaultPageSize = 10

// PageSizeOptions are the page sizes offered by the interactive list views.
var PageSizeOptions = []int{5, 10, 20}

// PageQuery identifies one page of a searchable collection.
// PageNumber is 1-based. Changing PageSize or SearchTerm always resets
// PageNumber to 1 so a reshaped query never lands on a stale page.
type PageQuery struct {
	PageNumber int
	PageSize   int
	SearchTerm string
}

// NewPageQuery returns the first page with the given size, falling back to
// DefaultPageSize for non-positive values.
func NewPageQuery(pageSize int) PageQuery {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return PageQuery{PageNumber: 1, PageSize: pageSize}
}

// WithPage returns the query moved to page n. Values below 1 clamp to 1.
func (q PageQuery) WithPage(n int) PageQuery {
	if n < 1 {
		n = 1
	}
	q.PageNumber = n
	return q
}

// WithPageSize returns the query with a new page size, reset to page 1.
func (q PageQuery) WithPageSize(n int) PageQuery {
	q.PageSize = n
	q.PageNumber = 1
	return q
}

// WithSearchTerm returns the query with a new search term, reset to page 1.
func (q PageQuery) WithSearchTerm(s string) PageQuery {
	q.SearchTerm = strings.TrimSpace(s)
	q.PageNumber = 1
	return q
}

// PageResult is one fetched page. Items is never nil. TotalCount is trusted
// from the server; len(Items) <= PageSize is expected but not enforced.
type PageResult[T any] struct {
	Items      []T
	TotalCount int
}

// EmptyPage returns a result with no items and a zero count.
func EmptyPage[T any]() PageResult[T] {
	return PageResult[T]{Items: []T{}}
}

// Range returns the 1-based positions of the first and last item of the page
// within the whole collection, as shown in "from - to of total" summaries.
// Both are zero when the collection is empty.
func (r PageResult[T]) Range(q PageQuery) (from, to int) {
	if r.TotalCount <= 0 || q.PageSize <= 0 {
		return 0, 0
	}
	from = (q.PageNumber-1)*q.PageSize + 1
	to = min(q.PageNumber*q.PageSize, r.TotalCount)
	if from > to {
		return 0, 0
	}
	return from, to
}

// HasPrev reports whether a previous page exists.
func (r PageResult[T]) HasPrev(q PageQuery) bool {
	return q.PageNumber > 1
}

// HasNext reports whether the collection extends past this page.
func (r PageResult[T]) HasNext(q PageQuery) bool {
	return q.PageNumber*q.PageSize < r.TotalCount
}
