package domain

// PaginationParams carries page/limit values from the HTTP layer and the shell
// down to the receipt repo. Page is 1-indexed. Limit is capped at 100.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional query params.
// Nil pointers fall back to page=1, limit=20.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Window returns the [lo, hi) slice bounds of this page within n items.
// Both bounds are clamped to n, so a page past the end yields lo == hi.
func (p PaginationParams) Window(n int) (lo, hi int) {
	lo = min(p.Offset(), n)
	hi = min(lo+p.Limit, n)
	return lo, hi
}
