// Package query carries cross-repository query parameters.
package query

// Pagination holds limit/offset (or cursor) parameters for list queries.
type Pagination struct {
	Limit  *int
	Offset *int
	Order  string // "asc" or "desc" by creation time
	After  *uint  // cursor: internal ID to continue after
}

// NewPagination builds a simple limit/offset pagination.
func NewPagination(limit, offset int) *Pagination {
	return &Pagination{Limit: &limit, Offset: &offset, Order: "desc"}
}
