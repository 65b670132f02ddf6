package shared

// ListOptions bounds a list query. Results are always ordered by created_at
// descending with id as tie-break so that re-fetching without intervening
// writes returns the same order.
type ListOptions struct {
	Page     int
	PageSize int
}

// DefaultListOptions returns the first page with 20 rows
func DefaultListOptions() ListOptions {
	return ListOptions{Page: 1, PageSize: 20}
}

// Normalize clamps page and page size into a usable range
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = 20
	}
	if o.PageSize > 100 {
		o.PageSize = 100
	}
	return o
}

// Offset returns the row offset for the page
func (o ListOptions) Offset() int {
	n := o.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, opts ListOptions) Paginated[T] {
	opts = opts.Normalize()
	totalPages := int(total) / opts.PageSize
	if int(total)%opts.PageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalPages: totalPages,
	}
}
