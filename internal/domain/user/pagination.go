package user

// Pagination describes one page of a user listing.
type Pagination struct {
	Total      int64 // Total number of matching users
	Page       int64 // Current page number (1-based)
	Limit      int64 // Page size
	TotalPages int64 // Number of pages for Total at Limit
}

// NewPagination builds a Pagination, deriving the page count.
func NewPagination(total, page, limit int64) *Pagination {
	var totalPages int64
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return &Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// HasPrev reports whether a page precedes this one.
func (p *Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a page follows this one.
func (p *Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}
