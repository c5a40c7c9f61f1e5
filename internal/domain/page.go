package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects a 1-based page of a result set.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize applies defaults to non-positive values and caps the limit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset is the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one slice of a filtered result set.
type Page[T any] struct {
	Items       []T
	Total       int64
	CurrentPage int
	Limit       int
}

// TotalPages is ceil(Total/Limit).
func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages()
}
