package catalog

import "math"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPage keeps (page-1)*limit inside an int64 skip.
	MaxPage = math.MaxInt32
)

type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps the request to 1 <= page <= MaxPage and
// 1 <= limit <= MaxPageLimit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageRequest) Skip() int64 {
	n := p.Normalize()
	return int64(n.Page-1) * int64(n.Limit)
}

type PageMeta struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func NewPageMeta(req PageRequest, total int64) PageMeta {
	req = req.Normalize()
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return PageMeta{
		CurrentPage:     req.Page,
		TotalPages:      pages,
		TotalItems:      total,
		ItemsPerPage:    req.Limit,
		HasNextPage:     req.Page < pages,
		HasPreviousPage: req.Page > 1,
	}
}
