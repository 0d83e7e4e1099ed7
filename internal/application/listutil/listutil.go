package listutil

import (
	"net/url"
	"strconv"
)

// UsersPerPage is the fixed page size of the admin user table.
const UsersPerPage = 20

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total rows
	TotalPages int // ceil(Total / PerPage)
}

// PageControl is one page-number button.
type PageControl struct {
	Number   int
	Disabled bool
}

// ParsePage extracts a 1-indexed page number from the "page" query value.
// PRE: none
// POST: Returns fallback when the value is absent or not a positive integer
func ParsePage(q url.Values, fallback int) int {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		if fallback < 1 {
			return 1
		}
		return fallback
	}
	return page
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages = ceil(total/perPage), at least 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = UsersPerPage
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row of the current page.
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page.
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// ShowPagination reports whether page controls should be rendered.
// POST: Returns true when there is more than one page
func (p PageInfo) ShowPagination() bool {
	return p.TotalPages > 1
}

// Controls returns one control per page; the current page is disabled.
func (p PageInfo) Controls() []PageControl {
	out := make([]PageControl, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		out = append(out, PageControl{Number: i, Disabled: i == p.Page})
	}
	return out
}

// Paginate slices a fully loaded list into the requested page.
// PRE: perPage > 0
// POST: Returns at most perPage items; concatenating every page yields items exactly once
// INVARIANT: items is not mutated
func Paginate[T any](items []T, page, perPage int) ([]T, PageInfo) {
	info := NewPageInfo(page, perPage, len(items))
	start := info.StartRow() - 1
	if start < 0 {
		return []T{}, info
	}
	return items[start:info.EndRow()], info
}
