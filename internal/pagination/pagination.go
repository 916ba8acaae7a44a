// Package pagination slices ordered listings into fixed-size pages.
package pagination

import "strconv"

// PostsPerPage is the fixed page size for every post listing.
const PostsPerPage = 10

// Page describes one slice of an ordered listing: which page it is, how big
// pages are, and how many items and pages exist in total.
type Page struct {
	Number     int   `json:"number"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_previous"`
}

// ParseNumber interprets a raw page query value. Non-numeric input falls
// back to the first page; range clamping happens in New.
func ParseNumber(raw string) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// New builds a Page for the requested number, clamping out-of-range values
// to the nearest valid page: anything below 1 becomes the first page,
// anything past the end becomes the last. An empty listing yields a single
// empty page.
func New(requested, perPage int, totalItems int64) Page {
	if perPage <= 0 {
		perPage = PostsPerPage
	}

	totalPages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
}

// Offset returns the item offset of the page's first element.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit returns the maximum number of items on the page.
func (p Page) Limit() int {
	return p.PerPage
}
