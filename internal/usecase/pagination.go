package usecase

import "github.com/nguyentranbao-ct/catalog-browser/internal/models"

const pageWindowSize = 5

// PageWindow is the pager around the current page. Pages are zero-based.
type PageWindow struct {
	Current     int   `json:"current"`
	TotalPages  int   `json:"total_pages"`
	Pages       []int `json:"pages"`
	ShowFirst   bool  `json:"show_first"`
	LeadingGap  bool  `json:"leading_gap"`
	ShowLast    bool  `json:"show_last"`
	TrailingGap bool  `json:"trailing_gap"`
	HasPrev     bool  `json:"has_prev"`
	HasNext     bool  `json:"has_next"`
	// Hidden is set when there is nothing to page through.
	Hidden bool `json:"hidden"`
}

// NewPageWindow centres a window of five pages on the current one, sliding
// it back when it would run past the last page. Partial pages have exactly
// one page.
func NewPageWindow(page *models.CatalogPage) PageWindow {
	if page == nil {
		return PageWindow{TotalPages: 1, Pages: []int{0}, Hidden: true}
	}
	total := max(page.TotalPages, 1)
	current := min(max(page.Page, 0), total-1)

	start := max(0, current-pageWindowSize/2)
	end := min(total-1, start+pageWindowSize-1)
	if end-start+1 < pageWindowSize {
		start = max(0, end-pageWindowSize+1)
	}

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}

	return PageWindow{
		Current:     current,
		TotalPages:  total,
		Pages:       pages,
		ShowFirst:   start > 0,
		LeadingGap:  start > 1,
		ShowLast:    end < total-1,
		TrailingGap: end < total-2,
		HasPrev:     current > 0,
		HasNext:     current < total-1,
		Hidden:      total <= 1,
	}
}
