package models

import (
	"github.com/shopspring/decimal"
)

type SortField string

const (
	SortByID        SortField = "productId"
	SortByName      SortField = "productName"
	SortByPrice     SortField = "price"
	SortByCreatedAt SortField = "createdAt"
)

var SortFields = []SortField{SortByID, SortByName, SortByPrice, SortByCreatedAt}

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// StockFilter is tri-state; the zero value means any stock level.
type StockFilter string

const (
	StockAny StockFilter = ""
	StockIn  StockFilter = "true"
	StockOut StockFilter = "false"
)

const (
	BrowsePageSize = 12
	AdminPageSize  = 10
	MaxPageSize    = 100
)

// FilterState is the complete description of one catalog view. Treat it as
// an immutable value: every edit goes through Apply and yields a copy.
type FilterState struct {
	Page          int                 `json:"page" validate:"gte=0"`
	PageSize      int                 `json:"page_size" validate:"gte=1,lte=100"`
	SortBy        SortField           `json:"sort_by" validate:"oneof=productId productName price createdAt"`
	SortDirection SortDirection       `json:"sort_direction" validate:"oneof=ASC DESC"`
	Category      string              `json:"category,omitempty"`
	MinPrice      decimal.NullDecimal `json:"min_price"`
	MaxPrice      decimal.NullDecimal `json:"max_price"`
	SearchTerm    string              `json:"search_term,omitempty"`
	InStock       StockFilter         `json:"in_stock,omitempty"`
}

// DefaultFilter returns the no-filters state for the given page size.
func DefaultFilter(pageSize int) FilterState {
	return FilterState{
		Page:          0,
		PageSize:      pageSize,
		SortBy:        SortByID,
		SortDirection: SortAsc,
	}
}

// Equal reports whether both states describe the same view. Prices compare
// numerically so 10 and 10.00 are the same bound.
func (f FilterState) Equal(o FilterState) bool {
	return f.Page == o.Page &&
		f.PageSize == o.PageSize &&
		f.SortBy == o.SortBy &&
		f.SortDirection == o.SortDirection &&
		f.Category == o.Category &&
		nullDecimalEqual(f.MinPrice, o.MinPrice) &&
		nullDecimalEqual(f.MaxPrice, o.MaxPrice) &&
		f.SearchTerm == o.SearchTerm &&
		f.InStock == o.InStock
}

// HasActiveFilters reports whether any narrowing filter is set. Paging and
// sorting do not count.
func (f FilterState) HasActiveFilters() bool {
	return f.Category != "" ||
		f.MinPrice.Valid ||
		f.MaxPrice.Valid ||
		f.SearchTerm != "" ||
		f.InStock != StockAny
}

// Apply merges the patch into a copy of f. Page resets to 0 unless the patch
// itself moves the page.
func (f FilterState) Apply(p FilterPatch) FilterState {
	next := f
	if p.SortBy != nil {
		next.SortBy = *p.SortBy
	}
	if p.SortDirection != nil {
		next.SortDirection = *p.SortDirection
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.MinPrice != nil {
		next.MinPrice = *p.MinPrice
	}
	if p.MaxPrice != nil {
		next.MaxPrice = *p.MaxPrice
	}
	if p.SearchTerm != nil {
		next.SearchTerm = *p.SearchTerm
	}
	if p.InStock != nil {
		next.InStock = *p.InStock
	}
	if p.Page != nil {
		next.Page = *p.Page
	} else {
		next.Page = 0
	}
	return next
}

// FilterPatch is a partial edit. Nil fields are left untouched; an empty
// string or an invalid NullDecimal clears an optional field.
type FilterPatch struct {
	Page          *int
	SortBy        *SortField
	SortDirection *SortDirection
	Category      *string
	MinPrice      *decimal.NullDecimal
	MaxPrice      *decimal.NullDecimal
	SearchTerm    *string
	InStock       *StockFilter
}

func (p FilterPatch) IsEmpty() bool {
	return p.Page == nil &&
		p.SortBy == nil &&
		p.SortDirection == nil &&
		p.Category == nil &&
		p.MinPrice == nil &&
		p.MaxPrice == nil &&
		p.SearchTerm == nil &&
		p.InStock == nil
}

func nullDecimalEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}
