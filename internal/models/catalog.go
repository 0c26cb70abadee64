package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transport string

const (
	TransportREST    Transport = "rest"
	TransportGraphQL Transport = "graphql"
)

func (t Transport) String() string {
	return string(t)
}

// CatalogEntry is the canonical product row, whatever transport served it.
type CatalogEntry struct {
	ProductID         int64           `json:"product_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable int             `json:"quantity_available"`
	InStock           bool            `json:"in_stock"`
	CategoryID        int64           `json:"category_id"`
	CategoryName      string          `json:"category_name"`
	CreatedAt         time.Time       `json:"created_at"`
}

type CatalogPage struct {
	Items         []CatalogEntry `json:"items"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
	TotalPages    int            `json:"total_pages"`
	TotalElements int64          `json:"total_elements"`
	// IsPartial marks pagination metadata synthesized by the normalizer.
	IsPartial bool      `json:"is_partial"`
	Source    Transport `json:"source"`
}

func (p *CatalogPage) IsEmpty() bool {
	return p == nil || len(p.Items) == 0
}

type Category struct {
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}
