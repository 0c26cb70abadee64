// Package codec maps a FilterState to and from the URL query string that is
// its only persisted form.
package codec

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/shopspring/decimal"
)

const (
	KeyPage          = "page"
	KeySize          = "size"
	KeySortBy        = "sortBy"
	KeySortDirection = "sortDirection"
	KeyCategory      = "category"
	KeyMinPrice      = "minPrice"
	KeyMaxPrice      = "maxPrice"
	KeySearchTerm    = "searchTerm"
	KeyInStock       = "inStock"
)

var sortFieldsByLower = func() map[string]models.SortField {
	m := make(map[string]models.SortField, len(models.SortFields))
	for _, f := range models.SortFields {
		m[strings.ToLower(string(f))] = f
	}
	return m
}()

// Codec is bound to one profile's defaults; fields equal to those defaults
// never reach the URL.
type Codec interface {
	Defaults() models.FilterState
	// Encode renders f with keys in sorted order. The default state encodes to "".
	Encode(f models.FilterState) string
	// Decode never fails. Unknown keys are ignored and malformed values fall
	// back to their defaults.
	Decode(query string) models.FilterState
	// DecodeWithWarnings is Decode that also reports every value it had to
	// drop, for callers that want to log them.
	DecodeWithWarnings(query string) (models.FilterState, []string)
	// Normalize is Encode(Decode(query)).
	Normalize(query string) string
}

type queryCodec struct {
	defaults models.FilterState
}

func New(pageSize int) Codec {
	if pageSize < 1 || pageSize > models.MaxPageSize {
		pageSize = models.BrowsePageSize
	}
	return &queryCodec{defaults: models.DefaultFilter(pageSize)}
}

// NewForProfile accepts "browse" or "admin".
func NewForProfile(profile string) Codec {
	if profile == "admin" {
		return New(models.AdminPageSize)
	}
	return New(models.BrowsePageSize)
}

func (c *queryCodec) Defaults() models.FilterState {
	return c.defaults
}

func (c *queryCodec) Encode(f models.FilterState) string {
	v := url.Values{}
	if f.Page != c.defaults.Page {
		v.Set(KeyPage, strconv.Itoa(f.Page))
	}
	if f.PageSize != c.defaults.PageSize {
		v.Set(KeySize, strconv.Itoa(f.PageSize))
	}
	if f.SortBy != c.defaults.SortBy {
		v.Set(KeySortBy, string(f.SortBy))
	}
	if f.SortDirection != c.defaults.SortDirection {
		v.Set(KeySortDirection, string(f.SortDirection))
	}
	if f.Category != "" {
		v.Set(KeyCategory, f.Category)
	}
	if f.MinPrice.Valid {
		v.Set(KeyMinPrice, f.MinPrice.Decimal.String())
	}
	if f.MaxPrice.Valid {
		v.Set(KeyMaxPrice, f.MaxPrice.Decimal.String())
	}
	if f.SearchTerm != "" {
		v.Set(KeySearchTerm, f.SearchTerm)
	}
	if f.InStock != models.StockAny {
		v.Set(KeyInStock, string(f.InStock))
	}
	return v.Encode()
}

func (c *queryCodec) Decode(query string) models.FilterState {
	f, _ := c.DecodeWithWarnings(query)
	return f
}

func (c *queryCodec) DecodeWithWarnings(query string) (models.FilterState, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	f := c.defaults
	v, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		warn("parse query: %v", err)
	}

	if s := v.Get(KeyPage); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			f.Page = n
		} else {
			warn("ignoring %s=%q", KeyPage, s)
		}
	}
	if s := v.Get(KeySize); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= models.MaxPageSize {
			f.PageSize = n
		} else {
			warn("ignoring %s=%q", KeySize, s)
		}
	}
	if s := v.Get(KeySortBy); s != "" {
		if field, ok := sortFieldsByLower[strings.ToLower(s)]; ok {
			f.SortBy = field
		} else {
			warn("ignoring %s=%q", KeySortBy, s)
		}
	}
	if s := v.Get(KeySortDirection); s != "" {
		switch dir := models.SortDirection(strings.ToUpper(s)); dir {
		case models.SortAsc, models.SortDesc:
			f.SortDirection = dir
		default:
			warn("ignoring %s=%q", KeySortDirection, s)
		}
	}
	f.Category = v.Get(KeyCategory)
	f.SearchTerm = v.Get(KeySearchTerm)

	f.MinPrice = parsePrice(v.Get(KeyMinPrice), KeyMinPrice, warn)
	f.MaxPrice = parsePrice(v.Get(KeyMaxPrice), KeyMaxPrice, warn)
	if f.MinPrice.Valid && f.MaxPrice.Valid && f.MinPrice.Decimal.GreaterThan(f.MaxPrice.Decimal) {
		warn("dropping inverted price range %s..%s", f.MinPrice.Decimal, f.MaxPrice.Decimal)
		f.MinPrice = decimal.NullDecimal{}
		f.MaxPrice = decimal.NullDecimal{}
	}

	switch s := v.Get(KeyInStock); models.StockFilter(s) {
	case models.StockIn, models.StockOut:
		f.InStock = models.StockFilter(s)
	case models.StockAny:
	default:
		warn("ignoring %s=%q", KeyInStock, s)
	}

	return f, warnings
}

func (c *queryCodec) Normalize(query string) string {
	return c.Encode(c.Decode(query))
}

func parsePrice(s, key string, warn func(string, ...any)) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := models.ParsePrice(s)
	if err != nil {
		warn("ignoring %s=%q", key, s)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
