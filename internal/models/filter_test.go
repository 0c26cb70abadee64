package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestFilterStateEqual(t *testing.T) {
	a := DefaultFilter(BrowsePageSize)
	a.MinPrice = price("10")
	b := DefaultFilter(BrowsePageSize)
	b.MinPrice = price("10.00")

	assert.True(t, a.Equal(b))

	b.SearchTerm = "lamp"
	assert.False(t, a.Equal(b))

	c := DefaultFilter(BrowsePageSize)
	assert.False(t, a.Equal(c), "present and absent bounds differ")
}

func TestFilterStateApply(t *testing.T) {
	base := DefaultFilter(BrowsePageSize)
	base.Page = 3
	base.Category = "Lighting"

	t.Run("edit resets page", func(t *testing.T) {
		term := "lamp"
		next := base.Apply(FilterPatch{SearchTerm: &term})
		assert.Equal(t, 0, next.Page)
		assert.Equal(t, "lamp", next.SearchTerm)
		assert.Equal(t, "Lighting", next.Category)
		assert.Equal(t, 3, base.Page, "receiver is not mutated")
	})

	t.Run("page change keeps other fields", func(t *testing.T) {
		page := 2
		next := base.Apply(FilterPatch{Page: &page})
		assert.Equal(t, 2, next.Page)
		assert.Equal(t, "Lighting", next.Category)
		assert.Equal(t, base.SortBy, next.SortBy)
	})

	t.Run("clearing optional fields", func(t *testing.T) {
		empty := ""
		noPrice := decimal.NullDecimal{}
		withPrice := base
		withPrice.MaxPrice = price("50")
		next := withPrice.Apply(FilterPatch{Category: &empty, MaxPrice: &noPrice})
		assert.Empty(t, next.Category)
		assert.False(t, next.MaxPrice.Valid)
	})
}

func TestFilterPatchIsEmpty(t *testing.T) {
	assert.True(t, FilterPatch{}.IsEmpty())
	term := ""
	assert.False(t, FilterPatch{SearchTerm: &term}.IsEmpty())
}

func TestHasActiveFilters(t *testing.T) {
	f := DefaultFilter(AdminPageSize)
	f.Page = 4
	f.SortDirection = SortDesc
	assert.False(t, f.HasActiveFilters())

	f.InStock = StockOut
	assert.True(t, f.HasActiveFilters())
}

func TestFilterStateValidate(t *testing.T) {
	valid := DefaultFilter(BrowsePageSize)
	valid.MinPrice = price("5")
	valid.MaxPrice = price("5")
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*FilterState)
	}{
		{"negative page", func(f *FilterState) { f.Page = -1 }},
		{"zero page size", func(f *FilterState) { f.PageSize = 0 }},
		{"oversized page", func(f *FilterState) { f.PageSize = MaxPageSize + 1 }},
		{"unknown sort", func(f *FilterState) { f.SortBy = "rating" }},
		{"unknown direction", func(f *FilterState) { f.SortDirection = "asc" }},
		{"unknown stock", func(f *FilterState) { f.InStock = "maybe" }},
		{"negative price", func(f *FilterState) { f.MinPrice = price("-1") }},
		{"huge exponent", func(f *FilterState) {
			f.MinPrice = decimal.NewNullDecimal(decimal.New(1, 20000000))
			f.MaxPrice = price("1")
		}},
		{"inverted bounds", func(f *FilterState) {
			f.MinPrice = price("20")
			f.MaxPrice = price("10")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFilter(BrowsePageSize)
			tt.mutate(&f)
			err := f.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFilter))
		})
	}
}
