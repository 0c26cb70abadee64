package codec

import (
	"testing"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestEncodeDefaultIsEmpty(t *testing.T) {
	c := New(models.BrowsePageSize)
	assert.Equal(t, "", c.Encode(c.Defaults()))
	assert.Equal(t, "", c.Encode(models.DefaultFilter(models.BrowsePageSize)))
}

func TestEncodeOmitsDefaults(t *testing.T) {
	c := New(models.BrowsePageSize)
	f := c.Defaults()
	f.Page = 2
	f.SearchTerm = "desk lamp"
	f.InStock = models.StockIn

	assert.Equal(t, "inStock=true&page=2&searchTerm=desk+lamp", c.Encode(f))
}

func TestRoundTrip(t *testing.T) {
	c := New(models.BrowsePageSize)
	states := []models.FilterState{
		c.Defaults(),
		func() models.FilterState {
			f := c.Defaults()
			f.Page = 7
			f.PageSize = 48
			f.SortBy = models.SortByPrice
			f.SortDirection = models.SortDesc
			f.Category = "Home & Garden"
			f.MinPrice = price("9.99")
			f.MaxPrice = price("120")
			f.SearchTerm = "a=b&c ?"
			f.InStock = models.StockOut
			return f
		}(),
		func() models.FilterState {
			f := c.Defaults()
			f.MinPrice = price("0")
			f.MaxPrice = price("0")
			f.SortBy = models.SortByCreatedAt
			return f
		}(),
	}
	for _, f := range states {
		require.NoError(t, f.Validate())
		got := c.Decode(c.Encode(f))
		assert.True(t, f.Equal(got), "round trip of %+v gave %+v", f, got)
	}
}

func TestNormalFormIsIdempotent(t *testing.T) {
	c := New(models.AdminPageSize)
	queries := []string{
		"",
		"?page=3&size=10&sortBy=PRICE&sortDirection=desc&utm_source=mail",
		"minPrice=50&maxPrice=10&inStock=yes",
		"page=abc&size=1000&searchTerm=%zz",
		"category=Books&minPrice=1.50&page=0",
	}
	for _, q := range queries {
		once := c.Normalize(q)
		assert.Equal(t, once, c.Normalize(once), "query %q", q)
	}
}

func TestDecodeTolerance(t *testing.T) {
	c := New(models.BrowsePageSize)

	t.Run("malformed price and negative page", func(t *testing.T) {
		f := c.Decode("?minPrice=abc&page=-1")
		assert.False(t, f.MinPrice.Valid)
		assert.Equal(t, 0, f.Page)
	})

	t.Run("size outside range", func(t *testing.T) {
		assert.Equal(t, models.BrowsePageSize, c.Decode("size=0").PageSize)
		assert.Equal(t, models.BrowsePageSize, c.Decode("size=101").PageSize)
		assert.Equal(t, 100, c.Decode("size=100").PageSize)
	})

	t.Run("inverted bounds are both dropped", func(t *testing.T) {
		f, warnings := c.DecodeWithWarnings("minPrice=50&maxPrice=10")
		assert.False(t, f.MinPrice.Valid)
		assert.False(t, f.MaxPrice.Valid)
		assert.NotEmpty(t, warnings)
	})

	t.Run("negative price", func(t *testing.T) {
		f := c.Decode("maxPrice=-5")
		assert.False(t, f.MaxPrice.Valid)
	})

	t.Run("out of scale exponent", func(t *testing.T) {
		start := time.Now()
		f := c.Decode("?minPrice=1e20000000&maxPrice=1")
		assert.False(t, f.MinPrice.Valid)
		assert.True(t, f.MaxPrice.Valid)
		assert.Equal(t, "maxPrice=1", c.Encode(f))
		assert.Less(t, time.Since(start), time.Second)

		assert.False(t, c.Decode("maxPrice=1e-20000000").MaxPrice.Valid)
	})

	t.Run("case-insensitive sort", func(t *testing.T) {
		f := c.Decode("sortBy=productname&sortDirection=Desc")
		assert.Equal(t, models.SortByName, f.SortBy)
		assert.Equal(t, models.SortDesc, f.SortDirection)
	})

	t.Run("unknown sort falls back", func(t *testing.T) {
		f := c.Decode("sortBy=rating&sortDirection=sideways")
		assert.Equal(t, models.SortByID, f.SortBy)
		assert.Equal(t, models.SortAsc, f.SortDirection)
	})

	t.Run("inStock outside true/false", func(t *testing.T) {
		assert.Equal(t, models.StockAny, c.Decode("inStock=1").InStock)
		assert.Equal(t, models.StockOut, c.Decode("inStock=false").InStock)
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		f, warnings := c.DecodeWithWarnings("ref=home")
		assert.True(t, f.Equal(c.Defaults()))
		assert.Empty(t, warnings)
	})
}

func TestProfiles(t *testing.T) {
	admin := NewForProfile("admin")
	assert.Equal(t, models.AdminPageSize, admin.Defaults().PageSize)

	f := admin.Defaults()
	f.PageSize = models.BrowsePageSize
	assert.Equal(t, "size=12", admin.Encode(f))

	browse := NewForProfile("browse")
	assert.Equal(t, "", browse.Encode(browse.Decode("size=12")))
}
