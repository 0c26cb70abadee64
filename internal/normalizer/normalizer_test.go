package normalizer

import (
	"errors"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRESTEmpty(t *testing.T) {
	req := models.DefaultFilter(models.BrowsePageSize)
	req.Page = 4

	page, err := Normalize([]byte(`{"content":[],"totalElements":0,"totalPages":3}`), models.TransportREST, req)
	require.NoError(t, err)

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(0), page.TotalElements)
	assert.Equal(t, 4, page.Page)
	assert.Equal(t, models.BrowsePageSize, page.PageSize)
	assert.False(t, page.IsPartial)
	assert.Equal(t, models.TransportREST, page.Source)
}

func TestNormalizeRESTPage(t *testing.T) {
	body := `{
		"content": [
			{"productId": 7, "productName": "Desk Lamp", "description": null, "price": 49.90,
			 "categoryId": 2, "categoryName": "Lighting", "quantityAvailable": 3,
			 "createdAt": "2024-03-01T10:15:30.123"},
			{"productId": 8, "productName": "Shade", "price": "12.5", "quantityAvailable": 0,
			 "createdAt": 1709288130000}
		],
		"pageNumber": 1, "pageSize": 2, "totalElements": 9, "totalPages": 5,
		"first": false, "last": false, "sortBy": "price", "sortDirection": "ASC"
	}`
	page, err := Normalize([]byte(body), models.TransportREST, models.DefaultFilter(models.BrowsePageSize))
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 5, page.TotalPages)
	assert.Equal(t, int64(9), page.TotalElements)

	lamp := page.Items[0]
	assert.Equal(t, int64(7), lamp.ProductID)
	assert.Equal(t, "Desk Lamp", lamp.Name)
	assert.Equal(t, "", lamp.Description)
	assert.True(t, lamp.Price.Equal(decimal.RequireFromString("49.9")))
	assert.Equal(t, "Lighting", lamp.CategoryName)
	assert.True(t, lamp.InStock)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 30, 123000000, time.UTC), lamp.CreatedAt)

	shade := page.Items[1]
	assert.True(t, shade.Price.Equal(decimal.RequireFromString("12.50")))
	assert.False(t, shade.InStock)
	assert.Equal(t, time.UnixMilli(1709288130000).UTC(), shade.CreatedAt)
}

func TestNormalizeRESTClampsTotalPages(t *testing.T) {
	page, err := Normalize([]byte(`{"content":[],"totalElements":0,"totalPages":0}`), models.TransportREST, models.DefaultFilter(10))
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
}

func TestNormalizeGraphQL(t *testing.T) {
	body := `[
		{"productId":1,"productName":"a","price":1},
		{"productId":2,"productName":"b","price":2},
		{"productId":3,"productName":"c","price":3},
		{"id":"4","name":"d","price":4},
		{"productId":5,"productName":"e","price":5},
		{"productId":6,"productName":"f","price":6},
		{"productId":7,"productName":"g","price":7,"createdAt":"2024-01-02 03:04:05"}
	]`
	page, err := Normalize([]byte(body), models.TransportGraphQL, models.DefaultFilter(models.BrowsePageSize))
	require.NoError(t, err)

	assert.Len(t, page.Items, 7)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 7, page.PageSize)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, int64(7), page.TotalElements)
	assert.True(t, page.IsPartial)
	assert.Equal(t, models.TransportGraphQL, page.Source)

	assert.Equal(t, int64(4), page.Items[3].ProductID)
	assert.Equal(t, "d", page.Items[3].Name)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), page.Items[6].CreatedAt)
	assert.True(t, page.Items[0].CreatedAt.IsZero())
}

func TestNormalizeGraphQLEmpty(t *testing.T) {
	page, err := Normalize([]byte(`[]`), models.TransportGraphQL, models.DefaultFilter(models.BrowsePageSize))
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.PageSize)
}

func TestNormalizeShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		source models.Transport
	}{
		{"invalid json", `{"content":`, models.TransportREST},
		{"rest without content", `{"items":[]}`, models.TransportREST},
		{"rest array", `[]`, models.TransportREST},
		{"graphql object", `{"content":[]}`, models.TransportGraphQL},
		{"entry without id", `[{"productName":"x"}]`, models.TransportGraphQL},
		{"entry not object", `{"content":[1]}`, models.TransportREST},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.raw), tt.source, models.DefaultFilter(models.BrowsePageSize))
			var ne *models.NormalizationError
			require.True(t, errors.As(err, &ne), "got %v", err)
			assert.Equal(t, tt.source, ne.Transport)
		})
	}
}

func TestNormalizeCategories(t *testing.T) {
	cats, err := NormalizeCategories([]byte(`[{"categoryId":1,"categoryName":"Books"},{"categoryName":"orphan"},{"id":2,"name":"Toys"}]`))
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Books", cats[0].CategoryName)
	assert.Equal(t, int64(2), cats[1].CategoryID)

	cats, err = NormalizeCategories([]byte(`{"content":[{"categoryId":3,"categoryName":"Garden"}]}`))
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	_, err = NormalizeCategories([]byte(`"nope"`))
	assert.Error(t, err)
}
