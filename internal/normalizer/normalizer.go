// Package normalizer turns either backend's product response into a
// models.CatalogPage. It is the only place that knows both wire shapes.
package normalizer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalize maps raw into a page. REST bodies are Spring pages, GraphQL bodies
// are the bare products array. req fills in metadata the body does not carry.
func Normalize(raw []byte, source models.Transport, req models.FilterState) (models.CatalogPage, error) {
	if !gjson.ValidBytes(raw) {
		return models.CatalogPage{}, shapeError(source, "invalid JSON")
	}
	body := gjson.ParseBytes(raw)

	switch source {
	case models.TransportREST:
		return normalizeREST(body, req)
	case models.TransportGraphQL:
		return normalizeGraphQL(body)
	}
	return models.CatalogPage{}, shapeError(source, "unknown transport")
}

func normalizeREST(body gjson.Result, req models.FilterState) (models.CatalogPage, error) {
	if !body.IsObject() {
		return models.CatalogPage{}, shapeError(models.TransportREST, "body is not an object")
	}
	content := body.Get("content")
	if !content.IsArray() {
		return models.CatalogPage{}, shapeError(models.TransportREST, "missing content array")
	}
	items, err := entries(content, models.TransportREST)
	if err != nil {
		return models.CatalogPage{}, err
	}

	page := models.CatalogPage{
		Items:    items,
		Page:     req.Page,
		PageSize: req.PageSize,
		Source:   models.TransportREST,
	}
	if v := body.Get("pageNumber"); v.Exists() && v.Int() >= 0 {
		page.Page = int(v.Int())
	}
	if v := body.Get("pageSize"); v.Exists() && v.Int() > 0 {
		page.PageSize = int(v.Int())
	}

	page.TotalElements = int64(len(items))
	if v := body.Get("totalElements"); v.Exists() {
		page.TotalElements = max(v.Int(), 0)
	}
	page.TotalPages = 1
	if v := body.Get("totalPages"); v.Exists() && v.Int() > 1 {
		page.TotalPages = int(v.Int())
	}
	return page, nil
}

func normalizeGraphQL(body gjson.Result) (models.CatalogPage, error) {
	if !body.IsArray() {
		return models.CatalogPage{}, shapeError(models.TransportGraphQL, "body is not an array")
	}
	items, err := entries(body, models.TransportGraphQL)
	if err != nil {
		return models.CatalogPage{}, err
	}
	return models.CatalogPage{
		Items:         items,
		Page:          0,
		PageSize:      len(items),
		TotalPages:    1,
		TotalElements: int64(len(items)),
		IsPartial:     true,
		Source:        models.TransportGraphQL,
	}, nil
}

func entries(list gjson.Result, source models.Transport) ([]models.CatalogEntry, error) {
	raw := list.Array()
	items := make([]models.CatalogEntry, 0, len(raw))
	for i, r := range raw {
		e, err := entry(r)
		if err != nil {
			return nil, shapeError(source, fmt.Sprintf("entry %d: %s", i, err))
		}
		items = append(items, e)
	}
	return items, nil
}

func entry(r gjson.Result) (models.CatalogEntry, error) {
	if !r.IsObject() {
		return models.CatalogEntry{}, fmt.Errorf("not an object")
	}
	id, ok := integer(first(r, "productId", "id"))
	if !ok {
		return models.CatalogEntry{}, fmt.Errorf("missing product identifier")
	}
	categoryID, _ := integer(first(r, "categoryId", "category.categoryId"))
	quantity := int(first(r, "quantityAvailable", "quantity").Int())
	return models.CatalogEntry{
		ProductID:         id,
		Name:              first(r, "productName", "name").String(),
		Description:       r.Get("description").String(),
		Price:             amount(r.Get("price")),
		QuantityAvailable: quantity,
		InStock:           quantity > 0,
		CategoryID:        categoryID,
		CategoryName:      first(r, "categoryName", "category.categoryName").String(),
		CreatedAt:         timestamp(r.Get("createdAt")),
	}, nil
}

// NormalizeCategories accepts a bare array or a page with a content array.
func NormalizeCategories(raw []byte) ([]models.Category, error) {
	if !gjson.ValidBytes(raw) {
		return nil, shapeError(models.TransportREST, "invalid JSON")
	}
	body := gjson.ParseBytes(raw)
	if body.IsObject() {
		body = body.Get("content")
	}
	if !body.IsArray() {
		return nil, shapeError(models.TransportREST, "categories body is not an array")
	}

	out := make([]models.Category, 0, len(body.Array()))
	for _, r := range body.Array() {
		id, ok := integer(first(r, "categoryId", "id"))
		if !ok {
			continue
		}
		out = append(out, models.Category{
			CategoryID:   id,
			CategoryName: first(r, "categoryName", "name").String(),
			Description:  r.Get("description").String(),
			CreatedAt:    timestamp(r.Get("createdAt")),
		})
	}
	return out, nil
}

// first returns the first non-null value among paths.
func first(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func integer(v gjson.Result) (int64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Int(), true
	case gjson.String:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func amount(v gjson.Result) decimal.Decimal {
	var s string
	switch v.Type {
	case gjson.Number:
		s = v.Raw
	case gjson.String:
		s = v.Str
	default:
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !models.PriceInRange(d) {
		return decimal.Zero
	}
	return d
}

func timestamp(v gjson.Result) time.Time {
	switch v.Type {
	case gjson.Number:
		return time.UnixMilli(v.Int()).UTC()
	case gjson.String:
		if ms, err := strconv.ParseInt(v.Str, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v.Str); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func shapeError(source models.Transport, reason string) *models.NormalizationError {
	return &models.NormalizationError{Transport: source, Reason: reason}
}
