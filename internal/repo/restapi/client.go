package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/internal/normalizer"
	"github.com/nguyentranbao-ct/catalog-browser/internal/repo/auth"
	"github.com/tidwall/gjson"
)

type Client interface {
	Name() models.Transport
	FetchProducts(ctx context.Context, f models.FilterState) ([]byte, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type client struct {
	http   *resty.Client
	tokens auth.TokenSource
}

// NewClient expects rc to carry the REST base URL.
func NewClient(rc *resty.Client, tokens auth.TokenSource) Client {
	return &client{http: rc, tokens: tokens}
}

func (c *client) Name() models.Transport {
	return models.TransportREST
}

// FetchProducts calls GET /products and returns the raw page body.
func (c *client) FetchProducts(ctx context.Context, f models.FilterState) ([]byte, error) {
	resp, err := auth.Authorize(ctx, c.tokens, c.http.R()).
		SetContext(ctx).
		SetQueryParamsFromValues(ProductParams(f)).
		Get("/products")
	if err != nil {
		return nil, transportError(0, err.Error(), err)
	}
	if resp.IsError() {
		return nil, transportError(resp.StatusCode(), errorMessage(resp), nil)
	}
	return resp.Body(), nil
}

func (c *client) ListCategories(ctx context.Context) ([]models.Category, error) {
	resp, err := auth.Authorize(ctx, c.tokens, c.http.R()).
		SetContext(ctx).
		Get("/categories")
	if err != nil {
		return nil, transportError(0, err.Error(), err)
	}
	if resp.IsError() {
		return nil, transportError(resp.StatusCode(), errorMessage(resp), nil)
	}
	categories, err := normalizer.NormalizeCategories(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

// ProductParams always carries paging and sorting. Optional filters are sent
// only when set.
func ProductParams(f models.FilterState) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("size", strconv.Itoa(f.PageSize))
	v.Set("sortBy", string(f.SortBy))
	v.Set("sortDirection", string(f.SortDirection))
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.MinPrice.Valid {
		v.Set("minPrice", f.MinPrice.Decimal.String())
	}
	if f.MaxPrice.Valid {
		v.Set("maxPrice", f.MaxPrice.Decimal.String())
	}
	if f.SearchTerm != "" {
		v.Set("searchTerm", f.SearchTerm)
	}
	if f.InStock != models.StockAny {
		v.Set("inStock", string(f.InStock))
	}
	return v
}

func errorMessage(resp *resty.Response) string {
	body := resp.Body()
	if gjson.ValidBytes(body) {
		for _, path := range []string{"message", "error", "detail"} {
			if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
	}
	return http.StatusText(resp.StatusCode())
}

func transportError(status int, msg string, err error) *models.TransportError {
	return &models.TransportError{
		Transport:  models.TransportREST,
		StatusCode: status,
		Message:    msg,
		Err:        err,
	}
}
