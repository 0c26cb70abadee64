package graphql

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/internal/repo/auth"
	"github.com/tidwall/gjson"
)

const productsQuery = `query GetProducts($category: String, $minPrice: Float, $maxPrice: Float, $searchTerm: String) {
  products(category: $category, minPrice: $minPrice, maxPrice: $maxPrice, searchTerm: $searchTerm) {
    productId
    productName
    description
    price
    quantityAvailable
    categoryId
    categoryName
    createdAt
  }
}`

type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type Client interface {
	Name() models.Transport
	FetchProducts(ctx context.Context, f models.FilterState) ([]byte, error)
}

type client struct {
	http     *resty.Client
	endpoint string
	tokens   auth.TokenSource
}

func NewClient(rc *resty.Client, endpoint string, tokens auth.TokenSource) Client {
	return &client{http: rc, endpoint: endpoint, tokens: tokens}
}

func (c *client) Name() models.Transport {
	return models.TransportGraphQL
}

// FetchProducts returns the raw data.products array. GraphQL cannot page,
// sort or filter on stock, so only the narrowing filters are sent.
func (c *client) FetchProducts(ctx context.Context, f models.FilterState) ([]byte, error) {
	data, err := c.do(ctx, Request{Query: productsQuery, Variables: ProductVariables(f)})
	if err != nil {
		return nil, err
	}
	products := gjson.GetBytes(data, "products")
	if !products.Exists() {
		return []byte("null"), nil
	}
	return []byte(products.Raw), nil
}

// do posts req and returns the raw data object. A non-empty errors array is
// reported with its first message even on HTTP 200.
func (c *client) do(ctx context.Context, req Request) ([]byte, error) {
	resp, err := auth.Authorize(ctx, c.tokens, c.http.R()).
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.endpoint)
	if err != nil {
		return nil, transportError(0, err.Error(), err)
	}

	body := resp.Body()
	if msg := firstError(body); msg != "" {
		return nil, transportError(resp.StatusCode(), msg, nil)
	}
	if resp.IsError() {
		return nil, transportError(resp.StatusCode(), http.StatusText(resp.StatusCode()), nil)
	}
	if !gjson.ValidBytes(body) {
		return nil, &models.NormalizationError{Transport: models.TransportGraphQL, Reason: "invalid JSON envelope"}
	}
	return []byte(gjson.GetBytes(body, "data").Raw), nil
}

// ProductVariables sends absent filters as null.
func ProductVariables(f models.FilterState) map[string]any {
	vars := map[string]any{
		"category":   nil,
		"minPrice":   nil,
		"maxPrice":   nil,
		"searchTerm": nil,
	}
	if f.Category != "" {
		vars["category"] = f.Category
	}
	if f.MinPrice.Valid {
		vars["minPrice"] = f.MinPrice.Decimal.InexactFloat64()
	}
	if f.MaxPrice.Valid {
		vars["maxPrice"] = f.MaxPrice.Decimal.InexactFloat64()
	}
	if f.SearchTerm != "" {
		vars["searchTerm"] = f.SearchTerm
	}
	return vars
}

func firstError(body []byte) string {
	errs := gjson.GetBytes(body, "errors")
	if !errs.IsArray() || len(errs.Array()) == 0 {
		return ""
	}
	if msg := errs.Get("0.message").String(); msg != "" {
		return msg
	}
	return "graphql request failed"
}

func transportError(status int, msg string, err error) *models.TransportError {
	return &models.TransportError{
		Transport:  models.TransportGraphQL,
		StatusCode: status,
		Message:    msg,
		Err:        err,
	}
}
