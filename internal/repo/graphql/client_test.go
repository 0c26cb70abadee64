package graphql

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/internal/repo/auth"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	rc := util.NewRestyClient(util.RestyOptions{Timeout: time.Second})
	return NewClient(rc, srv.URL+"/graphql", auth.NewTokenSource(""))
}

func TestFetchProducts(t *testing.T) {
	var payload []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graphql", r.URL.Path)
		payload, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"products":[{"productId":1,"productName":"Lamp"}]}}`))
	})

	f := models.DefaultFilter(models.BrowsePageSize)
	f.Category = "Lighting"
	f.MaxPrice = decimal.NewNullDecimal(decimal.RequireFromString("99.5"))

	body, err := c.FetchProducts(context.Background(), f)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":1,"productName":"Lamp"}]`, string(body))

	req := gjson.ParseBytes(payload)
	assert.Contains(t, req.Get("query").String(), "products(")
	assert.Equal(t, "Lighting", req.Get("variables.category").String())
	assert.Equal(t, 99.5, req.Get("variables.maxPrice").Float())
	assert.Equal(t, gjson.Null, req.Get("variables.minPrice").Type)
	assert.Equal(t, gjson.Null, req.Get("variables.searchTerm").Type)
}

func TestFetchProductsGraphQLErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Field 'products' is undefined"},{"message":"second"}],"data":null}`))
	})

	_, err := c.FetchProducts(context.Background(), models.DefaultFilter(10))
	var te *models.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, models.TransportGraphQL, te.Transport)
	assert.Equal(t, "Field 'products' is undefined", te.Message)
	assert.Equal(t, http.StatusOK, te.StatusCode)
}

func TestFetchProductsHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchProducts(context.Background(), models.DefaultFilter(10))
	var te *models.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
}

func TestFetchProductsMissingData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	body, err := c.FetchProducts(context.Background(), models.DefaultFilter(10))
	require.NoError(t, err)
	assert.Equal(t, "null", string(body))
}

func TestProductVariables(t *testing.T) {
	vars := ProductVariables(models.DefaultFilter(10))
	assert.Len(t, vars, 4)
	for k, v := range vars {
		assert.Nil(t, v, k)
	}
}
