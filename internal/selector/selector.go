package selector

import (
	"fmt"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
)

const (
	PolicyAuto = "auto"
	PolicyREST = "rest"
)

// Policy picks the backend for a filter. Implementations are pure.
type Policy interface {
	Name() string
	Select(f models.FilterState) models.Transport
}

func NewPolicy(name string) (Policy, error) {
	switch name {
	case "", PolicyAuto:
		return autoPolicy{}, nil
	case PolicyREST:
		return restPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown transport policy %q", name)
}

// autoPolicy sends the plain first page to GraphQL, which cannot page, sort
// or filter on stock. Everything else goes to REST.
type autoPolicy struct{}

func (autoPolicy) Name() string { return PolicyAuto }

func (autoPolicy) Select(f models.FilterState) models.Transport {
	if f.Page == 0 &&
		f.SortBy == models.SortByID &&
		f.SortDirection == models.SortAsc &&
		f.InStock == models.StockAny {
		return models.TransportGraphQL
	}
	return models.TransportREST
}

type restPolicy struct{}

func (restPolicy) Name() string { return PolicyREST }

func (restPolicy) Select(models.FilterState) models.Transport {
	return models.TransportREST
}
