package usecase

import (
	"context"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
)

// Transport is one backend able to answer a product query. It returns the
// raw body; shape handling belongs to the normalizer.
type Transport interface {
	Name() models.Transport
	FetchProducts(ctx context.Context, f models.FilterState) ([]byte, error)
}

type CategorySource interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// ActivityRecorder must not block the caller for long and never fails it.
type ActivityRecorder interface {
	Record(ctx context.Context, activity *models.BrowseActivity)
}

// Navigator writes the address bar.
type Navigator interface {
	Replace(ctx context.Context, change URLChange)
}
