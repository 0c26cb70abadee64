package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/logger"
)

// CategoryUsecase serves the category list behind the filter dropdown.
// Category names are reference data, so one fetch is reused for ttl.
type CategoryUsecase interface {
	List(ctx context.Context) ([]models.Category, error)
	Refresh(ctx context.Context) ([]models.Category, error)
	// Prefetch warms the list and only logs failures.
	Prefetch(ctx context.Context)
}

type categoryEntry struct {
	data      []models.Category
	fetchedAt time.Time
}

type categoryUsecase struct {
	source CategorySource
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	cache *categoryEntry
	// fetchMu keeps concurrent misses down to one upstream call.
	fetchMu sync.Mutex
}

func NewCategoryUsecase(source CategorySource, ttl time.Duration) CategoryUsecase {
	return &categoryUsecase{source: source, ttl: ttl, now: time.Now}
}

func (u *categoryUsecase) cached() ([]models.Category, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.cache != nil && u.now().Sub(u.cache.fetchedAt) < u.ttl {
		return u.cache.data, true
	}
	return nil, false
}

func (u *categoryUsecase) List(ctx context.Context) ([]models.Category, error) {
	if data, ok := u.cached(); ok {
		return data, nil
	}

	u.fetchMu.Lock()
	defer u.fetchMu.Unlock()
	if data, ok := u.cached(); ok {
		return data, nil
	}
	return u.load(ctx)
}

func (u *categoryUsecase) Refresh(ctx context.Context) ([]models.Category, error) {
	u.fetchMu.Lock()
	defer u.fetchMu.Unlock()
	return u.load(ctx)
}

func (u *categoryUsecase) load(ctx context.Context) ([]models.Category, error) {
	data, err := u.source.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	u.mu.Lock()
	u.cache = &categoryEntry{data: data, fetchedAt: u.now()}
	u.mu.Unlock()
	return data, nil
}

func (u *categoryUsecase) Prefetch(ctx context.Context) {
	data, err := u.List(ctx)
	if err != nil {
		logger.Warnw(ctx, "category prefetch failed", "error", err)
		return
	}
	logger.Infow(ctx, "categories prefetched", "count", len(data))
}
