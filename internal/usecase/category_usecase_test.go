package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategorySource struct {
	mu    sync.Mutex
	calls int
	err   error
	data  []models.Category
}

func (f *fakeCategorySource) ListCategories(context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func (f *fakeCategorySource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCategoryUsecaseCaches(t *testing.T) {
	src := &fakeCategorySource{data: []models.Category{{CategoryID: 1, CategoryName: "Books"}}}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	u := NewCategoryUsecase(src, time.Minute).(*categoryUsecase)
	u.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		cats, err := u.List(ctx)
		require.NoError(t, err)
		assert.Len(t, cats, 1)
	}
	assert.Equal(t, 1, src.Calls())

	now = now.Add(2 * time.Minute)
	_, err := u.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls())

	_, err = u.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, src.Calls())
}

func TestCategoryUsecaseConcurrentMiss(t *testing.T) {
	src := &fakeCategorySource{data: []models.Category{{CategoryID: 1}}}
	u := NewCategoryUsecase(src, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = u.List(context.Background())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, src.Calls())
}

func TestCategoryUsecaseError(t *testing.T) {
	src := &fakeCategorySource{err: errors.New("boom")}
	u := NewCategoryUsecase(src, time.Minute)

	_, err := u.List(context.Background())
	assert.Error(t, err)

	u.Prefetch(context.Background())
	assert.Equal(t, 2, src.Calls(), "failures are not cached")
}
