package usecase

import (
	"testing"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNewPageWindow(t *testing.T) {
	tests := []struct {
		name        string
		page, total int
		pages       []int
		first, gapL bool
		last, gapR  bool
	}{
		{"single page", 0, 1, []int{0}, false, false, false, false},
		{"start of many", 0, 20, []int{0, 1, 2, 3, 4}, false, false, true, true},
		{"middle", 10, 20, []int{8, 9, 10, 11, 12}, true, true, true, true},
		{"near start", 3, 20, []int{1, 2, 3, 4, 5}, true, false, true, true},
		{"end slides back", 19, 20, []int{15, 16, 17, 18, 19}, true, true, false, false},
		{"one before last", 13, 20, []int{11, 12, 13, 14, 15}, true, true, true, true},
		{"last anchor without gap", 16, 20, []int{14, 15, 16, 17, 18}, true, true, true, false},
		{"fewer than window", 1, 3, []int{0, 1, 2}, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewPageWindow(&models.CatalogPage{Page: tt.page, TotalPages: tt.total})
			assert.Equal(t, tt.pages, w.Pages)
			assert.Equal(t, tt.first, w.ShowFirst, "show first")
			assert.Equal(t, tt.gapL, w.LeadingGap, "leading gap")
			assert.Equal(t, tt.last, w.ShowLast, "show last")
			assert.Equal(t, tt.gapR, w.TrailingGap, "trailing gap")
		})
	}
}

func TestPageWindowEdges(t *testing.T) {
	w := NewPageWindow(&models.CatalogPage{Page: 0, TotalPages: 1, IsPartial: true})
	assert.True(t, w.Hidden)
	assert.False(t, w.HasPrev)
	assert.False(t, w.HasNext)

	w = NewPageWindow(&models.CatalogPage{Page: 9, TotalPages: 3})
	assert.Equal(t, 2, w.Current, "out of range page is clamped")
	assert.True(t, w.HasPrev)
	assert.False(t, w.HasNext)

	w = NewPageWindow(nil)
	assert.Equal(t, []int{0}, w.Pages)
}
