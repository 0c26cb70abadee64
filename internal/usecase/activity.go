package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/logger"
)

const activityWriteTimeout = 5 * time.Second

type ActivityStore interface {
	Create(ctx context.Context, activity *models.BrowseActivity) error
}

type ActivityPublisher interface {
	Publish(ctx context.Context, activity *models.BrowseActivity) error
}

// BrowseActivityRecorder writes activities in the background. Wait blocks
// until pending writes finish.
type BrowseActivityRecorder interface {
	ActivityRecorder
	Wait()
}

type activityRecorder struct {
	store     ActivityStore
	publisher ActivityPublisher
	wg        sync.WaitGroup
}

// NewActivityRecorder accepts nil for either sink.
func NewActivityRecorder(store ActivityStore, publisher ActivityPublisher) BrowseActivityRecorder {
	return &activityRecorder{store: store, publisher: publisher}
}

func (r *activityRecorder) Record(ctx context.Context, activity *models.BrowseActivity) {
	if r.store == nil && r.publisher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, activityWriteTimeout)
		defer cancel()

		if r.store != nil {
			if err := r.store.Create(ctx, activity); err != nil {
				logger.Warnw(ctx, "failed to store browse activity", "session_id", activity.SessionID, "error", err)
			}
		}
		if r.publisher != nil {
			if err := r.publisher.Publish(ctx, activity); err != nil {
				logger.Warnw(ctx, "failed to publish browse activity", "session_id", activity.SessionID, "error", err)
			}
		}
	}()
}

func (r *activityRecorder) Wait() {
	r.wg.Wait()
}
