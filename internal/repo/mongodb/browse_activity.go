package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BrowseActivityRepository interface {
	Create(ctx context.Context, activity *models.BrowseActivity) error
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.BrowseActivity, error)
	EnsureIndexes(ctx context.Context) error
}

type browseActivityRepo struct {
	collection *mongo.Collection
}

func NewBrowseActivityRepository(db *DB) BrowseActivityRepository {
	return &browseActivityRepo{
		collection: db.Database.Collection(models.BrowseActivity{}.CollectionName()),
	}
}

func (r *browseActivityRepo) Create(ctx context.Context, activity *models.BrowseActivity) error {
	activity.ID = primitive.NewObjectID()
	if activity.ExecutedAt.IsZero() {
		activity.ExecutedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		return fmt.Errorf("failed to create browse activity: %w", err)
	}
	return nil
}

func (r *browseActivityRepo) GetBySessionID(ctx context.Context, sessionID string) ([]*models.BrowseActivity, error) {
	filter := bson.M{"session_id": sessionID}
	opts := options.Find().SetSort(bson.D{{Key: "generation", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get activities by session: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*models.BrowseActivity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode browse activities: %w", err)
	}
	return activities, nil
}

// EnsureIndexes is idempotent.
func (r *browseActivityRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "generation", Value: 1}}},
		{Keys: bson.D{{Key: "executed_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create browse activity indexes: %w", err)
	}
	return nil
}
