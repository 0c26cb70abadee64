package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BrowseOutcome string

const (
	BrowseOutcomeSuccess BrowseOutcome = "success"
	BrowseOutcomeError   BrowseOutcome = "error"
)

// BrowseActivity records one settled, current-generation fetch.
type BrowseActivity struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SessionID  string             `bson:"session_id" json:"session_id"`
	Generation uint64             `bson:"generation" json:"generation"`
	Query      string             `bson:"query" json:"query"`
	Transport  Transport          `bson:"transport" json:"transport"`
	Outcome    BrowseOutcome      `bson:"outcome" json:"outcome"`
	ErrorKind  ErrorKind          `bson:"error_kind,omitempty" json:"error_kind,omitempty"`
	ItemCount  int                `bson:"item_count" json:"item_count"`
	DurationMs int64              `bson:"duration_ms" json:"duration_ms"`
	ExecutedAt time.Time          `bson:"executed_at" json:"executed_at"`
}

func (BrowseActivity) CollectionName() string {
	return "browse_activities"
}
