package reviews

import (
	"time"

	"trailhead/internal/query"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Review is authored by exactly one user against exactly one tour; the
// (tour, user) pair is unique.
type Review struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TourID    bson.ObjectID `bson:"tour_id" json:"tour_id"`
	UserID    bson.ObjectID `bson:"user_id" json:"user_id"`
	Rating    float64       `bson:"rating" json:"rating"`
	Text      string        `bson:"review" json:"review"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
	Author    *Author       `bson:"-" json:"author,omitempty"`
}

// Author is the populated snapshot of the reviewing user.
type Author struct {
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

// UpdateReview represents the fields that can be updated on a review.
type UpdateReview struct {
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Text   *string  `json:"review,omitempty" validate:"omitempty,min=1,max=100"`
}

// FilterFields is the query-shaper allow-list for the reviews collection.
var FilterFields = map[string]query.Kind{
	"rating":  query.Number,
	"tour_id": query.ObjectID,
	"user_id": query.ObjectID,
}
