package reviews

import (
	"context"

	"trailhead/internal/query"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the persistence operations for reviews.
type Repository interface {
	Create(ctx context.Context, review *Review) error
	List(ctx context.Context, shaper *query.Shaper) ([]*Review, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*Review, error)
	Update(ctx context.Context, id bson.ObjectID, patch UpdateReview) (*Review, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	// RatingStats aggregates count and average rating for one tour.
	RatingStats(ctx context.Context, tourID bson.ObjectID) (int64, float64, error)
	// PopulateAuthors fills the Author snapshot on each review.
	PopulateAuthors(ctx context.Context, list []*Review) error
}

// TourStatsWriter is the slice of the tours repository the review service
// needs to keep rating aggregates current.
type TourStatsWriter interface {
	SetRatingStats(ctx context.Context, tourID bson.ObjectID, quantity int64, average float64) error
}
