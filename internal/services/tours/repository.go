package tours

import (
	"context"

	"trailhead/internal/query"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the persistence operations for tours. List and FindByID
// exclude secret tours; callers on privileged paths go through the repo's
// unscoped variants directly.
type Repository interface {
	Create(ctx context.Context, tour *Tour) error
	List(ctx context.Context, shaper *query.Shaper) ([]*Tour, error)
	FindByID(ctx context.Context, id bson.ObjectID, populateGuides bool) (*Tour, error)
	Update(ctx context.Context, id bson.ObjectID, patch UpdateTour) (*Tour, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	Stats(ctx context.Context) ([]DifficultyStats, error)
	SetRatingStats(ctx context.Context, id bson.ObjectID, quantity int64, average float64) error
}
