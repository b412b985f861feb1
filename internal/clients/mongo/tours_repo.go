package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trailhead/internal/query"
	"trailhead/internal/services/auth"
	"trailhead/internal/services/tours"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ToursRepo implements tours.Repository for MongoDB.
type ToursRepo struct {
	collection *mongo.Collection
	users      *mongo.Collection
}

// NewToursRepo creates a new tours repository
func NewToursRepo(parentCtx context.Context, db *mongo.Database) (*ToursRepo, error) {
	collection := db.Collection("tours")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "slug", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratings_average", Value: -1}},
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to create tours indexes: %w", err)
	}

	return &ToursRepo{collection: collection, users: db.Collection("users")}, nil
}

// Create inserts a new tour.
func (r *ToursRepo) Create(ctx context.Context, tour *tours.Tour) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, tour)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tours.ErrDuplicateName
		}
		return err
	}
	return nil
}

// List retrieves tours shaped by the query expression. Secret tours are
// excluded regardless of what the caller filtered on.
func (r *ToursRepo) List(ctx context.Context, shaper *query.Shaper) ([]*tours.Tour, error) {
	if err := shaper.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, WithNonSecret(shaper.Criteria()), shaper.FindOptions())
	if err != nil {
		return nil, err
	}

	var list []*tours.Tour
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FindByID fetches a single non-secret tour, optionally resolving guide refs
// into embedded summaries.
func (r *ToursRepo) FindByID(ctx context.Context, id bson.ObjectID, populateGuides bool) (*tours.Tour, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var tour tours.Tour
	err := r.collection.FindOne(ctx, WithNonSecret(bson.M{"_id": id})).Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tours.ErrTourNotFound
		}
		return nil, err
	}

	if populateGuides && len(tour.Guides) > 0 {
		if err := r.populateGuides(ctx, &tour); err != nil {
			return nil, err
		}
	}
	return &tour, nil
}

// guideDoc is the projection of a user document embedded into a tour response.
type guideDoc struct {
	ID    bson.ObjectID `bson:"_id"`
	Name  string        `bson:"name"`
	Photo string        `bson:"photo"`
	Role  auth.Role     `bson:"role"`
}

func (g guideDoc) ref() tours.GuideRef {
	return tours.GuideRef{
		ID:    g.ID,
		Name:  g.Name,
		Photo: g.Photo,
		Role:  g.Role,
	}
}

func (r *ToursRepo) populateGuides(ctx context.Context, tour *tours.Tour) error {
	cursor, err := r.users.Find(ctx, WithActiveOnly(bson.M{"_id": bson.M{"$in": tour.Guides}}))
	if err != nil {
		return err
	}

	var guides []guideDoc
	if err := cursor.All(ctx, &guides); err != nil {
		return err
	}

	tour.GuideDetails = make([]tours.GuideRef, 0, len(guides))
	for _, g := range guides {
		tour.GuideDetails = append(tour.GuideDetails, g.ref())
	}
	return nil
}

// Update applies a partial patch and returns the new state.
func (r *ToursRepo) Update(ctx context.Context, id bson.ObjectID, patch tours.UpdateTour) (*tours.Tour, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Slug != nil {
		set["slug"] = *patch.Slug
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.MaxGroupSize != nil {
		set["max_group_size"] = *patch.MaxGroupSize
	}
	if patch.Difficulty != nil {
		set["difficulty"] = *patch.Difficulty
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.PriceDiscount != nil {
		set["price_discount"] = *patch.PriceDiscount
	}
	if patch.Summary != nil {
		set["summary"] = *patch.Summary
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.ImageCover != nil {
		set["image_cover"] = *patch.ImageCover
	}
	if patch.Images != nil {
		set["images"] = *patch.Images
	}
	if patch.StartDates != nil {
		set["start_dates"] = *patch.StartDates
	}
	if patch.StartLocation != nil {
		set["start_location"] = *patch.StartLocation
	}
	if patch.Locations != nil {
		set["locations"] = *patch.Locations
	}
	if patch.GuideIDs != nil {
		set["guides"] = *patch.GuideIDs
	}
	if patch.Secret != nil {
		set["secret"] = *patch.Secret
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated tours.Tour
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, tours.ErrDuplicateName
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tours.ErrTourNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes a tour.
func (r *ToursRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return tours.ErrTourNotFound
	}
	return nil
}

// Stats aggregates per-difficulty figures over sufficiently rated tours.
// Secret tours never count.
func (r *ToursRepo) Stats(ctx context.Context) ([]tours.DifficultyStats, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	pipeline := NonSecretPipeline(
		bson.D{{Key: "$match", Value: bson.M{"ratings_average": bson.M{"$gte": 4.5}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":         "$difficulty",
			"num_tours":   bson.M{"$sum": 1},
			"num_ratings": bson.M{"$sum": "$ratings_quantity"},
			"avg_rating":  bson.M{"$avg": "$ratings_average"},
			"avg_price":   bson.M{"$avg": "$price"},
			"min_price":   bson.M{"$min": "$price"},
			"max_price":   bson.M{"$max": "$price"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"avg_price": 1}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var stats []tours.DifficultyStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// SetRatingStats writes the denormalized review aggregates onto a tour.
func (r *ToursRepo) SetRatingStats(ctx context.Context, id bson.ObjectID, quantity int64, average float64) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"ratings_quantity": quantity,
			"ratings_average":  average,
		},
	})
	return err
}

var _ tours.Repository = (*ToursRepo)(nil)
