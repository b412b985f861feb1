package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trailhead/internal/query"
	"trailhead/internal/services/reviews"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ReviewsRepo implements reviews.Repository for MongoDB.
type ReviewsRepo struct {
	collection *mongo.Collection
	users      *mongo.Collection
}

// NewReviewsRepo creates a new reviews repository
func NewReviewsRepo(parentCtx context.Context, db *mongo.Database) (*ReviewsRepo, error) {
	collection := db.Collection("reviews")

	// One review per user per tour.
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "tour_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to create reviews compound index: %w", err)
	}

	return &ReviewsRepo{collection: collection, users: db.Collection("users")}, nil
}

// Create inserts a new review.
func (r *ReviewsRepo) Create(ctx context.Context, review *reviews.Review) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reviews.ErrAlreadyReviewed
		}
		return err
	}
	return nil
}

// List retrieves reviews shaped by the query expression.
func (r *ReviewsRepo) List(ctx context.Context, shaper *query.Shaper) ([]*reviews.Review, error) {
	if err := shaper.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, shaper.Criteria(), shaper.FindOptions())
	if err != nil {
		return nil, err
	}

	var list []*reviews.Review
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FindByID fetches a single review.
func (r *ReviewsRepo) FindByID(ctx context.Context, id bson.ObjectID) (*reviews.Review, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var review reviews.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reviews.ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// Update applies a partial patch and returns the new state.
func (r *ReviewsRepo) Update(ctx context.Context, id bson.ObjectID, patch reviews.UpdateReview) (*reviews.Review, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.Text != nil {
		set["review"] = *patch.Text
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated reviews.Review
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reviews.ErrReviewNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes a review.
func (r *ReviewsRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return reviews.ErrReviewNotFound
	}
	return nil
}

// RatingStats aggregates count and average rating across one tour's reviews.
func (r *ReviewsRepo) RatingStats(ctx context.Context, tourID bson.ObjectID) (int64, float64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"tour_id": tourID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":        "$tour_id",
			"num_rating": bson.M{"$sum": 1},
			"avg_rating": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}

	var out []struct {
		NumRating int64   `bson:"num_rating"`
		AvgRating float64 `bson:"avg_rating"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, 0, err
	}
	if len(out) == 0 {
		return 0, 0, nil
	}
	return out[0].NumRating, out[0].AvgRating, nil
}

// PopulateAuthors resolves the user reference on each review into a name and
// photo snapshot. Missing users (deactivated accounts) leave Author nil.
func (r *ReviewsRepo) PopulateAuthors(ctx context.Context, list []*reviews.Review) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]bson.ObjectID, 0, len(list))
	seen := make(map[bson.ObjectID]struct{}, len(list))
	for _, rev := range list {
		if _, ok := seen[rev.UserID]; ok {
			continue
		}
		seen[rev.UserID] = struct{}{}
		ids = append(ids, rev.UserID)
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.users.Find(ctx, WithActiveOnly(bson.M{"_id": bson.M{"$in": ids}}))
	if err != nil {
		return err
	}

	var authors []struct {
		ID    bson.ObjectID `bson:"_id"`
		Name  string        `bson:"name"`
		Photo string        `bson:"photo"`
	}
	if err := cursor.All(ctx, &authors); err != nil {
		return err
	}

	byID := make(map[bson.ObjectID]*reviews.Author, len(authors))
	for _, a := range authors {
		byID[a.ID] = &reviews.Author{Name: a.Name, Photo: a.Photo}
	}

	for _, rev := range list {
		rev.Author = byID[rev.UserID]
	}
	return nil
}

var _ reviews.Repository = (*ReviewsRepo)(nil)
