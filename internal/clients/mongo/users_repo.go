package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trailhead/internal/query"
	"trailhead/internal/services/auth"
	"trailhead/internal/services/users"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersRepo implements auth.UsersRepo and users.Repo for MongoDB.
type UsersRepo struct {
	collection *mongo.Collection
}

// NewUsersRepo creates a new users repository
func NewUsersRepo(parentCtx context.Context, db *mongo.Database) (*UsersRepo, error) {
	collection := db.Collection("users")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to create users email index: %w", err)
	}

	return &UsersRepo{collection: collection}, nil
}

func userNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return auth.ErrUserNotFound
	}
	return err
}

// Create inserts a new user.
func (r *UsersRepo) Create(ctx context.Context, user *auth.User) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByEmail finds an active user by email address.
func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var user auth.User
	err := r.collection.FindOne(ctx, WithActiveOnly(bson.M{"email": email})).Decode(&user)
	if err != nil {
		return nil, userNotFound(err)
	}
	return &user, nil
}

// FindByID finds an active user by id.
func (r *UsersRepo) FindByID(ctx context.Context, id bson.ObjectID) (*auth.User, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var user auth.User
	err := r.collection.FindOne(ctx, WithActiveOnly(bson.M{"_id": id})).Decode(&user)
	if err != nil {
		return nil, userNotFound(err)
	}
	return &user, nil
}

// FindByResetHash locates the user owning a reset-token hash. Expiry is the
// service's call, so the lookup is by hash alone.
func (r *UsersRepo) FindByResetHash(ctx context.Context, hash string) (*auth.User, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var user auth.User
	err := r.collection.FindOne(ctx, WithActiveOnly(bson.M{"password_reset_hash": hash})).Decode(&user)
	if err != nil {
		return nil, userNotFound(err)
	}
	return &user, nil
}

// SetResetToken stores the reset-token hash and its expiry.
func (r *UsersRepo) SetResetToken(ctx context.Context, id bson.ObjectID, hash string, expires time.Time) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password_reset_hash":    hash,
			"password_reset_expires": expires,
			"updated_at":             time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// ClearResetToken rolls back a pending reset.
func (r *UsersRepo) ClearResetToken(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{
			"password_reset_hash":    "",
			"password_reset_expires": "",
		},
	})
	return err
}

// UpdatePassword stores a new credential and its rotation timestamp.
func (r *UsersRepo) UpdatePassword(ctx context.Context, id bson.ObjectID, passwordHash string, changedAt time.Time) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password_hash":       passwordHash,
			"password_changed_at": changedAt,
			"updated_at":          time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// ResetPassword stores the new credential and clears the reset fields in one
// document write, making the reset token single-use.
func (r *UsersRepo) ResetPassword(ctx context.Context, id bson.ObjectID, passwordHash string, changedAt time.Time) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password_hash":       passwordHash,
			"password_changed_at": changedAt,
			"updated_at":          time.Now().UTC(),
		},
		"$unset": bson.M{
			"password_reset_hash":    "",
			"password_reset_expires": "",
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// List retrieves active users shaped by the query expression. The shaper's
// expression is executed exactly once, here.
func (r *UsersRepo) List(ctx context.Context, shaper *query.Shaper) ([]*auth.User, error) {
	if err := shaper.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, WithActiveOnly(shaper.Criteria()), shaper.FindOptions())
	if err != nil {
		return nil, err
	}

	var list []*auth.User
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateProfile applies a partial profile update and returns the new state.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id bson.ObjectID, patch users.ProfilePatch) (*auth.User, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Photo != nil {
		set["photo"] = *patch.Photo
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated auth.User
	err := r.collection.FindOneAndUpdate(ctx, WithActiveOnly(bson.M{"_id": id}), bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, auth.ErrDuplicate
		}
		return nil, userNotFound(err)
	}
	return &updated, nil
}

// Deactivate soft deletes: the record stays but leaves every scoped query.
func (r *UsersRepo) Deactivate(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"active":     false,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// Delete removes a user record for good (admin path).
func (r *UsersRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

var _ auth.UsersRepo = (*UsersRepo)(nil)
var _ users.Repo = (*UsersRepo)(nil)
