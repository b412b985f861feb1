// Package users covers profile self-service and the admin-only user
// management operations. Authentication itself lives in services/auth.
package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"trailhead/internal/query"
	"trailhead/internal/services/auth"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrUserNotFound - no active user with that id.
var ErrUserNotFound = auth.ErrUserNotFound

// ErrPasswordField - password changes must go through the dedicated
// update-password endpoint.
var ErrPasswordField = errors.New("this route is not for password updates, use /users/update-password")

// Repo defines the persistence operations for user management.
type Repo interface {
	List(ctx context.Context, shaper *query.Shaper) ([]*auth.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*auth.User, error)
	UpdateProfile(ctx context.Context, id bson.ObjectID, patch ProfilePatch) (*auth.User, error)
	Deactivate(ctx context.Context, id bson.ObjectID) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

// ProfilePatch is the restricted field set a user may change about
// themselves. Admin updates reuse it plus the role.
type ProfilePatch struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Photo *string `json:"photo,omitempty"`
	Role  *auth.Role
}

// UpdateMeRequest is the self-service payload. The password fields exist only
// so their presence can be rejected explicitly.
type UpdateMeRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Photo           *string `json:"photo,omitempty"`
	Password        string  `json:"password,omitempty"`
	PasswordConfirm string  `json:"passwordConfirm,omitempty"`
}

// AdminUpdateRequest is the admin payload for PATCH /users/:id.
type AdminUpdateRequest struct {
	Name  *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	Email *string    `json:"email,omitempty" validate:"omitempty,email"`
	Photo *string    `json:"photo,omitempty"`
	Role  *auth.Role `json:"role,omitempty"`
}

// FilterFields is the query-shaper allow-list for the users collection.
var FilterFields = map[string]query.Kind{
	"name":  query.String,
	"email": query.String,
	"role":  query.String,
}

// Service handles user management business logic.
type Service struct {
	repo Repo
	log  *slog.Logger
}

// NewService creates a new users service
func NewService(repo Repo, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns users shaped by the request's query parameters. Soft-deleted
// users never appear.
func (s *Service) List(ctx context.Context, params map[string]string) ([]*auth.User, error) {
	shaper := query.NewShaper(FilterFields).Apply(params)
	return s.repo.List(ctx, shaper)
}

// Get returns a single active user.
func (s *Service) Get(ctx context.Context, id bson.ObjectID) (*auth.User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateMe applies the restricted self-service patch.
func (s *Service) UpdateMe(ctx context.Context, userID bson.ObjectID, req UpdateMeRequest) (*auth.User, error) {
	if req.Password != "" || req.PasswordConfirm != "" {
		return nil, ErrPasswordField
	}

	patch := ProfilePatch{
		Name:  trimmed(req.Name),
		Email: lowered(req.Email),
		Photo: req.Photo,
	}
	return s.repo.UpdateProfile(ctx, userID, patch)
}

// DeleteMe soft deletes: the record stays, flagged inactive, and vanishes
// from every query path.
func (s *Service) DeleteMe(ctx context.Context, userID bson.ObjectID) error {
	return s.repo.Deactivate(ctx, userID)
}

// AdminUpdate lets an admin patch any user, including the role.
func (s *Service) AdminUpdate(ctx context.Context, id bson.ObjectID, req AdminUpdateRequest) (*auth.User, error) {
	if req.Role != nil && !req.Role.Valid() {
		return nil, errors.New("invalid role")
	}
	patch := ProfilePatch{
		Name:  trimmed(req.Name),
		Email: lowered(req.Email),
		Photo: req.Photo,
		Role:  req.Role,
	}
	return s.repo.UpdateProfile(ctx, id, patch)
}

// AdminDelete removes the record for good.
func (s *Service) AdminDelete(ctx context.Context, id bson.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func lowered(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.ToLower(strings.TrimSpace(*v))
	return &t
}
