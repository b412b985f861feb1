package auth

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrDuplicate is returned when trying to create a user with an email that already exists
var ErrDuplicate = errors.New("user with this email already exists")

// UsersRepo defines the persistence operations the auth flows need. All
// lookups exclude soft-deleted users.
type UsersRepo interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	FindByResetHash(ctx context.Context, hash string) (*User, error)
	SetResetToken(ctx context.Context, id bson.ObjectID, hash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id bson.ObjectID) error
	UpdatePassword(ctx context.Context, id bson.ObjectID, passwordHash string, changedAt time.Time) error
	// ResetPassword sets the new credential and clears the reset fields in a
	// single document write.
	ResetPassword(ctx context.Context, id bson.ObjectID, passwordHash string, changedAt time.Time) error
}

// Mailer delivers the password-reset link. Implemented by internal/mailer.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}
