package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the closed set of authorization roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the system. The password hash and the reset
// token fields never serialize outward; the active flag only matters to the
// query scopes.
type User struct {
	ID                   bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	Name                 string        `bson:"name" json:"name" example:"Ann Trekker"`
	Email                string        `bson:"email" json:"email" example:"ann@example.com"`
	Photo                string        `bson:"photo,omitempty" json:"photo,omitempty"`
	Role                 Role          `bson:"role" json:"role" example:"user"`
	PasswordHash         string        `bson:"password_hash" json:"-"`
	PasswordChangedAt    time.Time     `bson:"password_changed_at,omitempty" json:"-"`
	PasswordResetHash    string        `bson:"password_reset_hash,omitempty" json:"-"`
	PasswordResetExpires time.Time     `bson:"password_reset_expires,omitempty" json:"-"`
	Active               bool          `bson:"active" json:"-"`
	CreatedAt            time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `bson:"updated_at" json:"updated_at"`
}

// MarkPasswordChanged stamps the credential rotation one second in the past
// so a token issued in the same instant (the auto-login after a reset) is not
// rejected as stale while the write is still in flight.
func (u *User) MarkPasswordChanged(now time.Time) {
	u.PasswordChangedAt = now.Add(-time.Second)
}

// PasswordChangedAfter reports whether the password was rotated after the
// given token-issuance time. Comparison is at second precision, the
// resolution of JWT iat claims.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}
