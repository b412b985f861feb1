package auth

import (
	"fmt"
	"time"

	"trailhead/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// TokenService issues and verifies the stateless bearer tokens. It is a pure
// function of the signing secret and expiry window; no I/O.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// Claims is what a verified token asserts.
type Claims struct {
	UserID   bson.ObjectID
	IssuedAt time.Time
}

// NewTokenService builds a token service from explicit configuration.
func NewTokenService(cfg config.Config) TokenService {
	return TokenService{
		secret: []byte(cfg.JWTSecret),
		ttl:    time.Duration(cfg.JWTExpiryMinutes) * time.Minute,
	}
}

// Issue signs a token carrying the user id and issuance time.
func (t TokenService) Issue(userID bson.ObjectID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", ErrGenToken
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Any failure collapses to ErrInvalidToken.
func (t TokenService) Verify(raw string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	reg, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || reg.Subject == "" || reg.IssuedAt == nil {
		return Claims{}, ErrInvalidToken
	}

	userID, err := bson.ObjectIDFromHex(reg.Subject)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: userID, IssuedAt: reg.IssuedAt.Time}, nil
}
