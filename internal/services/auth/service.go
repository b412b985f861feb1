package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"trailhead/internal/config"
	"trailhead/internal/utils/crypto"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles the credential lifecycle: signup, login, password change
// and the reset flow (reset.go).
type Service struct {
	repo   UsersRepo
	tokens TokenService
	mail   Mailer
	config config.Config
	log    *slog.Logger
}

// NewService creates a new auth service
func NewService(repo UsersRepo, tokens TokenService, mail Mailer, cfg config.Config, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		mail:   mail,
		config: cfg,
		log:    log,
	}
}

// SignUpRequest represents a user registration request
type SignUpRequest struct {
	Name            string `json:"name" validate:"required,min=1" example:"Ann Trekker"`
	Email           string `json:"email" validate:"required,email" example:"ann@example.com"`
	Password        string `json:"password" validate:"required,min=8" example:"secret123"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password" example:"secret123"`
}

// LogInRequest represents a user login request
type LogInRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ann@example.com"`
	Password string `json:"password" validate:"required" example:"secret123"`
}

// UpdatePasswordRequest changes the password of an authenticated user.
type UpdatePasswordRequest struct {
	OldPassword        string `json:"oldPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=8"`
	NewPasswordConfirm string `json:"newPasswordConfirm" validate:"required,eqfield=NewPassword"`
}

// AuthResponse carries a fresh token and, where relevant, the user.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// SignUp registers a new user. The password is hashed at creation and the
// confirmation field never leaves the request.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	hash, err := crypto.HashPassword(req.Password, s.config.BcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return nil, errors.New("failed to process password")
	}

	now := time.Now()
	user := &User{
		ID:           bson.NewObjectID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Role:         RoleUser,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		s.log.Error("failed to create user", "error", err)
		return nil, errors.New("failed to create user")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// LogIn authenticates by email and password.
func (s *Service) LogIn(ctx context.Context, req LogInRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.log.Info("login for unknown email", "email", email)
		return nil, ErrUserNotFound
	}

	if err := crypto.CheckPassword(req.Password, user.PasswordHash); err != nil {
		return nil, ErrIncorrectPassword
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token}, nil
}

// UpdatePassword rotates the credential of a logged-in user, invalidating all
// previously issued tokens, and hands back a fresh one.
func (s *Service) UpdatePassword(ctx context.Context, userID bson.ObjectID, req UpdatePasswordRequest) (*AuthResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if err := crypto.CheckPassword(req.OldPassword, user.PasswordHash); err != nil {
		return nil, ErrIncorrectPassword
	}

	hash, err := crypto.HashPassword(req.NewPassword, s.config.BcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return nil, errors.New("failed to process password")
	}

	user.MarkPasswordChanged(time.Now())
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, user.PasswordChangedAt); err != nil {
		s.log.Error("failed to persist password change", "error", err, "user_id", user.ID.Hex())
		return nil, errors.New("failed to update password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
