package auth

import (
	"context"
	"errors"
	"time"

	"trailhead/internal/utils/crypto"
)

// ForgotPasswordRequest starts the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email" example:"ann@example.com"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// ForgotPassword generates a one-time reset token, persists only its hash
// with a short expiry, and emails the plaintext once. When sending fails the
// token fields are rolled back so a half-open flow cannot linger beyond its
// window. An unknown email is not reported to the caller.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// Same outcome as success so the endpoint cannot be used to probe
		// for accounts.
		s.log.Info("password reset requested for unknown email")
		return nil
	}

	plain, hash, err := crypto.GenerateResetToken()
	if err != nil {
		s.log.Error("failed to generate reset token", "error", err)
		return errors.New("failed to generate reset token")
	}

	expires := time.Now().Add(time.Duration(s.config.ResetTokenMinutes) * time.Minute)
	if err := s.repo.SetResetToken(ctx, user.ID, hash, expires); err != nil {
		s.log.Error("failed to persist reset token", "error", err, "user_id", user.ID.Hex())
		return errors.New("failed to persist reset token")
	}

	resetURL := s.config.PublicBaseURL + "/api/v1/users/reset-password/" + plain
	if err := s.mail.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		s.log.Error("failed to send reset email", "error", err, "user_id", user.ID.Hex())
		// The plaintext is gone, so the stored hash is useless. Clear it and
		// let the user restart the flow.
		if clearErr := s.repo.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.log.Error("failed to roll back reset token", "error", clearErr, "user_id", user.ID.Hex())
		}
		return ErrSendFailed
	}

	s.log.Info("password reset email sent", "user_id", user.ID.Hex())
	return nil
}

// ResetPassword validates a presented reset token, sets the new credential,
// clears the token fields (single use) and logs the user straight in.
func (s *Service) ResetPassword(ctx context.Context, token string, req ResetPasswordRequest) (*AuthResponse, error) {
	user, err := s.repo.FindByResetHash(ctx, crypto.HashResetToken(token))
	if err != nil {
		return nil, ErrResetTokenInvalid
	}

	if time.Now().After(user.PasswordResetExpires) {
		return nil, ErrResetTokenExpired
	}

	hash, err := crypto.HashPassword(req.Password, s.config.BcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return nil, errors.New("failed to process password")
	}

	user.MarkPasswordChanged(time.Now())
	if err := s.repo.ResetPassword(ctx, user.ID, hash, user.PasswordChangedAt); err != nil {
		s.log.Error("failed to persist password reset", "error", err, "user_id", user.ID.Hex())
		return nil, errors.New("failed to reset password")
	}

	authToken, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: authToken}, nil
}
