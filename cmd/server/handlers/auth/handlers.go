package auth

import (
	"context"
	"errors"

	"trailhead/cmd/server/handlers/handlerutil"
	"trailhead/cmd/server/handlers/httperr"
	"trailhead/internal/logger"
	"trailhead/internal/services/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthService defines the interface for auth service
type AuthService interface {
	SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.AuthResponse, error)
	LogIn(ctx context.Context, req auth.LogInRequest) (*auth.AuthResponse, error)
	UpdatePassword(ctx context.Context, userID bson.ObjectID, req auth.UpdatePasswordRequest) (*auth.AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, req auth.ResetPasswordRequest) (*auth.AuthResponse, error)
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	authService AuthService
	validator   *validator.Validate
}

// NewHandlers creates new auth handlers
func NewHandlers(authService AuthService, validator *validator.Validate) *Handlers {
	return &Handlers{
		authService: authService,
		validator:   validator,
	}
}

// SignUp handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignUpRequest true "Sign up request"
// @Success 201 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /users/signup [post]
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var req auth.SignUpRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SignUp"); err != nil {
		return err
	}

	resp, err := h.authService.SignUp(c.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicate) {
			return httperr.Fail(httperr.New(fiber.StatusConflict, "email already in use"))
		}
		logger.L().Error("signup service failed", "handler", "SignUp", "email", req.Email, "error", err)
		return err
	}

	return handlerutil.Token(c, fiber.StatusCreated, resp.Token, fiber.Map{"user": resp.User})
}

// LogIn handles user authentication
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.LogInRequest true "Log in request"
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /users/login [post]
func (h *Handlers) LogIn(c *fiber.Ctx) error {
	var req auth.LogInRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "LogIn"); err != nil {
		return err
	}

	resp, err := h.authService.LogIn(c.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrIncorrectPassword) {
			logger.L().Info("login rejected", "remote", c.IP(), "error", err)
			return httperr.Fail(httperr.New(fiber.StatusUnauthorized, err.Error()))
		}
		logger.L().Error("login service failed", "handler", "LogIn", "error", err)
		return err
	}

	return handlerutil.Token(c, fiber.StatusOK, resp.Token, nil)
}

// ForgotPassword starts the password-reset flow
// @Summary Request a password-reset email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} map[string]string
// @Failure 400 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /users/forgot-password [post]
func (h *Handlers) ForgotPassword(c *fiber.Ctx) error {
	var req auth.ForgotPasswordRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "ForgotPassword"); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrSendFailed) {
			return httperr.Fail(httperr.New(fiber.StatusInternalServerError,
				"there was an error sending the email, try again later"))
		}
		logger.L().Error("forgot-password service failed", "handler", "ForgotPassword", "error", err)
		return err
	}

	// Same answer whether the email exists or not.
	return handlerutil.Message(c, "token sent to email")
}

// ResetPassword completes the password-reset flow
// @Summary Reset password using an emailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body auth.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Router /users/reset-password/{token} [patch]
func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	var req auth.ResetPasswordRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "ResetPassword"); err != nil {
		return err
	}

	resp, err := h.authService.ResetPassword(c.Context(), c.Params("token"), req)
	if err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) || errors.Is(err, auth.ErrResetTokenExpired) {
			return httperr.Fail(httperr.New(fiber.StatusBadRequest, "token is invalid or has expired"))
		}
		logger.L().Error("reset-password service failed", "handler", "ResetPassword", "error", err)
		return err
	}

	return handlerutil.Token(c, fiber.StatusOK, resp.Token, nil)
}

// UpdatePassword rotates the password of the authenticated user
// @Summary Update the current user's password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.UpdatePasswordRequest true "Update password request"
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Security BearerAuth
// @Router /users/update-password [patch]
func (h *Handlers) UpdatePassword(c *fiber.Ctx) error {
	user, err := handlerutil.CurrentUser(c)
	if err != nil {
		return err
	}

	var req auth.UpdatePasswordRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdatePassword"); err != nil {
		return err
	}

	resp, err := h.authService.UpdatePassword(c.Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, auth.ErrIncorrectPassword) {
			return httperr.Fail(httperr.New(fiber.StatusUnauthorized, err.Error()))
		}
		logger.L().Error("update-password service failed", "handler", "UpdatePassword", "error", err)
		return err
	}

	return handlerutil.Token(c, fiber.StatusOK, resp.Token, nil)
}
