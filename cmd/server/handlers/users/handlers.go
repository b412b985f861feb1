package users

import (
	"context"
	"errors"

	"trailhead/cmd/server/handlers/handlerutil"
	"trailhead/cmd/server/handlers/httperr"
	"trailhead/internal/logger"
	"trailhead/internal/query"
	"trailhead/internal/services/auth"
	"trailhead/internal/services/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UsersService defines the interface for the users service
type UsersService interface {
	List(ctx context.Context, params map[string]string) ([]*auth.User, error)
	Get(ctx context.Context, id bson.ObjectID) (*auth.User, error)
	UpdateMe(ctx context.Context, userID bson.ObjectID, req users.UpdateMeRequest) (*auth.User, error)
	DeleteMe(ctx context.Context, userID bson.ObjectID) error
	AdminUpdate(ctx context.Context, id bson.ObjectID, req users.AdminUpdateRequest) (*auth.User, error)
	AdminDelete(ctx context.Context, id bson.ObjectID) error
}

// Handlers contains the users HTTP handlers
type Handlers struct {
	usersService UsersService
	validator    *validator.Validate
}

// NewHandlers creates new users handlers
func NewHandlers(usersService UsersService, validator *validator.Validate) *Handlers {
	return &Handlers{
		usersService: usersService,
		validator:    validator,
	}
}

// Me returns the authenticated user's own profile
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} handlerutil.Envelope
// @Failure 401 {object} httperr.E
// @Security BearerAuth
// @Router /users/me [get]
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := handlerutil.CurrentUser(c)
	if err != nil {
		return err
	}
	return handlerutil.OK(c, "user", user)
}

// UpdateMe applies the restricted self-service profile patch
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body users.UpdateMeRequest true "Profile patch"
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Security BearerAuth
// @Router /users/update-me [patch]
func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	user, err := handlerutil.CurrentUser(c)
	if err != nil {
		return err
	}

	var req users.UpdateMeRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateMe"); err != nil {
		return err
	}

	updated, err := h.usersService.UpdateMe(c.Context(), user.ID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "UpdateMe", map[error]int{
			users.ErrPasswordField: fiber.StatusBadRequest,
			users.ErrUserNotFound:  fiber.StatusNotFound,
			auth.ErrDuplicate:      fiber.StatusConflict,
		})
	}
	return handlerutil.OK(c, "user", updated)
}

// DeleteMe deactivates the authenticated user's account
// @Summary Deactivate the current user
// @Tags users
// @Success 204
// @Failure 401 {object} httperr.E
// @Security BearerAuth
// @Router /users/delete-me [delete]
func (h *Handlers) DeleteMe(c *fiber.Ctx) error {
	user, err := handlerutil.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := h.usersService.DeleteMe(c.Context(), user.ID); err != nil {
		logger.L().Error("delete-me service failed", "handler", "DeleteMe", "error", err)
		return err
	}
	return handlerutil.NoContent(c)
}

// List returns all active users (admin only)
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Security BearerAuth
// @Router /users [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.usersService.List(c.Context(), handlerutil.QueryParams(c))
	if err != nil {
		if query.IsShapeError(err) {
			return httperr.InvalidInput(err)
		}
		logger.L().Error("list users service failed", "handler", "List", "error", err)
		return err
	}
	return handlerutil.List(c, "users", list)
}

// Get returns a single user (admin only)
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} handlerutil.Envelope
// @Failure 404 {object} httperr.E
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := handlerutil.ExtractObjectID(c, "id", "GetUser", users.ErrUserNotFound)
	if err != nil {
		return err
	}

	user, err := h.usersService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return handlerutil.NotFoundError(users.ErrUserNotFound)
		}
		logger.L().Error("get user service failed", "handler", "GetUser", "error", err)
		return err
	}
	return handlerutil.OK(c, "user", user)
}

// Update patches any user, including the role (admin only)
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body users.AdminUpdateRequest true "User patch"
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Security BearerAuth
// @Router /users/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := handlerutil.ExtractObjectID(c, "id", "UpdateUser", users.ErrUserNotFound)
	if err != nil {
		return err
	}

	var req users.AdminUpdateRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateUser"); err != nil {
		return err
	}

	updated, err := h.usersService.AdminUpdate(c.Context(), id, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "UpdateUser", map[error]int{
			users.ErrUserNotFound: fiber.StatusNotFound,
			auth.ErrDuplicate:     fiber.StatusConflict,
		})
	}
	return handlerutil.OK(c, "user", updated)
}

// Delete removes a user for good (admin only)
// @Summary Delete a user
// @Tags users
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} httperr.E
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.ExtractObjectID(c, "id", "DeleteUser", users.ErrUserNotFound)
	if err != nil {
		return err
	}

	if err := h.usersService.AdminDelete(c.Context(), id); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return handlerutil.NotFoundError(users.ErrUserNotFound)
		}
		logger.L().Error("delete user service failed", "handler", "DeleteUser", "error", err)
		return err
	}
	return handlerutil.NoContent(c)
}
