package handlerutil

import (
	"errors"

	"trailhead/cmd/server/handlers/httperr"
	"trailhead/internal/logger"
	"trailhead/internal/services/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func NotFoundError(err error) error {
	return httperr.Fail(httperr.New(fiber.StatusNotFound, err.Error()))
}

// CurrentUser returns the authenticated user stashed by the guard middleware.
func CurrentUser(c *fiber.Ctx) (*auth.User, error) {
	user, ok := c.Locals("currentUser").(*auth.User)
	if !ok || user == nil {
		logger.L().Error("current user not found in context", "path", c.Path())
		return nil, httperr.Fail(httperr.ErrUnauthorized)
	}
	return user, nil
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ExtractObjectID extracts and validates an ObjectID from a URL parameter.
func ExtractObjectID(c *fiber.Ctx, param string, handlerName string, notFoundErr error) (bson.ObjectID, error) {
	raw := c.Params(param)
	if raw == "" {
		logger.L().Warn("missing id parameter", "handler", handlerName, "param", param, "path", c.Path())
		return bson.ObjectID{}, NotFoundError(notFoundErr)
	}

	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		logger.L().Warn("invalid id parameter", "handler", handlerName, "param", param, "raw", raw, "error", err)
		return bson.ObjectID{}, NotFoundError(notFoundErr)
	}

	return id, nil
}

// QueryParams flattens the request's query string into the map the query
// shaper consumes. Repeated keys keep the last value.
func QueryParams(c *fiber.Ctx) map[string]string {
	params := make(map[string]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})
	return params
}

// HandleServiceError maps a service sentinel onto its HTTP status; anything
// unmapped is logged and becomes a masked 500 via the global handler.
func HandleServiceError(err error, handlerName string, mapping map[error]int) error {
	for sentinel, code := range mapping {
		if errors.Is(err, sentinel) {
			logger.L().Info("request rejected", "handler", handlerName, "error", err)
			return httperr.Fail(httperr.New(code, sentinel.Error()))
		}
	}

	logger.L().Error("service operation failed", "handler", handlerName, "error", err)
	return err
}
