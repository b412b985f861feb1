// Package httperr defines the error envelope every failing response uses:
// status "fail" for 4xx, "error" for 5xx, plus a human-readable message.
package httperr

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// E represents an HTTP error with status code and message
type E struct {
	Code        int    `json:"-" example:"400"`
	Status      string `json:"status" example:"fail"`
	Message     string `json:"message" example:"Bad Request"`
	Operational bool   `json:"-"`
}

// Error implements the error interface
func (e E) Error() string {
	return e.Message
}

// JSON returns the error as JSON response
func (e E) JSON(c *fiber.Ctx) error {
	if e.Status == "" {
		e.Status = statusWord(e.Code)
	}
	return c.Status(e.Code).JSON(e)
}

func statusWord(code int) string {
	if code >= 500 {
		return "error"
	}
	return "fail"
}

// New builds an operational error: one whose message is safe to show the
// client even in production.
func New(code int, message string) E {
	return E{Code: code, Status: statusWord(code), Message: message, Operational: true}
}

// Fail returns the error for Fiber's global error handler to process
func Fail(err E) error {
	return err
}

// InvalidInput wraps a validation error and returns the standard response.
func InvalidInput(err error) error {
	return Fail(New(fiber.StatusBadRequest, "Invalid input: "+err.Error()))
}

// Pre-defined HTTP errors
var (
	ErrBadRequest      = New(400, "Bad Request")
	ErrInvalidID       = New(400, "Invalid ID")
	ErrUnauthorized    = New(401, "You are not logged in. Please log in to get access")
	ErrForbidden       = New(403, "You do not have permission to perform this action")
	ErrTooManyRequests = New(429, "Too many requests, please try again later")
	ErrInternal        = E{Code: 500, Status: "error", Message: "Something went wrong!"}
)

// NewHandler builds the global Fiber error handler. In development every
// error renders its real message; in production only operational errors do,
// everything else is logged and masked behind a generic 500.
func NewHandler(development bool, log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e E
		if errors.As(err, &e) {
			if development || e.Operational {
				return e.JSON(c)
			}
			log.Error("unexpected error", "path", c.Path(), "error", err)
			return ErrInternal.JSON(c)
		}

		var fiberError *fiber.Error
		if errors.As(err, &fiberError) {
			return New(fiberError.Code, fiberError.Message).JSON(c)
		}

		if development {
			return E{Code: 500, Status: "error", Message: err.Error()}.JSON(c)
		}
		log.Error("unexpected error", "path", c.Path(), "error", err)
		return ErrInternal.JSON(c)
	}
}
