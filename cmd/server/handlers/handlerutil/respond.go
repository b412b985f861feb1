package handlerutil

import "github.com/gofiber/fiber/v2"

// Envelope is the success response shape. Results is set only on list
// responses, Token only on authentication responses.
type Envelope struct {
	Status  string `json:"status" example:"success"`
	Results *int   `json:"results,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK responds 200 with a keyed data payload.
func OK(c *fiber.Ctx, key string, value any) error {
	return c.JSON(Envelope{Status: "success", Data: fiber.Map{key: value}})
}

// Created responds 201 with a keyed data payload.
func Created(c *fiber.Ctx, key string, value any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Status: "success", Data: fiber.Map{key: value}})
}

// List responds 200 with a keyed list payload and its length.
func List[T any](c *fiber.Ctx, key string, items []T) error {
	n := len(items)
	return c.JSON(Envelope{Status: "success", Results: &n, Data: fiber.Map{key: items}})
}

// Token responds with a JWT, optionally alongside a keyed payload.
func Token(c *fiber.Ctx, code int, token string, data any) error {
	return c.Status(code).JSON(Envelope{Status: "success", Token: token, Data: data})
}

// Message responds 200 with a bare message instead of a data payload.
func Message(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"status": "success", "message": message})
}

// NoContent responds 204.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
