package httperr

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func runHandler(t *testing.T, development bool, err error) (int, envelope) {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: NewHandler(development, silentLogger),
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return err
	})

	resp, reqErr := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, reqErr)
	defer resp.Body.Close()

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestStatusWord(t *testing.T) {
	assert.Equal(t, "fail", statusWord(400))
	assert.Equal(t, "fail", statusWord(404))
	assert.Equal(t, "error", statusWord(500))
	assert.Equal(t, "error", statusWord(503))
}

func TestHandler_OperationalError(t *testing.T) {
	for _, dev := range []bool{true, false} {
		code, body := runHandler(t, dev, Fail(New(404, "tour not found")))
		assert.Equal(t, 404, code)
		assert.Equal(t, "fail", body.Status)
		assert.Equal(t, "tour not found", body.Message)
	}
}

func TestHandler_UnexpectedError(t *testing.T) {
	t.Run("production masks the message", func(t *testing.T) {
		code, body := runHandler(t, false, errors.New("pq: connection refused"))
		assert.Equal(t, 500, code)
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, "Something went wrong!", body.Message)
	})

	t.Run("development shows the message", func(t *testing.T) {
		code, body := runHandler(t, true, errors.New("pq: connection refused"))
		assert.Equal(t, 500, code)
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, "pq: connection refused", body.Message)
	})
}

func TestHandler_NonOperationalE(t *testing.T) {
	nonOp := E{Code: 500, Status: "error", Message: "driver internals leaked"}

	t.Run("production masks it", func(t *testing.T) {
		code, body := runHandler(t, false, Fail(nonOp))
		assert.Equal(t, 500, code)
		assert.Equal(t, "Something went wrong!", body.Message)
	})

	t.Run("development renders it", func(t *testing.T) {
		code, body := runHandler(t, true, Fail(nonOp))
		assert.Equal(t, 500, code)
		assert.Equal(t, "driver internals leaked", body.Message)
	})
}

func TestHandler_FiberError(t *testing.T) {
	code, body := runHandler(t, false, fiber.ErrMethodNotAllowed)
	assert.Equal(t, 405, code)
	assert.Equal(t, "fail", body.Status)
	assert.Equal(t, "Method Not Allowed", body.Message)
}

func TestInvalidInput(t *testing.T) {
	code, body := runHandler(t, false, InvalidInput(errors.New("name is required")))
	assert.Equal(t, 400, code)
	assert.Equal(t, "fail", body.Status)
	assert.Contains(t, body.Message, "name is required")
}
