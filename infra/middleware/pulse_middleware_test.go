package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse_server/pkg/apperr"
	"pulse_server/pkg/logger"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(RequestID(), RequestLogger(), Recover())
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp()
	app.Get("/app", func(c *fiber.Ctx) error {
		return apperr.Unavailable(fiber.StatusServiceUnavailable, errors.New("dial tcp: refused"))
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "nope")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("secret internals")
	})

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/app", fiber.StatusServiceUnavailable, apperr.CodeUnavailable},
		{"/fiber", fiber.StatusNotFound, apperr.CodeNotFound},
		{"/plain", fiber.StatusInternalServerError, apperr.CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.NotContains(t, body["error"], "refused")
			assert.NotContains(t, body["error"], "secret")
		})
	}
}

func TestRequestID(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error {
		fromCtx, _ := c.UserContext().Value(logger.RequestIDKey).(string)
		return c.SendString(RequestIDFrom(c) + "|" + fromCtx)
	})

	t.Run("generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		id := resp.Header.Get(HeaderRequestID)
		assert.Len(t, id, 36)

		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, id+"|"+id, string(raw))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
	})
}

func TestRecover(t *testing.T) {
	app := newTestApp()
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, apperr.CodeInternalError, decodeBody(t, resp)["code"])
}

func TestSecurityHeaders(t *testing.T) {
	app := newTestApp()
	app.Use(SecurityHeaders())
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
}
