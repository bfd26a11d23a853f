package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"intake-app/apperror"
	"intake-app/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/whoami", AuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendString(Actor(c))
	})
	app.Get("/fail/:kind", func(c *fiber.Ctx) error {
		switch c.Params("kind") {
		case "validation":
			return apperror.Validation("lines", "batch must not be empty")
		case "inconsistency":
			return apperror.Inconsistency("rejected_weight", "accepted + rejected exceeds net")
		case "unavailable":
			return apperror.Unavailable("quality check unavailable", nil)
		case "notfound":
			return apperror.NotFound("id", "shipment not found")
		}
		return fiber.ErrTeapot
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	config.AuthEnabled = true
	config.JWTSecret = "test-secret"
	t.Cleanup(func() { config.AuthEnabled = false })

	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, err := IssueToken(7, "grader.jane", "test-secret", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	bad, err := IssueToken(7, "grader.jane", "other-secret", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	config.AuthEnabled = false
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestErrorHandler_StatusByKind(t *testing.T) {
	app := newTestApp()
	cases := map[string]int{
		"validation":    fiber.StatusBadRequest,
		"inconsistency": fiber.StatusUnprocessableEntity,
		"unavailable":   fiber.StatusServiceUnavailable,
		"notfound":      fiber.StatusNotFound,
		"other":         fiber.StatusTeapot,
	}
	for kind, want := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", "/fail/"+kind, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, kind)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/fail/unavailable", nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["retryable"])

	resp, err = app.Test(httptest.NewRequest("GET", "/fail/validation", nil))
	require.NoError(t, err)
	body = map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "lines", body["field"])
}
