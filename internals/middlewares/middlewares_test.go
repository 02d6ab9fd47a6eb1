package middlewares

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis_backend/internals/middlewares/logger"
)

func TestRecoveryAndRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RecoveryMiddleware())
	app.Use(logger.RequestID(time.Second))
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestLoginRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimiter(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	var last int
	for i := 0; i < 6; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
		require.NoError(t, err)
		last = resp.StatusCode
	}
	assert.Equal(t, fiber.StatusTooManyRequests, last)
}

func TestCorsUsesConfiguredOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://thesis.example.edu")
	app := fiber.New()
	app.Use(CorsMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://thesis.example.edu")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "https://thesis.example.edu", resp.Header.Get("Access-Control-Allow-Origin"))
}
