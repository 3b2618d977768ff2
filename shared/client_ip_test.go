package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveClientIP(t *testing.T, headers map[string]string) string {
	t.Helper()

	var got string
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = ClientIP(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	return got
}

func TestClientIP_PrefersFirstForwardedHop(t *testing.T) {
	got := resolveClientIP(t, map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1, 10.0.0.2",
		"X-Real-IP":       "198.51.100.1",
	})
	assert.Equal(t, "203.0.113.7", got)
}

func TestClientIP_TrimsForwardedWhitespace(t *testing.T) {
	got := resolveClientIP(t, map[string]string{
		"X-Forwarded-For": "  203.0.113.7  ",
	})
	assert.Equal(t, "203.0.113.7", got)
}

func TestClientIP_FallsBackToRealIP(t *testing.T) {
	got := resolveClientIP(t, map[string]string{
		"X-Real-IP": "198.51.100.1",
	})
	assert.Equal(t, "198.51.100.1", got)
}

func TestClientIP_FallsBackToRemoteAddr(t *testing.T) {
	got := resolveClientIP(t, nil)
	assert.NotEmpty(t, got)
}
