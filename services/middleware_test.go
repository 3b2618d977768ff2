package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omenmarkets/omen_api/model"
	"github.com/omenmarkets/omen_api/shared"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: (&HttpService{}).handleError,
	})
}

func TestLimitMiddleware_ThrottlesWithHeaders(t *testing.T) {
	svc := &RateLimitService{
		limiters: map[string]*FixedWindowLimiter{
			RateLimitClassAuth: newTestLimiter(time.Minute, 1),
		},
	}

	app := newTestApp()
	app.Get("/login", svc.Limit(RateLimitClassAuth), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// A different identity is unaffected.
	other := httptest.NewRequest("GET", "/login", nil)
	other.Header.Set("X-Forwarded-For", "198.51.100.1")

	resp, err = app.Test(other)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLimitMiddleware_UnknownClassAllowsTraffic(t *testing.T) {
	svc := &RateLimitService{limiters: map[string]*FixedWindowLimiter{}}

	app := newTestApp()
	app.Get("/x", svc.Limit("missing"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func sealedSessionCookie(t *testing.T, svc *SessionService, session *model.Session) string {
	t.Helper()
	sealed, err := svc.Seal(session)
	require.NoError(t, err)
	return sealed
}

func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	sessionSvc := newTestSessionService("a-session-secret-of-sufficient-length")

	app := newTestApp()
	app.Get("/me", sessionSvc.RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// A tampered cookie degrades to anonymous, same rejection.
	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: shared.SessionCookieName, Value: "garbage"})

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireCsrf_TruthTable(t *testing.T) {
	sessionSvc := newTestSessionService("a-session-secret-of-sufficient-length")

	session := &model.Session{}
	require.NoError(t, sessionSvc.Login(session, "usr_1", "trader@example.com", shared.RoleUser))
	cookie := sealedSessionCookie(t, sessionSvc, session)

	app := newTestApp()
	app.Post("/action", sessionSvc.RequireAuth(), sessionSvc.RequireCsrf(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"matching token", session.CsrfToken, fiber.StatusOK},
		{"missing token", "", fiber.StatusForbidden},
		{"wrong token", "not-the-token", fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/action", nil)
			req.AddCookie(&http.Cookie{Name: shared.SessionCookieName, Value: cookie})
			if tc.token != "" {
				req.Header.Set(shared.CSRFHeader, tc.token)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequireAdmin_RejectsNonAdmin(t *testing.T) {
	sessionSvc := newTestSessionService("a-session-secret-of-sufficient-length")

	app := newTestApp()
	app.Get("/admin", sessionSvc.RequireAuth(), sessionSvc.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	user := &model.Session{}
	require.NoError(t, sessionSvc.Login(user, "usr_1", "trader@example.com", shared.RoleUser))

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: shared.SessionCookieName, Value: sealedSessionCookie(t, sessionSvc, user)})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin := &model.Session{}
	require.NoError(t, sessionSvc.Login(admin, "usr_2", "admin@example.com", shared.RoleAdmin))

	req = httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: shared.SessionCookieName, Value: sealedSessionCookie(t, sessionSvc, admin)})

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
