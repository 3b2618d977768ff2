package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/omenmarkets/omen_api/model"
	"github.com/omenmarkets/omen_api/shared"
)

// SessionService seals and opens the client-held session cookie and owns
// the session lifecycle: login, rotation, logout, CSRF verification.
// There is no server-side session store. The sealed cookie is the only
// copy, reconstructed on every request.
type SessionService struct {
	context.DefaultService

	key        [32]byte
	cookieName string
	maxAge     int
	secure     bool
}

const SESSION_SVC = "session_svc"

const (
	// Minimum entropy for the sealing secret. Shorter secrets are a
	// startup failure, never a per-request one.
	minSecretLen = 32

	nonceLen = 24

	csrfTokenBytes = 32

	// Cookie lifetime in seconds (7 days).
	defaultSessionMaxAge = 7 * 24 * 60 * 60
)

func (svc SessionService) Id() string {
	return SESSION_SVC
}

func (svc *SessionService) Configure(ctx *context.Context) error {
	secret := os.Getenv("SESSION_SECRET")
	if len(secret) < minSecretLen {
		return errors.New("SESSION_SECRET must be at least 32 bytes")
	}

	svc.key = sha256.Sum256([]byte(secret))
	svc.cookieName = shared.SessionCookieName
	svc.maxAge = defaultSessionMaxAge
	svc.secure = os.Getenv("APP_ENV") == "production"

	return svc.DefaultService.Configure(ctx)
}

func (svc *SessionService) Start() error {
	return nil
}

// ==================== SEAL / OPEN BOUNDARY ====================

// Seal serializes and encrypts the session into a cookie value.
func (svc *SessionService) Seal(session *model.Session) (string, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return "", err
	}

	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}

	sealed := secretbox.Seal(nonce[:], payload, &nonce, &svc.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open verifies and decrypts a cookie value. Any failure (missing value,
// bad encoding, truncation, tampering, wrong key) yields a fresh
// anonymous session. Absence of a valid session is the default state,
// not an error.
func (svc *SessionService) Open(raw string) *model.Session {
	anonymous := &model.Session{}

	if raw == "" {
		return anonymous
	}

	sealed, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil || len(sealed) <= nonceLen {
		return anonymous
	}

	var nonce [nonceLen]byte
	copy(nonce[:], sealed[:nonceLen])

	payload, ok := secretbox.Open(nil, sealed[nonceLen:], &nonce, &svc.key)
	if !ok {
		return anonymous
	}

	var session model.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return anonymous
	}

	// A logged-in session without a CSRF token violates the invariant;
	// treat it as untrusted.
	if session.IsLoggedIn && session.CsrfToken == "" {
		return anonymous
	}

	return &session
}

// Load reconstructs the session from the request cookie.
func (svc *SessionService) Load(c *fiber.Ctx) *model.Session {
	return svc.Open(c.Cookies(svc.cookieName))
}

// Save seals the session and sets it on the response.
func (svc *SessionService) Save(c *fiber.Ctx, session *model.Session) error {
	value, err := svc.Seal(session)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     svc.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   svc.maxAge,
		HTTPOnly: true,
		Secure:   svc.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie on the client.
func (svc *SessionService) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     svc.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   svc.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ==================== LIFECYCLE ====================

// Login authenticates the session and mints a fresh CSRF token.
func (svc *SessionService) Login(session *model.Session, userID, email, role string) error {
	token, err := mintCsrfToken()
	if err != nil {
		return err
	}

	session.UserID = userID
	session.Email = email
	session.Role = role
	session.IsLoggedIn = true
	session.CsrfToken = token
	session.SessionVersion = 1
	return nil
}

// Rotate mints a new CSRF token and bumps the session version without
// touching identity. Used after privilege-sensitive operations to
// invalidate a leaked token without forcing re-login. No-op when logged
// out.
func (svc *SessionService) Rotate(session *model.Session) error {
	if !session.IsLoggedIn {
		return nil
	}

	token, err := mintCsrfToken()
	if err != nil {
		return err
	}

	session.CsrfToken = token
	session.SessionVersion++
	return nil
}

// Logout returns the session to the anonymous state.
func (svc *SessionService) Logout(session *model.Session) {
	session.UserID = ""
	session.Email = ""
	session.Role = ""
	session.IsLoggedIn = false
	session.CsrfToken = ""
}

// Destroy wipes every field, equivalent to a brand-new anonymous session.
func (svc *SessionService) Destroy(session *model.Session) {
	*session = model.Session{}
}

// VerifyCsrf reports whether the submitted token matches the session's.
// A logged-out session, an absent server token or an absent submitted
// token is a failure, never an error. Comparison is constant-time.
func (svc *SessionService) VerifyCsrf(session *model.Session, submitted string) bool {
	if session == nil || !session.IsLoggedIn {
		return false
	}
	if session.CsrfToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(session.CsrfToken), []byte(submitted)) == 1
}

func mintCsrfToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ==================== MIDDLEWARE ====================

// WithSession loads the session into request locals without requiring
// authentication. Handlers downstream read it via SessionFromCtx.
func (svc *SessionService) WithSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(shared.SessionKey, svc.Load(c))
		return c.Next()
	}
}

// RequireAuth rejects requests without an authenticated session.
func (svc *SessionService) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := svc.Load(c)
		if !session.IsLoggedIn {
			return shared.NewUnauthorizedError("Authentication required")
		}

		c.Locals(shared.SessionKey, session)
		c.Locals(shared.UserID, session.UserID)
		c.Locals(shared.UserEmail, session.Email)
		c.Locals(shared.UserRole, session.Role)
		return c.Next()
	}
}

// RequireAdmin gates admin-console endpoints. Must run after RequireAuth.
func (svc *SessionService) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(shared.UserRole).(string); role != shared.RoleAdmin {
			return shared.NewForbiddenError("Admin access required")
		}
		return c.Next()
	}
}

// RequireCsrf rejects state-changing requests whose X-CSRF-Token header
// does not match the session token. Must run after RequireAuth. A
// mismatch rejects the operation only; the session itself stays valid.
func (svc *SessionService) RequireCsrf() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := SessionFromCtx(c)
		if !svc.VerifyCsrf(session, c.Get(shared.CSRFHeader)) {
			csrfRejectedTotal.Inc()
			return shared.NewForbiddenError("Invalid or missing CSRF token")
		}
		return c.Next()
	}
}

// SessionFromCtx returns the session placed in locals by the session
// middleware, or an anonymous session if none was loaded.
func SessionFromCtx(c *fiber.Ctx) *model.Session {
	if session, ok := c.Locals(shared.SessionKey).(*model.Session); ok && session != nil {
		return session
	}
	return &model.Session{}
}
