package services

import (
	"crypto/sha256"
	"encoding/base64"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omenmarkets/omen_api/model"
	"github.com/omenmarkets/omen_api/shared"
)

func newTestSessionService(secret string) *SessionService {
	return &SessionService{
		key:        sha256.Sum256([]byte(secret)),
		cookieName: shared.SessionCookieName,
		maxAge:     defaultSessionMaxAge,
	}
}

func TestSessionService_SealOpenRoundTrip(t *testing.T) {
	svc := newTestSessionService("a-session-secret-of-sufficient-length")

	session := &model.Session{}
	require.NoError(t, svc.Login(session, "usr_1", "trader@example.com", shared.RoleUser))

	sealed, err := svc.Seal(session)
	require.NoError(t, err)
	require.NotEmpty(t, sealed)

	opened := svc.Open(sealed)
	assert.True(t, opened.IsLoggedIn)
	assert.Equal(t, "usr_1", opened.UserID)
	assert.Equal(t, "trader@example.com", opened.Email)
	assert.Equal(t, shared.RoleUser, opened.Role)
	assert.Equal(t, session.CsrfToken, opened.CsrfToken)
	assert.Equal(t, 1, opened.SessionVersion)
}

func TestSessionService_OpenRejectsTampering(t *testing.T) {
	svc := newTestSessionService("a-session-secret-of-sufficient-length")

	session := &model.Session{}
	require.NoError(t, svc.Login(session, "usr_1", "trader@example.com", shared.RoleUser))

	sealed, err := svc.Seal(session)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)

	// Flip one bit anywhere in the ciphertext.
	raw[len(raw)-1] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	opened := svc.Open(tampered)
	assert.False(t, opened.IsLoggedIn)
	assert.Empty(t, opened.UserID)
	assert.Empty(t, opened.CsrfToken)
}

func TestSessionService_OpenGarbageYieldsAnonymous(t *testing.T) {
	svc := newTestSessionService("a-session-secret-of-sufficient-length")

	for _, raw := range []string{
		"",
		"not-base64!!!",
		"c2hvcnQ", // decodes shorter than the nonce
		base64.RawURLEncoding.EncodeToString(make([]byte, 40)),
	} {
		opened := svc.Open(raw)
		assert.False(t, opened.IsLoggedIn)
		assert.Empty(t, opened.UserID)
	}
}

func TestSessionService_OpenRejectsWrongKey(t *testing.T) {
	sealer := newTestSessionService("a-session-secret-of-sufficient-length")
	opener := newTestSessionService("a-different-secret-of-sufficient-len")

	session := &model.Session{}
	require.NoError(t, sealer.Login(session, "usr_1", "trader@example.com", shared.RoleUser))

	sealed, err := sealer.Seal(session)
	require.NoError(t, err)

	opened := opener.Open(sealed)
	assert.False(t, opened.IsLoggedIn)
}

func TestSessionService_OpenRejectsLoggedInWithoutCsrfToken(t *testing.T) {
	svc := newTestSessionService("a-session-secret-of-sufficient-length")

	sealed, err := svc.Seal(&model.Session{
		UserID:     "usr_1",
		IsLoggedIn: true,
	})
	require.NoError(t, err)

	opened := svc.Open(sealed)
	assert.False(t, opened.IsLoggedIn)
	assert.Empty(t, opened.UserID)
}

func TestSessionService_ConfigureRejectsWeakSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "too-short")

	svc := &SessionService{}
	err := svc.Configure(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	os.Unsetenv("SESSION_SECRET")
	err = (&SessionService{}).Configure(nil)
	require.Error(t, err)
}

func TestSessionService_RotateChangesTokenAndVersion(t *testing.T) {
	svc := newTestSessionService("a-session-secret-of-sufficient-length")

	session := &model.Session{}
	require.NoError(t, svc.Login(session, "usr_1", "trader@example.com", shared.RoleUser))
	firstToken := session.CsrfToken

	require.NoError(t, svc.Rotate(session))
	assert.NotEqual(t, firstToken, session.CsrfToken)
	assert.Equal(t, 2, session.SessionVersion)
	assert.Equal(t, "usr_1", session.UserID)

	// Old token no longer verifies, new one does.
	assert.False(t, svc.VerifyCsrf(session, firstToken))
	assert.True(t, svc.VerifyCsrf(session, session.CsrfToken))
}

func TestSessionService_RotateIsNoopWhenLoggedOut(t *testing.T) {
	svc := newTestSessionService("a-session-secret-of-sufficient-length")

	session := &model.Session{}
	require.NoError(t, svc.Rotate(session))
	assert.Empty(t, session.CsrfToken)
	assert.Equal(t, 0, session.SessionVersion)
}

func TestSessionService_LogoutAndDestroy(t *testing.T) {
	svc := newTestSessionService("a-session-secret-of-sufficient-length")

	session := &model.Session{}
	require.NoError(t, svc.Login(session, "usr_1", "trader@example.com", shared.RoleAdmin))
	token := session.CsrfToken

	svc.Logout(session)
	assert.False(t, session.IsLoggedIn)
	assert.Empty(t, session.UserID)
	assert.Empty(t, session.CsrfToken)
	assert.False(t, svc.VerifyCsrf(session, token))

	require.NoError(t, svc.Login(session, "usr_2", "other@example.com", shared.RoleUser))
	svc.Destroy(session)
	assert.Equal(t, model.Session{}, *session)
}

func TestSessionService_VerifyCsrf(t *testing.T) {
	svc := newTestSessionService("a-session-secret-of-sufficient-length")

	session := &model.Session{}
	require.NoError(t, svc.Login(session, "usr_1", "trader@example.com", shared.RoleUser))

	assert.True(t, svc.VerifyCsrf(session, session.CsrfToken))
	assert.False(t, svc.VerifyCsrf(session, ""))
	assert.False(t, svc.VerifyCsrf(session, "wrong-token"))
	assert.False(t, svc.VerifyCsrf(nil, session.CsrfToken))

	loggedOut := &model.Session{CsrfToken: session.CsrfToken}
	assert.False(t, svc.VerifyCsrf(loggedOut, session.CsrfToken))
}
