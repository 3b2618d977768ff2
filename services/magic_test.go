package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintProviderToken(t *testing.T, secret string, claims providerClaims, method jwt.SigningMethod) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestMagicAuthService_VerifyLoginToken(t *testing.T) {
	svc := &MagicAuthService{secretKey: "provider-secret", maxAge: 15 * time.Minute}

	token := mintProviderToken(t, "provider-secret", providerClaims{
		Email: "trader@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "did:ethr:0xabc",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
		},
	}, jwt.SigningMethodHS256)

	subject, email, err := svc.VerifyLoginToken(token)
	require.NoError(t, err)
	assert.Equal(t, "did:ethr:0xabc", subject)
	assert.Equal(t, "trader@example.com", email)
}

func TestMagicAuthService_RejectsWrongSecret(t *testing.T) {
	svc := &MagicAuthService{secretKey: "provider-secret", maxAge: 15 * time.Minute}

	token := mintProviderToken(t, "other-secret", providerClaims{
		Email: "trader@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "did:ethr:0xabc",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}, jwt.SigningMethodHS256)

	_, _, err := svc.VerifyLoginToken(token)
	assert.Error(t, err)
}

func TestMagicAuthService_RejectsStaleToken(t *testing.T) {
	svc := &MagicAuthService{secretKey: "provider-secret", maxAge: 15 * time.Minute}

	token := mintProviderToken(t, "provider-secret", providerClaims{
		Email: "trader@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "did:ethr:0xabc",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, jwt.SigningMethodHS256)

	_, _, err := svc.VerifyLoginToken(token)
	assert.Error(t, err)
}

func TestMagicAuthService_RejectsMissingClaims(t *testing.T) {
	svc := &MagicAuthService{secretKey: "provider-secret", maxAge: 15 * time.Minute}

	token := mintProviderToken(t, "provider-secret", providerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}, jwt.SigningMethodHS256)

	_, _, err := svc.VerifyLoginToken(token)
	assert.Error(t, err)

	_, _, err = svc.VerifyLoginToken("not-a-jwt")
	assert.Error(t, err)
}
