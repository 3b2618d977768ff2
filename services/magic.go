package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/golang-jwt/jwt/v5"
)

// MagicAuthService verifies the login tokens minted by the third-party
// passwordless auth provider once the user completes the magic-link flow
// in the browser. The service never issues tokens itself; the sealed
// session cookie takes over after a successful verification.
type MagicAuthService struct {
	context.DefaultService

	secretKey string
	maxAge    time.Duration
}

type providerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

const MAGIC_AUTH_SVC = "magic_auth_svc"

func (svc MagicAuthService) Id() string {
	return MAGIC_AUTH_SVC
}

func (svc *MagicAuthService) Configure(ctx *context.Context) error {
	svc.secretKey = os.Getenv("MAGIC_SECRET_KEY")
	if svc.secretKey == "" {
		return errors.New("MAGIC_SECRET_KEY is required")
	}

	// Provider tokens are single-use credentials; stale ones are refused
	// even when their exp claim has not passed yet.
	svc.maxAge = 15 * time.Minute

	return svc.DefaultService.Configure(ctx)
}

func (svc *MagicAuthService) Start() error {
	return nil
}

// VerifyLoginToken validates a provider-issued DID token and returns the
// provider subject (stable user identifier) and the user's email.
func (svc *MagicAuthService) VerifyLoginToken(didToken string) (string, string, error) {
	token, err := jwt.ParseWithClaims(didToken, &providerClaims{}, svc.getKey)
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid login token")
	}

	claims, ok := token.Claims.(*providerClaims)
	if !ok || claims == nil {
		return "", "", errors.New("unsupported login token format")
	}

	if claims.Subject == "" || claims.Email == "" {
		return "", "", errors.New("login token missing subject or email")
	}

	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return "", "", errors.New("login token missing issued-at")
	}
	if time.Since(issuedAt.Time) > svc.maxAge {
		return "", "", errors.New("login token is too old")
	}

	return claims.Subject, claims.Email, nil
}

func (svc *MagicAuthService) getKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(svc.secretKey), nil
}
