package services

import (
	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/omenmarkets/omen_api/dto"
	"github.com/omenmarkets/omen_api/model"
)

// AuthService glues the passwordless provider to the session layer: a
// verified login token becomes a database user and an authenticated
// sealed-cookie session.
type AuthService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	magicSvc *MagicAuthService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.magicSvc = svc.Service(MAGIC_AUTH_SVC).(*MagicAuthService)
	return nil
}

// Login verifies the provider DID token and resolves it to a user row,
// creating one on first contact.
func (svc *AuthService) Login(didToken, clientIP string) (*model.User, error) {
	subject, email, err := svc.magicSvc.VerifyLoginToken(didToken)
	if err != nil {
		return nil, err
	}

	user, err := svc.sqlSvc.UpsertUserByEmail(email)
	if err != nil {
		return nil, err
	}

	if err := svc.sqlSvc.UpdateLastLogin(user.ID, clientIP); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to stamp last login")
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"subject": subject,
	}).Info("User logged in")

	return user, nil
}

func (svc *AuthService) ToUserInfo(user *model.User) dto.UserInfo {
	return dto.UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
