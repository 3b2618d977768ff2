package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/omenmarkets/omen_api/dto"
	"github.com/omenmarkets/omen_api/shared"
)

type AuthHandler struct {
	authSvc    AuthServiceInterface
	sessionSvc SessionServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface, sessionSvc SessionServiceInterface) *AuthHandler {
	return &AuthHandler{
		authSvc:    authSvc,
		sessionSvc: sessionSvc,
	}
}

// @Summary Login with a passwordless DID token
// @Description Verify the provider token, upsert the user and establish a sealed session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "DID token from the auth provider"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	user, err := h.authSvc.Login(req.DIDToken, shared.ClientIP(c))
	if err != nil {
		return err
	}

	session := h.sessionSvc.Load(c)
	if err := h.sessionSvc.Login(session, user.ID, user.Email, user.Role); err != nil {
		return err
	}
	if err := h.sessionSvc.Save(c, session); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Login successful", dto.LoginResponse{
		User:      h.authSvc.ToUserInfo(user),
		CSRFToken: session.CsrfToken,
	})
}

// @Summary Current session
// @Description Return the session state reconstructed from the sealed cookie
// @Tags auth
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/auth/session [get]
func (h *AuthHandler) GetSession(c *fiber.Ctx) error {
	session := h.sessionSvc.Load(c)

	return shared.ResponseOK(c, dto.SessionResponse{
		IsLoggedIn:     session.IsLoggedIn,
		UserID:         session.UserID,
		Email:          session.Email,
		CSRFToken:      session.CsrfToken,
		SessionVersion: session.SessionVersion,
	})
}

// @Summary Rotate the CSRF token
// @Description Mint a fresh CSRF token and bump the session version, keeping identity intact
// @Tags auth
// @Produce json
// @Param X-CSRF-Token header string true "Current CSRF token"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/auth/rotate [post]
func (h *AuthHandler) RotateSession(c *fiber.Ctx) error {
	session := h.sessionSvc.Load(c)

	if err := h.sessionSvc.Rotate(session); err != nil {
		return err
	}
	if err := h.sessionSvc.Save(c, session); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Session rotated", dto.SessionResponse{
		IsLoggedIn:     session.IsLoggedIn,
		UserID:         session.UserID,
		Email:          session.Email,
		CSRFToken:      session.CsrfToken,
		SessionVersion: session.SessionVersion,
	})
}

// @Summary Logout
// @Description Clear the session identity while keeping the cookie shell
// @Tags auth
// @Produce json
// @Param X-CSRF-Token header string true "Current CSRF token"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session := h.sessionSvc.Load(c)

	h.sessionSvc.Logout(session)
	if err := h.sessionSvc.Save(c, session); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Logged out successfully", nil)
}

// @Summary Destroy the session
// @Description Wipe all session state and expire the cookie
// @Tags auth
// @Produce json
// @Param X-CSRF-Token header string true "Current CSRF token"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/auth/session [delete]
func (h *AuthHandler) DestroySession(c *fiber.Ctx) error {
	session := h.sessionSvc.Load(c)

	h.sessionSvc.Destroy(session)
	h.sessionSvc.Clear(c)

	return shared.ResponseJSON(c, http.StatusOK, "Session destroyed", nil)
}
