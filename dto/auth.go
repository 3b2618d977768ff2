package dto

import "time"

// ==================== AUTHENTICATION REQUEST DTOs ====================

// LoginRequest carries the DID token minted by the passwordless auth
// provider after the user completes the magic-link flow in the browser.
type LoginRequest struct {
	DIDToken string `json:"did_token" validate:"required" example:"WyIweGY4N..."`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

// ==================== AUTHENTICATION RESPONSE DTOs ====================

type UserInfo struct {
	ID          string     `json:"id" example:"usr_0190d1a2"`
	Email       string     `json:"email" example:"trader@example.com"`
	Role        string     `json:"role" example:"user"`
	CreatedAt   time.Time  `json:"created_at" example:"2023-01-01T00:00:00Z"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type LoginResponse struct {
	User      UserInfo `json:"user"`
	CSRFToken string   `json:"csrf_token" example:"9f2d8c..."`
}

// SessionResponse is returned by GET /auth/session. Clients echo CSRFToken
// in the X-CSRF-Token header on every state-changing call.
type SessionResponse struct {
	IsLoggedIn     bool   `json:"is_logged_in" example:"true"`
	UserID         string `json:"user_id,omitempty" example:"usr_0190d1a2"`
	Email          string `json:"email,omitempty" example:"trader@example.com"`
	CSRFToken      string `json:"csrf_token,omitempty" example:"9f2d8c..."`
	SessionVersion int    `json:"session_version,omitempty" example:"1"`
}
