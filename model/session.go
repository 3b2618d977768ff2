package model

// Session is the client-held session state. It round-trips to the browser
// as a sealed cookie and is reconstructed on every request; the server
// never keeps a canonical copy. Pure data; all crypto lives at the
// seal/open boundary in the session service.
//
// Invariant: CsrfToken is present if and only if IsLoggedIn is true. A
// logged-in session without a token is invalid and fails every CSRF check.
type Session struct {
	UserID         string `json:"user_id,omitempty"`
	Email          string `json:"email,omitempty"`
	Role           string `json:"role,omitempty"`
	IsLoggedIn     bool   `json:"is_logged_in"`
	CsrfToken      string `json:"csrf_token,omitempty"`
	SessionVersion int    `json:"session_version,omitempty"`
}
