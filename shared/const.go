package shared

const (
	UserID     = "user_id"
	UserEmail  = "user_email"
	UserRole   = "user_role"
	SessionKey = "session"

	SessionCookieName = "omen_session"
	CSRFHeader        = "X-CSRF-Token"

	RoleUser  = "user"
	RoleAdmin = "admin"

	EventStatusOpen     = "open"
	EventStatusClosed   = "closed"
	EventStatusResolved = "resolved"

	PositionSideBuy  = "buy"
	PositionSideSell = "sell"
)
