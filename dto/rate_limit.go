package dto

import "time"

// RateLimitInfo is the decision returned by a limiter check. ResetAt is
// always the end of the window the decision was made against.
type RateLimitInfo struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

type RateLimitClassStats struct {
	Class       string `json:"class"`
	MaxRequests int    `json:"max_requests"`
	Window      string `json:"window"`
	TrackedKeys int    `json:"tracked_keys"`
}

type RateLimitStatsResponse struct {
	Classes   []RateLimitClassStats `json:"classes"`
	Timestamp time.Time             `json:"timestamp"`
}
