package services

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/omenmarkets/omen_api/dto"
	"github.com/omenmarkets/omen_api/shared"
)

// Endpoint classes. Each class owns an independent limiter instance with
// its own window table, so auth throttling can never starve general API
// traffic and vice versa.
const (
	RateLimitClassAuth = "auth"
	RateLimitClassAPI  = "api"
)

type FixedWindowConfig struct {
	// Window is the duration of one fixed window.
	Window time.Duration
	// MaxRequests is the number of requests admitted per identity per window.
	MaxRequests int
}

type windowRecord struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter admits or rejects requests per identity within a
// fixed time window, using only in-process memory.
//
// This is deliberately a fixed-window counter, not a sliding window or
// token bucket: a client can burst up to 2x MaxRequests across a window
// boundary. That is the accepted tradeoff for O(1) memory and O(1) cost
// per check; do not upgrade the algorithm without changing the contract.
//
// The mutex serializes check-and-increment per table so concurrent checks
// for the same identity cannot both slip under the limit.
type FixedWindowLimiter struct {
	cfg FixedWindowConfig

	mu      sync.Mutex
	windows map[string]*windowRecord
}

func NewFixedWindowLimiter(cfg FixedWindowConfig) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		cfg:     cfg,
		windows: make(map[string]*windowRecord),
	}
}

// Check records one request for identity at time now and returns the
// admission decision. It cannot fail: the decision is pure memory.
//
// An expired record is treated as absent even if the sweep has not
// reclaimed it yet; correctness never depends on sweep timing.
func (l *FixedWindowLimiter) Check(identity string, now time.Time) dto.RateLimitInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.windows[identity]
	if !ok || !rec.resetAt.After(now) {
		rec = &windowRecord{
			count:   1,
			resetAt: now.Add(l.cfg.Window),
		}
		l.windows[identity] = rec

		return dto.RateLimitInfo{
			Allowed:   true,
			Limit:     l.cfg.MaxRequests,
			Remaining: l.cfg.MaxRequests - 1,
			ResetAt:   rec.resetAt,
		}
	}

	if rec.count >= l.cfg.MaxRequests {
		return dto.RateLimitInfo{
			Allowed:   false,
			Limit:     l.cfg.MaxRequests,
			Remaining: 0,
			ResetAt:   rec.resetAt,
		}
	}

	rec.count++
	return dto.RateLimitInfo{
		Allowed:   true,
		Limit:     l.cfg.MaxRequests,
		Remaining: l.cfg.MaxRequests - rec.count,
		ResetAt:   rec.resetAt,
	}
}

// Sweep drops every record whose window has expired and returns how many
// were reclaimed. Purely a memory optimization.
func (l *FixedWindowLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	reclaimed := 0
	for identity, rec := range l.windows {
		if !rec.resetAt.After(now) {
			delete(l.windows, identity)
			reclaimed++
		}
	}
	return reclaimed
}

// Reset removes the record for a single identity.
func (l *FixedWindowLimiter) Reset(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, identity)
}

func (l *FixedWindowLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

type RateLimitService struct {
	context.DefaultService

	limiters map[string]*FixedWindowLimiter
	closed   chan struct{}
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.limiters = map[string]*FixedWindowLimiter{
		RateLimitClassAuth: NewFixedWindowLimiter(FixedWindowConfig{
			Window:      envDuration("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
			MaxRequests: envInt("RATE_LIMIT_AUTH_MAX", 5),
		}),
		RateLimitClassAPI: NewFixedWindowLimiter(FixedWindowConfig{
			Window:      envDuration("RATE_LIMIT_API_WINDOW", time.Minute),
			MaxRequests: envInt("RATE_LIMIT_API_MAX", 60),
		}),
	}
	svc.closed = make(chan struct{})

	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	go svc.startSweepJob()
	return nil
}

func (svc *RateLimitService) Shutdown() {
	close(svc.closed)
}

// Limiter exposes a class's limiter instance, mainly for the admin surface.
func (svc *RateLimitService) Limiter(class string) *FixedWindowLimiter {
	return svc.limiters[class]
}

// Limit returns a middleware that gates requests through the named
// limiter class. Rate limit headers are set on every response; rejected
// requests additionally get a Retry-After and a 429 envelope.
func (svc *RateLimitService) Limit(class string) fiber.Handler {
	limiter, ok := svc.limiters[class]
	if !ok {
		log.Warnf("No rate limiter configured for class %s, allowing all traffic", class)
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		identity := shared.ClientIP(c)
		info := limiter.Check(identity, time.Now())

		c.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

		if !info.Allowed {
			retryAfter := int(time.Until(info.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))

			rateLimitThrottledTotal.WithLabelValues(class).Inc()

			return shared.NewTooManyRequestsError("Too many requests. Please try again later.", map[string]interface{}{
				"retry_after": retryAfter,
				"reset_at":    info.ResetAt.Unix(),
			})
		}

		return c.Next()
	}
}

func (svc *RateLimitService) startSweepJob() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			for class, limiter := range svc.limiters {
				if reclaimed := limiter.Sweep(now); reclaimed > 0 {
					log.WithFields(log.Fields{
						"class":     class,
						"reclaimed": reclaimed,
					}).Debug("Rate limit sweep completed")
				}
			}
		case <-svc.closed:
			return
		}
	}
}

// ==================== ADMIN HANDLERS ====================

// @Summary Rate limit statistics
// @Description Per-class limiter configuration and live window table sizes
// @Tags admin
// @Produce json
// @Success 200 {object} shared.Response{data=dto.RateLimitStatsResponse}
// @Router /api/v1/admin/rate-limits [get]
func (svc *RateLimitService) GetStats() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats := dto.RateLimitStatsResponse{Timestamp: time.Now()}
		for class, limiter := range svc.limiters {
			stats.Classes = append(stats.Classes, dto.RateLimitClassStats{
				Class:       class,
				MaxRequests: limiter.cfg.MaxRequests,
				Window:      limiter.cfg.Window.String(),
				TrackedKeys: limiter.Size(),
			})
		}
		return shared.ResponseOK(c, stats)
	}
}

// @Summary Remove a rate limit record
// @Description Clears the current window for an identity within a class
// @Tags admin
// @Produce json
// @Param class path string true "Limiter class"
// @Param identity path string true "Client identity"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/rate-limits/{class}/{identity} [delete]
func (svc *RateLimitService) RemoveLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		class := c.Params("class")
		identity := c.Params("identity")

		limiter, ok := svc.limiters[class]
		if !ok {
			return shared.NewNotFoundError("Unknown rate limit class")
		}

		limiter.Reset(identity)
		return shared.ResponseJSON(c, http.StatusOK, "Rate limit cleared", nil)
	}
}

// ==================== ENV HELPERS ====================

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
		log.Warnf("Invalid duration for %s: %s, using default %s", key, raw, fallback)
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
		log.Warnf("Invalid integer for %s: %s, using default %d", key, raw, fallback)
	}
	return fallback
}
