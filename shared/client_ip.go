package shared

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientIP derives the client identity for a request. Priority:
// first X-Forwarded-For hop, X-Real-IP, transport peer address, loopback.
//
// This trusts upstream proxy headers and is spoofable without a trusted
// reverse-proxy boundary in front of the service. Known deployment
// assumption, not a defect to fix here.
func ClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			forwarded = forwarded[:idx]
		}
		if ip := strings.TrimSpace(forwarded); ip != "" {
			return ip
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	remote := c.Context().RemoteAddr().String()
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	if remote != "" {
		return remote
	}

	return "127.0.0.1"
}
