package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	ClientIPContextKey  = "client_ip"
	UserAgentContextKey = "user_agent"
)

// RequestInfo records the caller's address and user agent. Proxy headers
// win over the socket address.
func RequestInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.Get("CF-Connecting-IP")
		if ip == "" {
			if fwd := c.Get("X-Forwarded-For"); fwd != "" {
				ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
			}
		}
		if ip == "" {
			ip = c.IP()
		}

		c.Locals(ClientIPContextKey, ip)
		c.Locals(UserAgentContextKey, c.Get(fiber.HeaderUserAgent))
		return c.Next()
	}
}

func GetClientIP(c *fiber.Ctx) string {
	ip, _ := c.Locals(ClientIPContextKey).(string)
	return ip
}

func GetUserAgent(c *fiber.Ctx) string {
	ua, _ := c.Locals(UserAgentContextKey).(string)
	return ua
}

// GetCountry reads the two letter country code set by Cloudflare.
func GetCountry(c *fiber.Ctx) string {
	country := strings.ToUpper(c.Get("CF-IPCountry"))
	if len(country) != 2 || country == "XX" {
		return ""
	}
	return country
}
