package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type HeadersConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if !cfg.IsDevelopment {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		csp := "default-src 'self'; " +
			"img-src 'self' data: https:; " +
			"connect-src 'self' " + strings.Join(cfg.AllowedOrigins, " ") + "; " +
			"frame-ancestors 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
		c.Set("Content-Security-Policy", csp)

		return c.Next()
	}
}
