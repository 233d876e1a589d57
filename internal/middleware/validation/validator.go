package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Transport-level screens. Content screening proper happens in the
// classifier; this layer only rejects obviously hostile payloads before
// they reach the pipeline.
var (
	sqlInjectionPattern = regexp.MustCompile(`(?i)(union\s+select|insert\s+into|drop\s+table|delete\s+from|exec\s*\()`)
	xssPattern          = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)
)

type Config struct {
	MaxBodySize         int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 64 * 1024
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" {
			allowed := false
			for _, allowedType := range cfg.AllowedContentTypes {
				if strings.Contains(contentType, allowedType) {
					allowed = true
					break
				}
			}
			if !allowed {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		body := c.Body()
		if len(body) > cfg.MaxBodySize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Request body exceeds maximum size",
			})
		}

		if containsHostilePayload(string(body)) {
			cfg.Logger.Warn("Hostile payload rejected",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request content",
			})
		}

		return c.Next()
	}
}

func containsHostilePayload(body string) bool {
	return sqlInjectionPattern.MatchString(body) || xssPattern.MatchString(body)
}
