package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/sundinlabs/multibot/pkg/config"
)

// NewRateLimit creates a per-IP rate limiter from application config.
// Webhook and media stream routes should be mounted before this middleware
// so that provider callbacks are never throttled.
func NewRateLimit(cfg config.RateLimitingConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	max := cfg.MaxRequests
	if max <= 0 {
		max = 100
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		},
	})
}

// RateLimit creates a rate limiter with default settings.
func RateLimit() fiber.Handler {
	return NewRateLimit(config.RateLimitingConfig{
		Enabled:     true,
		MaxRequests: 100,
		Window:      time.Minute,
	})
}
