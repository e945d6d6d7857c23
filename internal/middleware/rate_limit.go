package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/bea-academy/academy-go-api/internal/utils"
)

// RateLimit caps request throughput per authenticated user, falling back to
// the client IP for anonymous traffic. The identifier keeps limiters on
// different route groups from sharing buckets.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID := userKey(c); userID != "" {
				return identifier + ":" + userID
			}
			return identifier + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

func userKey(c *fiber.Ctx) string {
	value := c.Locals("user_id")
	if value == nil {
		return ""
	}
	key := fmt.Sprintf("%v", value)
	if key == "" || key == "0" {
		return ""
	}
	return key
}
