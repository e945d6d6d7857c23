package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bea-academy/academy-go-api/internal/utils"
)

// RequireRole gates a route group behind the given roles. The role is read
// from the "user_role" local set by the JWT middleware; requests without a
// matching role get a 403.
func RequireRole(roles ...string) fiber.Handler {
	allowed := newRoleSet(roles)

	return func(c *fiber.Ctx) error {
		if !allowed.contains(c.Locals("user_role")) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

type roleSet map[string]struct{}

func newRoleSet(roles []string) roleSet {
	set := make(roleSet, len(roles))
	for _, role := range roles {
		if normalized := normalizeRoleString(role); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

func (s roleSet) contains(value interface{}) bool {
	var role string
	switch v := value.(type) {
	case nil:
		return false
	case string:
		role = v
	default:
		role = fmt.Sprintf("%v", v)
	}

	_, ok := s[normalizeRoleString(role)]
	return ok
}

func normalizeRoleString(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
