package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/retenly/retenly/internal/account"
	"github.com/retenly/retenly/internal/auth"
	"github.com/retenly/retenly/internal/config"
)

// JWTAuth returns a middleware that validates access tokens and confirms the
// subject account still exists. Soft-deleted accounts are rejected.
func JWTAuth(cfg config.Config, repo account.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseClaims(tokenStr, cfg.JWTSecret)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		user, err := repo.FindByID(c.UserContext(), claims.Subject)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "token invalidated")
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_role", user.RoleName)
		c.Locals("company_no", user.CompanyNo)
		return c.Next()
	}
}
