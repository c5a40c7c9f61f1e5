package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-admin/internal/domain"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

// AdminOnly requires the authenticated user to hold the admin role.
func AdminOnly() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}

// RequireRole ensures the user has one of the allowed roles. It must run
// after Protect.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(MsgLoginRequired)
		}
		if _, exists := allowedSet[user.Role]; !exists {
			return apperrors.NewForbidden(MsgAdminRequired)
		}
		return c.Next()
	}
}
