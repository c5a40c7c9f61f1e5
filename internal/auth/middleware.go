package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/repository"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

const (
	// CookieName is the cookie carrying the session token.
	CookieName = "token"

	// userKey doubles as the view variable name once locals are passed to views.
	userKey = "user"
)

// Messages rendered on the login page when authentication fails.
const (
	MsgLoginRequired = "Please log in to access this page"
	MsgInvalidToken  = "Invalid token. Please log in again."
	MsgInactiveUser  = "User account is not active"
	MsgAdminRequired = "Admin access required"
)

// AuthMiddleware validates session tokens and loads the acting user.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Protect rejects requests without a valid token for an active user.
func (m *AuthMiddleware) Protect(c *fiber.Ctx) error {
	token := TokenFromRequest(c)
	if token == "" {
		return apperrors.NewUnauthorized(MsgLoginRequired)
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized(MsgInvalidToken)
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized(MsgInactiveUser)
		}
		return apperrors.MapError(err)
	}
	if !user.IsActive {
		return apperrors.NewUnauthorized(MsgInactiveUser)
	}

	c.Locals(userKey, user)
	return c.Next()
}

// RedirectIfAuthenticated sends callers holding a valid cookie to the dashboard.
func (m *AuthMiddleware) RedirectIfAuthenticated(c *fiber.Ctx) error {
	if token := c.Cookies(CookieName); token != "" {
		if _, err := m.tokens.ParseToken(token); err == nil {
			return c.Redirect("/", fiber.StatusFound)
		}
	}
	return c.Next()
}

// TokenFromRequest reads the token cookie, falling back to a bearer header.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(CookieName); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// UserFromContext retrieves the authenticated user.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(userKey).(*domain.User)
	return user, ok && user != nil
}
