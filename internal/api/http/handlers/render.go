package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-admin/internal/auth"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

func render(c *fiber.Ctx, status int, view string, data fiber.Map) error {
	return c.Status(status).Render(view, data)
}

// formError reports whether err should re-render the submitted form. Missing
// records and server failures propagate to the error page instead.
func formError(err error) (string, bool) {
	de := apperrors.ToDomainError(err)
	if de.Code == apperrors.CodeNotFound || de.HTTPStatus >= fiber.StatusInternalServerError {
		return "", false
	}
	return de.Message, true
}

// actorID is the acting admin for audit events.
func actorID(c *fiber.Ctx) string {
	if user, ok := auth.UserFromContext(c); ok {
		return user.ID
	}
	return ""
}

// referenceInUse answers a blocked delete the way the list pages expect.
func referenceInUse(c *fiber.Ctx, err error) (bool, error) {
	de := apperrors.ToDomainError(err)
	if de.Code != apperrors.CodeReferenceInUse {
		return false, nil
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": de.Message})
}

func statusOf(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}
