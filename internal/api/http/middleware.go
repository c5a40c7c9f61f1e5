package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/observability"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

// MethodField carries the real verb on browser form posts.
const MethodField = "_method"

// RegisterMiddlewares attaches global middlewares such as error handling and
// logging. It must run before any route is registered: the method override
// relies on being the first handler in every method's stack.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(methodOverride())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: observability.RequestIDLocal,
	}))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// methodOverride turns POST into PUT, PATCH or DELETE when _method is set in
// the query string or the urlencoded body.
func methodOverride() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}
		method := c.Query(MethodField)
		if method == "" {
			method = c.FormValue(MethodField)
		}
		switch method = strings.ToUpper(method); method {
		case fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
			c.Method(method)
		}
		return c.Next()
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = renderError(c, logger, metrics, err)
			}
		}()
		return c.Next()
	}
}

// ErrorHandler is the fiber-level fallback for errors raised before the
// error handling middleware runs.
func ErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return renderError(c, logger, metrics, err)
	}
}

// renderError writes err as JSON for API clients and as an HTML page
// otherwise. Unauthorized and rate limited requests get the login page.
func renderError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, err error) error {
	domainErr := toDomainError(err)
	metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err), zap.String("path", c.Path()))
	}

	c.Status(domainErr.HTTPStatus)
	if wantsJSON(c) {
		response := fiber.Map{"error": fiber.Map{
			"code":    domainErr.Code,
			"message": domainErr.Message,
		}}
		if len(domainErr.Details) > 0 {
			response["error"].(fiber.Map)["details"] = domainErr.Details
		}
		return c.JSON(response)
	}

	var renderErr error
	if domainErr.HTTPStatus == fiber.StatusUnauthorized || domainErr.Code == apperrors.CodeRateLimited {
		renderErr = c.Render("auth/login", fiber.Map{
			"Title": "Login Required",
			"Error": domainErr.Message,
			"Email": "",
		})
	} else {
		renderErr = c.Render("error", fiber.Map{
			"Title":   nethttp.StatusText(domainErr.HTTPStatus),
			"Status":  domainErr.HTTPStatus,
			"Message": domainErr.Message,
		})
	}
	if renderErr != nil {
		logger.Error("render error page", zap.Error(renderErr))
		return c.SendString(domainErr.Message)
	}
	return nil
}

func toDomainError(err error) *apperrors.DomainError {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return apperrors.NewDomainError(codeForStatus(fe.Code), fe.Message, fe.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func codeForStatus(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return apperrors.CodeNotFound
	case status == fiber.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case status == fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case status == fiber.StatusTooManyRequests:
		return apperrors.CodeRateLimited
	case status >= fiber.StatusInternalServerError:
		return apperrors.CodeInternal
	default:
		return apperrors.CodeValidation
	}
}

func wantsJSON(c *fiber.Ctx) bool {
	if strings.HasPrefix(c.Path(), "/api") || strings.HasPrefix(c.Path(), "/health") {
		return true
	}
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}
