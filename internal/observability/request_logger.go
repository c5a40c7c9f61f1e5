package observability

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

// RequestIDLocal is where the request id middleware stores the id.
const RequestIDLocal = "requestid"

// RequestLogger logs each request and records request metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusFromError(err)
		}

		route := c.Route().Path
		metrics.RecordRequest(route, c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}
		if id, ok := c.Locals(RequestIDLocal).(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request", append(fields, zap.Error(err))...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
		return err
	}
}

// StatusFromError resolves the HTTP status an error will be rendered with.
func StatusFromError(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return apperrors.ToDomainError(err).HTTPStatus
}
