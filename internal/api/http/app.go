package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/observability"
)

// NewApp builds the fiber application with embedded views and the shared
// error renderer. Route parameters arrive decoded. Middlewares and routes are
// attached separately.
func NewApp(name string, logger *zap.Logger, metrics *observability.Metrics) (*fiber.App, error) {
	views, err := NewViews()
	if err != nil {
		return nil, err
	}
	app := fiber.New(fiber.Config{
		AppName:               name,
		Views:                 views,
		ViewsLayout:           "layouts/main",
		PassLocalsToViews:     true,
		UnescapePath:          true,
		ErrorHandler:          ErrorHandler(logger, metrics),
		DisableStartupMessage: true,
	})
	return app, nil
}
