package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/spec-kit/org-admin/internal/api/http/handlers"
	"github.com/spec-kit/org-admin/internal/auth"
	"github.com/spec-kit/org-admin/internal/observability"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Dashboard      *handlers.DashboardHandler
	Departments    *handlers.DepartmentsHandler
	Employees      *handlers.EmployeesHandler
	Geo            *handlers.GeoHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   *auth.LoginLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Call it after RegisterMiddlewares.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) error {
	static, err := StaticFS()
	if err != nil {
		return err
	}
	app.Use("/static", filesystem.New(filesystem.Config{Root: static, MaxAge: 3600}))

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Get("/login", cfg.AuthMiddleware.RedirectIfAuthenticated, cfg.Auth.LoginPage)
	if cfg.LoginLimiter != nil {
		authGroup.Post("/login", cfg.LoginLimiter.Handle, cfg.Auth.Login)
	} else {
		authGroup.Post("/login", cfg.Auth.Login)
	}
	authGroup.Get("/register", cfg.Auth.RegisterPage)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Get("/logout", cfg.Auth.Logout)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/password", cfg.AuthMiddleware.Protect, cfg.Auth.PasswordPage)
	authGroup.Post("/password", cfg.AuthMiddleware.Protect, cfg.Auth.ChangePassword)

	api := app.Group("/api")
	api.Get("/countries", cfg.Geo.Countries)
	api.Get("/states/:country", cfg.Geo.States)
	api.Get("/cities/:country/:state", cfg.Geo.Cities)

	admin := []fiber.Handler{cfg.AuthMiddleware.Protect, auth.AdminOnly()}

	app.Get("/", append(admin, cfg.Dashboard.Index)...)

	departments := app.Group("/departments", admin...)
	departments.Get("/", cfg.Departments.List)
	departments.Get("/new", cfg.Departments.New)
	departments.Post("/", cfg.Departments.Create)
	departments.Get("/:id", cfg.Departments.Show)
	departments.Get("/:id/edit", cfg.Departments.Edit)
	departments.Put("/:id", cfg.Departments.Update)
	departments.Delete("/:id", cfg.Departments.Delete)

	employees := app.Group("/employees", admin...)
	employees.Get("/", cfg.Employees.List)
	employees.Get("/new", cfg.Employees.New)
	employees.Get("/export.xlsx", cfg.Employees.Export)
	employees.Post("/", cfg.Employees.Create)
	employees.Get("/:id", cfg.Employees.Show)
	employees.Get("/:id/edit", cfg.Employees.Edit)
	employees.Put("/:id", cfg.Employees.Update)
	employees.Delete("/:id", cfg.Employees.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("Page", nil)
	})
	return nil
}
