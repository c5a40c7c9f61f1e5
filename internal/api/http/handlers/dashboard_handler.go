package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-admin/internal/service"
)

// DashboardHandler renders the home page.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Index handles GET /.
func (h *DashboardHandler) Index(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, fiber.StatusOK, "index", fiber.Map{"Title": "Dashboard", "Stats": stats})
}
