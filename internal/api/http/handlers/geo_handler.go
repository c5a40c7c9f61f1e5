package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-admin/internal/service"
)

// GeoHandler proxies the geography lookups used by the location selects.
type GeoHandler struct {
	geo *service.GeoService
}

// NewGeoHandler constructs handler.
func NewGeoHandler(geo *service.GeoService) *GeoHandler {
	return &GeoHandler{geo: geo}
}

// Countries handles GET /api/countries.
func (h *GeoHandler) Countries(c *fiber.Ctx) error {
	countries, err := h.geo.Countries(c.UserContext())
	if err != nil {
		return geoFailure(c, "countries")
	}
	return c.JSON(countries)
}

// States handles GET /api/states/:country.
func (h *GeoHandler) States(c *fiber.Ctx) error {
	states, err := h.geo.States(c.UserContext(), c.Params("country"))
	if err != nil {
		return geoFailure(c, "states")
	}
	return c.JSON(states)
}

// Cities handles GET /api/cities/:country/:state.
func (h *GeoHandler) Cities(c *fiber.Ctx) error {
	cities, err := h.geo.Cities(c.UserContext(), c.Params("country"), c.Params("state"))
	if err != nil {
		return geoFailure(c, "cities")
	}
	return c.JSON(cities)
}

func geoFailure(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch " + what})
}
