package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-admin/internal/api/dto"
	"github.com/spec-kit/org-admin/internal/service"
)

// DepartmentsHandler serves the department pages.
type DepartmentsHandler struct {
	departments *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departments *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments}
}

// List handles GET /departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	items, err := h.departments.List(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, fiber.StatusOK, "departments/index", fiber.Map{"Title": "Departments", "Departments": items})
}

// New handles GET /departments/new.
func (h *DepartmentsHandler) New(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "departments/new", fiber.Map{
		"Title": "New Department",
		"Error": "",
		"Form":  dto.DepartmentForm{},
	})
}

// Create handles POST /departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	form, err := dto.UseForm(c, &dto.DepartmentForm{})
	if err == nil {
		err = form.Ok()
	}
	if err == nil {
		_, err = h.departments.Create(c.UserContext(), actorID(c), form.ToInput())
	}
	if err != nil {
		msg, ok := formError(err)
		if !ok {
			return err
		}
		return render(c, fiber.StatusBadRequest, "departments/new", fiber.Map{
			"Title": "New Department",
			"Error": msg,
			"Form":  form,
		})
	}
	return c.Redirect("/departments", fiber.StatusFound)
}

// Show handles GET /departments/:id.
func (h *DepartmentsHandler) Show(c *fiber.Ctx) error {
	detail, err := h.departments.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return render(c, fiber.StatusOK, "departments/show", fiber.Map{
		"Title":      detail.Department.Name,
		"Department": detail.Department,
		"Employees":  detail.Employees,
	})
}

// Edit handles GET /departments/:id/edit.
func (h *DepartmentsHandler) Edit(c *fiber.Ctx) error {
	dept, err := h.departments.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return render(c, fiber.StatusOK, "departments/edit", fiber.Map{
		"Title":      "Edit Department",
		"Error":      "",
		"Department": dept,
		"Form": dto.DepartmentForm{
			Name:        dept.Name,
			Description: dept.Description,
			Location:    dept.Location,
		},
	})
}

// Update handles PUT /departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	ctx := c.UserContext()
	dept, err := h.departments.GetByID(ctx, c.Params("id"))
	if err != nil {
		return err
	}

	form, err := dto.UseForm(c, &dto.DepartmentForm{})
	if err == nil {
		err = form.Ok()
	}
	if err == nil {
		_, err = h.departments.Update(ctx, actorID(c), dept.ID, form.ToInput())
	}
	if err != nil {
		msg, ok := formError(err)
		if !ok {
			return err
		}
		return render(c, fiber.StatusBadRequest, "departments/edit", fiber.Map{
			"Title":      "Edit Department",
			"Error":      msg,
			"Department": dept,
			"Form":       form,
		})
	}
	return c.Redirect("/departments", fiber.StatusSeeOther)
}

// Delete handles DELETE /departments/:id.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.departments.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		if handled, rerr := referenceInUse(c, err); handled {
			return rerr
		}
		return err
	}
	return c.Redirect("/departments", fiber.StatusSeeOther)
}
