package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-admin/internal/api/dto"
	"github.com/spec-kit/org-admin/internal/service"
)

const exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PageLink is one entry of the pagination bar.
type PageLink struct {
	Label  string
	URL    string
	Active bool
}

// EmployeesHandler serves the employee pages.
type EmployeesHandler struct {
	employees *service.EmployeeService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employees *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{employees: employees}
}

// List handles GET /employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	form, err := dto.UseQuery(c, &dto.EmployeeQueryForm{})
	if err != nil {
		return err
	}
	q := form.ToQuery()
	list, err := h.employees.List(c.UserContext(), q)
	if err != nil {
		return err
	}

	return render(c, fiber.StatusOK, "employees/index", fiber.Map{
		"Title":              "Employees",
		"Error":              "",
		"Employees":          list.Items,
		"Departments":        list.Departments,
		"JobTitles":          list.JobTitles,
		"CurrentPage":        list.CurrentPage,
		"TotalPages":         list.TotalPages(),
		"Total":              list.Total,
		"Search":             q.Search,
		"SelectedDepartment": q.DepartmentID,
		"SelectedJobTitle":   q.JobTitle,
		"PageLinks":          pageLinks(list.Query, list.CurrentPage, list.TotalPages()),
		"ExportURL":          "/employees/export.xlsx" + encodeQuery(filterValues(list.Query)),
	})
}

// Export handles GET /employees/export.xlsx with the list filters.
func (h *EmployeesHandler) Export(c *fiber.Ctx) error {
	form, err := dto.UseQuery(c, &dto.EmployeeQueryForm{})
	if err != nil {
		return err
	}
	body, err := h.employees.Export(c.UserContext(), form.ToQuery())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, exportContentType)
	c.Attachment("employees.xlsx")
	return c.Send(body)
}

// New handles GET /employees/new.
func (h *EmployeesHandler) New(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, "employees/new", "", dto.EmployeeForm{Status: "active"}, "")
}

// Create handles POST /employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	form, err := dto.UseForm(c, &dto.EmployeeForm{})
	if err == nil {
		err = form.Ok()
	}
	if err == nil {
		var in service.EmployeeInput
		if in, err = form.ToInput(); err == nil {
			_, err = h.employees.Create(c.UserContext(), actorID(c), in)
		}
	}
	if err != nil {
		msg, ok := formError(err)
		if !ok {
			return err
		}
		return h.renderForm(c, fiber.StatusBadRequest, "employees/new", "", *form, msg)
	}
	return c.Redirect("/employees", fiber.StatusFound)
}

// Show handles GET /employees/:id.
func (h *EmployeesHandler) Show(c *fiber.Ctx) error {
	detail, err := h.employees.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return render(c, fiber.StatusOK, "employees/show", fiber.Map{
		"Title":        detail.Employee.FullName(),
		"Employee":     detail.Employee,
		"Subordinates": detail.Subordinates,
	})
}

// Edit handles GET /employees/:id/edit.
func (h *EmployeesHandler) Edit(c *fiber.Ctx) error {
	emp, err := h.employees.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return h.renderForm(c, fiber.StatusOK, "employees/edit", emp.ID, dto.EmployeeFormFrom(emp), "")
}

// Update handles PUT /employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	ctx := c.UserContext()
	emp, err := h.employees.GetByID(ctx, c.Params("id"))
	if err != nil {
		return err
	}

	form, err := dto.UseForm(c, &dto.EmployeeForm{})
	if err == nil {
		err = form.Ok()
	}
	if err == nil {
		var in service.EmployeeInput
		if in, err = form.ToInput(); err == nil {
			_, err = h.employees.Update(ctx, actorID(c), emp.ID, in)
		}
	}
	if err != nil {
		msg, ok := formError(err)
		if !ok {
			return err
		}
		return h.renderForm(c, fiber.StatusBadRequest, "employees/edit", emp.ID, *form, msg)
	}
	return c.Redirect("/employees", fiber.StatusSeeOther)
}

// Delete handles DELETE /employees/:id.
func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	if err := h.employees.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		if handled, rerr := referenceInUse(c, err); handled {
			return rerr
		}
		return err
	}
	return c.Redirect("/employees", fiber.StatusSeeOther)
}

// renderForm renders the create or edit page. employeeID is empty on create
// and is excluded from the supervisor choices on edit.
func (h *EmployeesHandler) renderForm(c *fiber.Ctx, status int, view, employeeID string, form dto.EmployeeForm, msg string) error {
	options, err := h.employees.FormOptions(c.UserContext(), employeeID)
	if err != nil {
		return err
	}
	title := "New Employee"
	if employeeID != "" {
		title = "Edit Employee"
	}
	return render(c, status, view, fiber.Map{
		"Title":      title,
		"Error":      msg,
		"EmployeeID": employeeID,
		"Form":       form,
		"Options":    options,
	})
}

func filterValues(q service.EmployeeQuery) url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.DepartmentID != "" {
		values.Set("department", q.DepartmentID)
	}
	if q.JobTitle != "" {
		values.Set("jobTitle", q.JobTitle)
	}
	return values
}

func encodeQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// pageLinks builds Previous, numbered and Next links that keep the filters.
func pageLinks(q service.EmployeeQuery, current, total int) []PageLink {
	if total <= 1 {
		return nil
	}
	link := func(page int) string {
		values := filterValues(q)
		values.Set("page", strconv.Itoa(page))
		if q.Limit != 0 {
			values.Set("limit", strconv.Itoa(q.Limit))
		}
		return "/employees" + encodeQuery(values)
	}

	links := make([]PageLink, 0, total+2)
	if current > 1 {
		links = append(links, PageLink{Label: "Previous", URL: link(current - 1)})
	}
	for page := 1; page <= total; page++ {
		links = append(links, PageLink{Label: strconv.Itoa(page), URL: link(page), Active: page == current})
	}
	if current < total {
		links = append(links, PageLink{Label: "Next", URL: link(current + 1)})
	}
	return links
}
