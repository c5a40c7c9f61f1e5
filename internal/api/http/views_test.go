package http

import (
	"bytes"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/org-admin/internal/api/dto"
	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/service"
)

func TestViews_EmbedsFormPartials(t *testing.T) {
	engine, err := NewViews()
	require.NoError(t, err)
	require.NoError(t, engine.Load())

	assert.NotNil(t, engine.Templates.Lookup("department_fields"))
	assert.NotNil(t, engine.Templates.Lookup("employee_fields"))
}

func TestViews_RenderFormPages(t *testing.T) {
	engine, err := NewViews()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, engine.Render(&out, "departments/new", fiber.Map{
		"Error": "Department name already exists",
		"Form":  &dto.DepartmentForm{Name: "Research"},
	}))
	assert.Contains(t, out.String(), `name="description"`)
	assert.Contains(t, out.String(), `value="Research"`)
	assert.Contains(t, out.String(), "Department name already exists")

	out.Reset()
	require.NoError(t, engine.Render(&out, "employees/new", fiber.Map{
		"Error": "",
		"Form":  dto.EmployeeForm{Department: "d1", Status: "active"},
		"Options": service.EmployeeFormOptions{
			Departments: []domain.Department{{ID: "d1", Name: "Research"}},
			Supervisors: []domain.Employee{{ID: "e1", FirstName: "Grace", LastName: "Hopper"}},
			Statuses:    []domain.EmployeeStatus{domain.EmployeeStatus("active"), domain.EmployeeStatus("inactive")},
		},
	}))
	assert.Contains(t, out.String(), `name="location.country"`)
	assert.Contains(t, out.String(), "Grace Hopper")
	assert.Contains(t, out.String(), `<option value="d1" selected>Research</option>`)
}
