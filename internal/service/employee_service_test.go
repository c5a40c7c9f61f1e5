package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/org-admin/internal/domain"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

func TestEmployeeService_ListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dept := f.department(t, "Support")
	for i := 1; i <= 25; i++ {
		f.employee(t, "Emp", fmt.Sprintf("Last%02d", i), dept.ID, "")
	}

	list, err := f.employees.List(ctx, EmployeeQuery{PageRequest: domain.PageRequest{Page: 2, Limit: 10}})
	require.NoError(t, err)
	require.Len(t, list.Items, 10)
	assert.Equal(t, "Last11", list.Items[0].LastName)
	assert.Equal(t, "Last20", list.Items[9].LastName)
	assert.Equal(t, int64(25), list.Total)
	assert.Equal(t, 3, list.TotalPages())
	assert.Equal(t, 2, list.CurrentPage)
	assert.True(t, list.HasPrev())
	assert.True(t, list.HasNext())
	require.Len(t, list.Departments, 1)
	assert.Equal(t, []string{"Engineer"}, list.JobTitles)

	last, err := f.employees.List(ctx, EmployeeQuery{PageRequest: domain.PageRequest{Page: 3, Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)
	assert.False(t, last.HasNext())
}

func TestEmployeeService_ListDefaults(t *testing.T) {
	f := newFixture(t)
	dept := f.department(t, "Support")
	for i := 1; i <= 12; i++ {
		f.employee(t, "Emp", fmt.Sprintf("Last%02d", i), dept.ID, "")
	}

	list, err := f.employees.List(context.Background(), EmployeeQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.CurrentPage)
	assert.Equal(t, domain.DefaultPageSize, list.Limit)
	assert.Len(t, list.Items, 10)
	assert.Equal(t, 2, list.TotalPages())
}

func TestEmployeeService_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eng := f.department(t, "Engineering")
	ops := f.department(t, "Operations")
	f.employee(t, "Ada", "Lovelace", eng.ID, "")
	f.employee(t, "Grace", "Hopper", eng.ID, "")
	f.employee(t, "Linus", "Adams", ops.ID, "")

	bySearch, err := f.employees.List(ctx, EmployeeQuery{Search: "^ad"})
	require.NoError(t, err)
	require.Len(t, bySearch.Items, 2)
	assert.Equal(t, "Adams", bySearch.Items[0].LastName)
	assert.Equal(t, "Lovelace", bySearch.Items[1].LastName)
	assert.Equal(t, "^ad", bySearch.Query.Search)

	byDept, err := f.employees.List(ctx, EmployeeQuery{Search: "^ad", DepartmentID: eng.ID})
	require.NoError(t, err)
	require.Len(t, byDept.Items, 1)
	assert.Equal(t, "Lovelace", byDept.Items[0].LastName)
	require.NotNil(t, byDept.Items[0].Department)
	assert.Equal(t, "Engineering", byDept.Items[0].Department.Name)

	byTitle, err := f.employees.List(ctx, EmployeeQuery{JobTitle: "ENGIN"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), byTitle.Total)

	_, err = f.employees.List(ctx, EmployeeQuery{Search: "(["})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.employees.List(ctx, EmployeeQuery{DepartmentID: "nope"})
	requireCode(t, err, apperrors.CodeValidation)
}

func TestEmployeeService_DeleteBlockedBySubordinates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dept := f.department(t, "Engineering")
	boss := f.employee(t, "Grace", "Hopper", dept.ID, "")
	report := f.employee(t, "Alan", "Turing", dept.ID, boss.ID)

	err := f.employees.Delete(ctx, testActor, boss.ID)
	de := requireCode(t, err, apperrors.CodeReferenceInUse)
	assert.Equal(t, MsgEmployeeIsSupervisor, de.Message)

	require.NoError(t, f.employees.Delete(ctx, testActor, report.ID))
	require.NoError(t, f.employees.Delete(ctx, testActor, boss.ID))
	requireCode(t, f.employees.Delete(ctx, testActor, boss.ID), apperrors.CodeNotFound)
}

func TestEmployeeService_CreateDefaultsAndNormalization(t *testing.T) {
	f := newFixture(t)
	dept := f.department(t, "Sales")
	salary := decimal.RequireFromString("52000.50")

	emp, err := f.employees.Create(context.Background(), testActor, EmployeeInput{
		FirstName:    "  Mary ",
		LastName:     "Jackson",
		Email:        " Mary.Jackson@Example.COM ",
		JobTitle:     "Account Executive",
		DepartmentID: dept.ID,
		SupervisorID: "",
		Salary:       &salary,
		Location:     domain.Location{Country: "Nigeria", State: " Lagos ", City: "Ikeja"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, "Mary", emp.FirstName)
	assert.Equal(t, "mary.jackson@example.com", emp.Email)
	assert.Nil(t, emp.SupervisorID)
	assert.Equal(t, domain.EmployeeStatusActive, emp.Status)
	assert.False(t, emp.HireDate.IsZero())
	assert.Equal(t, "Lagos", emp.Location.State)
	assert.Equal(t, "Ikeja, Lagos, Nigeria", emp.Location.String())
}

func TestEmployeeService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dept := f.department(t, "Sales")
	negative := decimal.NewFromInt(-1)

	base := EmployeeInput{FirstName: "A", LastName: "B", Email: "a@b.c", JobTitle: "Rep", DepartmentID: dept.ID}

	cases := []struct {
		name    string
		mutate  func(in *EmployeeInput)
		code    string
		message string
	}{
		{"missing fields", func(in *EmployeeInput) { in.JobTitle = " " }, apperrors.CodeValidation, MsgEmployeeFieldsRequired},
		{"unknown department", func(in *EmployeeInput) { in.DepartmentID = uuid.NewString() }, apperrors.CodeValidation, MsgDepartmentInvalid},
		{"unknown supervisor", func(in *EmployeeInput) { in.SupervisorID = uuid.NewString() }, apperrors.CodeValidation, MsgSupervisorInvalid},
		{"negative salary", func(in *EmployeeInput) { in.Salary = &negative }, apperrors.CodeValidation, MsgSalaryNegative},
		{"bad status", func(in *EmployeeInput) { in.Status = "retired" }, apperrors.CodeValidation, MsgInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := f.employees.Create(ctx, testActor, in)
			de := requireCode(t, err, tc.code)
			assert.Equal(t, tc.message, de.Message)
		})
	}

	_, err := f.employees.Create(ctx, testActor, base)
	require.NoError(t, err)
	_, err = f.employees.Create(ctx, testActor, base)
	de := requireCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, MsgEmployeeEmailTaken, de.Message)
}

func TestEmployeeService_SupervisorCycles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dept := f.department(t, "Engineering")
	a := f.employee(t, "Ann", "Alpha", dept.ID, "")
	b := f.employee(t, "Bob", "Beta", dept.ID, a.ID)
	c := f.employee(t, "Cid", "Gamma", dept.ID, b.ID)

	input := func(e *domain.Employee, supervisorID string) EmployeeInput {
		return EmployeeInput{
			FirstName:    e.FirstName,
			LastName:     e.LastName,
			Email:        e.Email,
			JobTitle:     e.JobTitle,
			DepartmentID: e.DepartmentID,
			SupervisorID: supervisorID,
		}
	}

	_, err := f.employees.Update(ctx, testActor, a.ID, input(a, a.ID))
	de := requireCode(t, err, apperrors.CodeValidation)
	assert.Equal(t, MsgSupervisorSelf, de.Message)

	_, err = f.employees.Update(ctx, testActor, a.ID, input(a, c.ID))
	de = requireCode(t, err, apperrors.CodeValidation)
	assert.Equal(t, MsgSupervisorCycle, de.Message)

	updated, err := f.employees.Update(ctx, testActor, c.ID, input(c, a.ID))
	require.NoError(t, err)
	require.NotNil(t, updated.SupervisorID)
	assert.Equal(t, a.ID, *updated.SupervisorID)
}

func TestEmployeeService_UpdateKeepsHireDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dept := f.department(t, "Engineering")
	hired := time.Date(2019, 3, 4, 0, 0, 0, 0, time.UTC)

	emp, err := f.employees.Create(ctx, testActor, EmployeeInput{
		FirstName: "Ken", LastName: "Thompson", Email: "ken@example.com",
		JobTitle: "Engineer", DepartmentID: dept.ID, HireDate: &hired,
	})
	require.NoError(t, err)

	updated, err := f.employees.Update(ctx, testActor, emp.ID, EmployeeInput{
		FirstName: "Ken", LastName: "Thompson", Email: "ken@example.com",
		JobTitle: "Principal Engineer", DepartmentID: dept.ID, Status: domain.EmployeeStatusInactive,
	})
	require.NoError(t, err)
	assert.True(t, hired.Equal(updated.HireDate))
	assert.Equal(t, "Principal Engineer", updated.JobTitle)
	assert.Equal(t, domain.EmployeeStatusInactive, updated.Status)

	_, err = f.employees.Update(ctx, testActor, uuid.NewString(), EmployeeInput{})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestEmployeeService_GetWithSubordinates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dept := f.department(t, "Engineering")
	boss := f.employee(t, "Grace", "Hopper", dept.ID, "")
	f.employee(t, "Zed", "Zulu", dept.ID, boss.ID)
	f.employee(t, "Amy", "Able", dept.ID, boss.ID)

	detail, err := f.employees.Get(ctx, boss.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineering", detail.Employee.Department.Name)
	require.Len(t, detail.Subordinates, 2)
	assert.Equal(t, "Able", detail.Subordinates[0].LastName)
	assert.Equal(t, "Zulu", detail.Subordinates[1].LastName)

	_, err = f.employees.Get(ctx, "bogus")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestEmployeeService_FormOptionsExcludesSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dept := f.department(t, "Engineering")
	a := f.employee(t, "Ann", "Alpha", dept.ID, "")
	b := f.employee(t, "Bob", "Beta", dept.ID, "")

	opts, err := f.employees.FormOptions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, opts.Supervisors, 1)
	assert.Equal(t, b.ID, opts.Supervisors[0].ID)
	assert.Equal(t, domain.EmployeeStatuses, opts.Statuses)

	all, err := f.employees.FormOptions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Supervisors, 2)
}

func TestEmployeeService_Export(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dept := f.department(t, "Engineering")
	boss := f.employee(t, "Grace", "Hopper", dept.ID, "")
	f.employee(t, "Alan", "Turing", dept.ID, boss.ID)

	data, err := f.employees.Export(ctx, EmployeeQuery{Search: "turing"})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "First Name", rows[0][0])
	assert.Equal(t, "Alan", rows[1][0])
	assert.Equal(t, "Engineering", rows[1][5])
	assert.Equal(t, "Grace Hopper", rows[1][6])
}
