package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/events"
	"github.com/spec-kit/org-admin/internal/repository/repotest"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

const testActor = "00000000-0000-0000-0000-000000000001"

type fixture struct {
	store       *repotest.Store
	dispatcher  events.Dispatcher
	departments *DepartmentService
	employees   *EmployeeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	deps := OrgDependencies{
		DepartmentRepo: store.Departments(),
		EmployeeRepo:   store.Employees(),
		Dispatcher:     dispatcher,
	}
	return &fixture{
		store:       store,
		dispatcher:  dispatcher,
		departments: NewDepartmentService(deps),
		employees:   NewEmployeeService(deps),
	}
}

func (f *fixture) department(t *testing.T, name string) *domain.Department {
	t.Helper()
	dept, err := f.departments.Create(context.Background(), testActor, DepartmentInput{Name: name})
	require.NoError(t, err)
	return dept
}

func (f *fixture) employee(t *testing.T, first, last, departmentID, supervisorID string) *domain.Employee {
	t.Helper()
	emp, err := f.employees.Create(context.Background(), testActor, EmployeeInput{
		FirstName:    first,
		LastName:     last,
		Email:        fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), strings.ToLower(last)),
		JobTitle:     "Engineer",
		DepartmentID: departmentID,
		SupervisorID: supervisorID,
	})
	require.NoError(t, err)
	return emp
}

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, code, de.Code, "unexpected error: %v", err)
	return de
}
