package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/events"
	"github.com/spec-kit/org-admin/internal/repository"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

const (
	MsgEmployeeIsSupervisor    = "Cannot delete employee who is a supervisor"
	MsgEmployeeEmailTaken      = "Employee with this email already exists"
	MsgDepartmentInvalid       = "Selected department does not exist"
	MsgSupervisorInvalid       = "Selected supervisor does not exist"
	MsgSupervisorSelf          = "An employee cannot supervise themselves"
	MsgSupervisorCycle         = "Supervisor assignment would create a reporting cycle"
	MsgSalaryNegative          = "Salary cannot be negative"
	MsgInvalidStatus           = "Status must be one of active, inactive, terminated"
	MsgInvalidDepartmentFilter = "Invalid department filter"
	MsgEmployeeFieldsRequired  = "First name, last name, email, job title and department are required"
)

// maxChainDepth bounds the supervisor walk when checking for cycles.
const maxChainDepth = 1000

// EmployeeService manages employees.
type EmployeeService struct {
	departments repository.DepartmentRepository
	employees   repository.EmployeeRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps OrgDependencies) *EmployeeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{
		departments: deps.DepartmentRepo,
		employees:   deps.EmployeeRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         time.Now,
	}
}

// EmployeeQuery holds list filters and paging. Search and JobTitle are
// case-insensitive regular expressions.
type EmployeeQuery struct {
	domain.PageRequest
	Search       string
	DepartmentID string
	JobTitle     string
}

func (q EmployeeQuery) filter() repository.EmployeeFilter {
	return repository.EmployeeFilter{
		Search:       strings.TrimSpace(q.Search),
		DepartmentID: strings.TrimSpace(q.DepartmentID),
		JobTitle:     strings.TrimSpace(q.JobTitle),
	}
}

// EmployeeList is one page of employees plus the filter choices.
type EmployeeList struct {
	domain.Page[domain.Employee]
	Departments []domain.Department
	JobTitles   []string
	Query       EmployeeQuery
}

// EmployeeDetail is an employee with direct reports.
type EmployeeDetail struct {
	Employee     *domain.Employee
	Subordinates []domain.Employee
}

// EmployeeFormOptions feeds the create and edit forms.
type EmployeeFormOptions struct {
	Departments []domain.Department
	Supervisors []domain.Employee
	Statuses    []domain.EmployeeStatus
}

// EmployeeInput holds editable employee fields. An empty SupervisorID means
// no supervisor and a nil HireDate means today.
type EmployeeInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	JobTitle     string
	DepartmentID string
	SupervisorID string
	Salary       *decimal.Decimal
	HireDate     *time.Time
	Location     domain.Location
	Status       domain.EmployeeStatus
}

// List returns a filtered page sorted by last then first name.
func (s *EmployeeService) List(ctx context.Context, q EmployeeQuery) (*EmployeeList, error) {
	q.PageRequest = q.PageRequest.Normalize()
	filter := q.filter()
	if filter.DepartmentID != "" && !validID(filter.DepartmentID) {
		return nil, apperrors.NewValidationError(MsgInvalidDepartmentFilter, nil)
	}

	total, err := s.employees.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	filter.Limit = q.Limit
	filter.Offset = q.Offset()
	items, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	titles, err := s.employees.DistinctJobTitles(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &EmployeeList{
		Page: domain.Page[domain.Employee]{
			Items:       items,
			Total:       total,
			CurrentPage: q.Page,
			Limit:       q.Limit,
		},
		Departments: departments,
		JobTitles:   titles,
		Query:       q,
	}, nil
}

// ListAll returns every employee matching q, ignoring paging.
func (s *EmployeeService) ListAll(ctx context.Context, q EmployeeQuery) ([]domain.Employee, error) {
	filter := q.filter()
	if filter.DepartmentID != "" && !validID(filter.DepartmentID) {
		return nil, apperrors.NewValidationError(MsgInvalidDepartmentFilter, nil)
	}
	items, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Count returns the number of employees.
func (s *EmployeeService) Count(ctx context.Context) (int64, error) {
	n, err := s.employees.Count(ctx, repository.EmployeeFilter{})
	return n, apperrors.MapError(err)
}

// GetByID fetches one employee with department and supervisor populated.
func (s *EmployeeService) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("Employee", nil)
	}
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Employee", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return emp, nil
}

// Get fetches an employee with subordinates sorted by name.
func (s *EmployeeService) Get(ctx context.Context, id string) (*EmployeeDetail, error) {
	emp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subs, err := s.employees.List(ctx, repository.EmployeeFilter{SupervisorID: emp.ID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &EmployeeDetail{Employee: emp, Subordinates: subs}, nil
}

// FormOptions lists departments and candidate supervisors. excludeID removes
// the employee being edited from the supervisor choices.
func (s *EmployeeService) FormOptions(ctx context.Context, excludeID string) (*EmployeeFormOptions, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	supervisors, err := s.employees.List(ctx, repository.EmployeeFilter{ExcludeID: excludeID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &EmployeeFormOptions{
		Departments: departments,
		Supervisors: supervisors,
		Statuses:    domain.EmployeeStatuses,
	}, nil
}

// Create validates and stores a new employee.
func (s *EmployeeService) Create(ctx context.Context, actorID string, in EmployeeInput) (*domain.Employee, error) {
	emp := &domain.Employee{}
	if err := s.apply(ctx, emp, in); err != nil {
		return nil, err
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, s.mapWriteError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventEmployeeCreated, emp.ID, actorID, employeePayload(emp)))
	return emp, nil
}

// Update validates and replaces the editable fields of an employee.
func (s *EmployeeService) Update(ctx context.Context, actorID, id string, in EmployeeInput) (*domain.Employee, error) {
	emp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, emp, in); err != nil {
		return nil, err
	}
	if err := s.employees.Update(ctx, emp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Employee", nil)
		}
		return nil, s.mapWriteError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventEmployeeUpdated, emp.ID, actorID, employeePayload(emp)))
	return emp, nil
}

// Delete removes an employee who supervises nobody.
func (s *EmployeeService) Delete(ctx context.Context, actorID, id string) error {
	emp, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.employees.Count(ctx, repository.EmployeeFilter{SupervisorID: emp.ID})
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewReferenceInUse(MsgEmployeeIsSupervisor, map[string]any{"subordinates": count})
	}

	if err := s.employees.Delete(ctx, emp.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("Employee", nil)
		}
		if mapped := apperrors.MapError(err); isCode(mapped, apperrors.CodeReferenceInUse) {
			return apperrors.NewReferenceInUse(MsgEmployeeIsSupervisor, nil)
		}
		return apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventEmployeeDeleted, emp.ID, actorID, employeePayload(emp)))
	return nil
}

func (s *EmployeeService) apply(ctx context.Context, emp *domain.Employee, in EmployeeInput) error {
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	jobTitle := strings.TrimSpace(in.JobTitle)
	departmentID := strings.TrimSpace(in.DepartmentID)
	supervisorID := strings.TrimSpace(in.SupervisorID)

	missing := []string{}
	for _, f := range []struct{ name, value string }{
		{"firstName", firstName},
		{"lastName", lastName},
		{"email", email},
		{"jobTitle", jobTitle},
		{"department", departmentID},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError(MsgEmployeeFieldsRequired,
			map[string]any{"missing": missing})
	}

	if in.Salary != nil && in.Salary.IsNegative() {
		return apperrors.NewValidationError(MsgSalaryNegative, nil)
	}
	status := in.Status
	if status == "" {
		status = domain.EmployeeStatusActive
	}
	if !status.Valid() {
		return apperrors.NewValidationError(MsgInvalidStatus, nil)
	}

	if !validID(departmentID) {
		return apperrors.NewValidationError(MsgDepartmentInvalid, nil)
	}
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError(MsgDepartmentInvalid, nil)
		}
		return apperrors.MapError(err)
	}

	var supervisor *string
	if supervisorID != "" {
		if err := s.checkSupervisor(ctx, emp.ID, supervisorID); err != nil {
			return err
		}
		supervisor = &supervisorID
	}

	hireDate := s.now().UTC().Truncate(24 * time.Hour)
	if in.HireDate != nil && !in.HireDate.IsZero() {
		hireDate = *in.HireDate
	} else if !emp.HireDate.IsZero() {
		hireDate = emp.HireDate
	}

	emp.FirstName = firstName
	emp.LastName = lastName
	emp.Email = email
	emp.Phone = strings.TrimSpace(in.Phone)
	emp.JobTitle = jobTitle
	emp.DepartmentID = departmentID
	emp.SupervisorID = supervisor
	emp.Salary = in.Salary
	emp.HireDate = hireDate
	emp.Location = domain.Location{
		Country: strings.TrimSpace(in.Location.Country),
		State:   strings.TrimSpace(in.Location.State),
		City:    strings.TrimSpace(in.Location.City),
	}
	emp.Status = status
	emp.Department, emp.Supervisor = nil, nil
	return nil
}

// checkSupervisor rejects unknown supervisors and assignments that would put
// employeeID in its own reporting chain. employeeID is empty on create.
func (s *EmployeeService) checkSupervisor(ctx context.Context, employeeID, supervisorID string) error {
	if employeeID != "" && supervisorID == employeeID {
		return apperrors.NewValidationError(MsgSupervisorSelf, nil)
	}
	if !validID(supervisorID) {
		return apperrors.NewValidationError(MsgSupervisorInvalid, nil)
	}

	current := supervisorID
	for depth := 0; current != "" && depth < maxChainDepth; depth++ {
		sup, err := s.employees.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				if current == supervisorID {
					return apperrors.NewValidationError(MsgSupervisorInvalid, nil)
				}
				return nil
			}
			return apperrors.MapError(err)
		}
		if sup.SupervisorID == nil {
			return nil
		}
		current = *sup.SupervisorID
		if employeeID != "" && current == employeeID {
			return apperrors.NewValidationError(MsgSupervisorCycle, nil)
		}
	}
	return nil
}

func (s *EmployeeService) mapWriteError(err error) error {
	mapped := mapUnique(err, MsgEmployeeEmailTaken)
	if isCode(mapped, apperrors.CodeReferenceInUse) {
		// a department or supervisor removed between validation and write
		return apperrors.NewValidationError(MsgDepartmentInvalid, nil)
	}
	return mapped
}

func employeePayload(emp *domain.Employee) events.EmployeePayload {
	return events.EmployeePayload{
		Name:         emp.FullName(),
		DepartmentID: emp.DepartmentID,
		SupervisorID: emp.SupervisorID,
	}
}
