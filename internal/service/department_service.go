package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/events"
	"github.com/spec-kit/org-admin/internal/repository"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

const (
	MsgDepartmentHasEmployees = "Cannot delete department with employees"
	MsgDepartmentNameRequired = "Department name is required"
	MsgDepartmentNameTaken    = "Department with this name already exists"
)

// DepartmentService manages departments.
type DepartmentService struct {
	departments repository.DepartmentRepository
	employees   repository.EmployeeRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// OrgDependencies encapsulates repositories required for org management.
type OrgDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	EmployeeRepo   repository.EmployeeRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewDepartmentService constructs the service.
func NewDepartmentService(deps OrgDependencies) *DepartmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{
		departments: deps.DepartmentRepo,
		employees:   deps.EmployeeRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// DepartmentInput holds editable department fields.
type DepartmentInput struct {
	Name        string
	Description string
	Location    string
}

func (in DepartmentInput) apply(dept *domain.Department) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.NewValidationError(MsgDepartmentNameRequired, map[string]any{"field": "name"})
	}
	dept.Name = name
	dept.Description = strings.TrimSpace(in.Description)
	dept.Location = strings.TrimSpace(in.Location)
	return nil
}

// DepartmentDetail is a department with its employees.
type DepartmentDetail struct {
	Department *domain.Department
	Employees  []domain.Employee
}

// List returns departments sorted by name with headcounts.
func (s *DepartmentService) List(ctx context.Context) ([]domain.DepartmentSummary, error) {
	items, err := s.departments.ListWithCounts(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Options returns departments sorted by name for select inputs.
func (s *DepartmentService) Options(ctx context.Context) ([]domain.Department, error) {
	items, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Count returns the number of departments.
func (s *DepartmentService) Count(ctx context.Context) (int64, error) {
	n, err := s.departments.Count(ctx)
	return n, apperrors.MapError(err)
}

// GetByID fetches one department.
func (s *DepartmentService) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("Department", nil)
	}
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Department", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// Get fetches a department with its employees and their supervisors.
func (s *DepartmentService) Get(ctx context.Context, id string) (*DepartmentDetail, error) {
	dept, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	employees, err := s.employees.List(ctx, repository.EmployeeFilter{DepartmentID: dept.ID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &DepartmentDetail{Department: dept, Employees: employees}, nil
}

// Create stores a new department.
func (s *DepartmentService) Create(ctx context.Context, actorID string, in DepartmentInput) (*domain.Department, error) {
	dept := &domain.Department{}
	if err := in.apply(dept); err != nil {
		return nil, err
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, mapUnique(err, MsgDepartmentNameTaken)
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventDepartmentCreated, dept.ID, actorID,
		events.NamePayload{Name: dept.Name}))
	return dept, nil
}

// Update replaces the editable fields of a department.
func (s *DepartmentService) Update(ctx context.Context, actorID, id string, in DepartmentInput) (*domain.Department, error) {
	dept, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(dept); err != nil {
		return nil, err
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Department", nil)
		}
		return nil, mapUnique(err, MsgDepartmentNameTaken)
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventDepartmentUpdated, dept.ID, actorID,
		events.NamePayload{Name: dept.Name}))
	return dept, nil
}

// Delete removes a department that no employee references.
func (s *DepartmentService) Delete(ctx context.Context, actorID, id string) error {
	dept, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.employees.Count(ctx, repository.EmployeeFilter{DepartmentID: dept.ID})
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewReferenceInUse(MsgDepartmentHasEmployees, map[string]any{"employees": count})
	}

	if err := s.departments.Delete(ctx, dept.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("Department", nil)
		}
		// an employee added after the count still trips the foreign key
		if mapped := apperrors.MapError(err); isCode(mapped, apperrors.CodeReferenceInUse) {
			return apperrors.NewReferenceInUse(MsgDepartmentHasEmployees, nil)
		}
		return apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventDepartmentDeleted, dept.ID, actorID,
		events.NamePayload{Name: dept.Name}))
	return nil
}
