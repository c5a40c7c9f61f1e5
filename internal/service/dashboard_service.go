package service

import (
	"context"

	"github.com/spec-kit/org-admin/internal/events"
)

// DashboardStats summarizes the organization for the home page.
type DashboardStats struct {
	Departments int64
	Employees   int64
	Recent      []events.Event
}

// DashboardService aggregates counts for the home page.
type DashboardService struct {
	departments *DepartmentService
	employees   *EmployeeService
	audit       *AuditService
}

// NewDashboardService constructs the service. audit may be nil.
func NewDashboardService(departments *DepartmentService, employees *EmployeeService, audit *AuditService) *DashboardService {
	return &DashboardService{departments: departments, employees: employees, audit: audit}
}

// Stats returns headcounts and recent activity.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	departments, err := s.departments.Count(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := s.employees.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{Departments: departments, Employees: employees}
	if s.audit != nil {
		stats.Recent = s.audit.Recent(10)
	}
	return stats, nil
}
