package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeStatus is the employment lifecycle state.
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "active"
	EmployeeStatusInactive   EmployeeStatus = "inactive"
	EmployeeStatusTerminated EmployeeStatus = "terminated"
)

// EmployeeStatuses lists statuses in display order.
var EmployeeStatuses = []EmployeeStatus{
	EmployeeStatusActive,
	EmployeeStatusInactive,
	EmployeeStatusTerminated,
}

// Valid reports whether s is a known status.
func (s EmployeeStatus) Valid() bool {
	for _, known := range EmployeeStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Location is where an employee works.
type Location struct {
	Country string
	State   string
	City    string
}

// String renders the non-empty parts, most specific first.
func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.State, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Employee is a member of staff assigned to one department.
type Employee struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	JobTitle     string
	DepartmentID string
	SupervisorID *string
	Salary       *decimal.Decimal
	HireDate     time.Time
	Location     Location
	Status       EmployeeStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated by list/detail queries.
	Department *DepartmentRef
	Supervisor *EmployeeRef
}

// FullName joins first and last name.
func (e *Employee) FullName() string {
	return joinName(e.FirstName, e.LastName)
}

// DepartmentRef is the populated department of an employee.
type DepartmentRef struct {
	ID   string
	Name string
}

// EmployeeRef is a populated supervisor or subordinate reference.
type EmployeeRef struct {
	ID        string
	FirstName string
	LastName  string
}

// FullName joins first and last name.
func (r *EmployeeRef) FullName() string {
	return joinName(r.FirstName, r.LastName)
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
