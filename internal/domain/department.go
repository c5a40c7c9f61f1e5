package domain

import "time"

// Department represents an organizational unit employees belong to.
type Department struct {
	ID          string
	Name        string
	Description string
	Location    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DepartmentSummary is a department with its current headcount.
type DepartmentSummary struct {
	Department
	EmployeeCount int64
}
