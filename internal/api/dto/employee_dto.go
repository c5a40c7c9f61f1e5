package dto

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/service"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

// DateLayout is the HTML date input format.
const DateLayout = "2006-01-02"

// LocationForm is the nested location block, posted as location.country etc.
type LocationForm struct {
	Country string `form:"country" validate:"max=100"`
	State   string `form:"state" validate:"max=100"`
	City    string `form:"city" validate:"max=100"`
}

// EmployeeForm is the create and edit form for employees. Values are kept as
// strings so a rejected submission can be echoed back unchanged.
type EmployeeForm struct {
	FirstName  string       `form:"firstName" validate:"required,max=100"`
	LastName   string       `form:"lastName" validate:"required,max=100"`
	Email      string       `form:"email" validate:"required,email"`
	Phone      string       `form:"phone" validate:"max=40"`
	JobTitle   string       `form:"jobTitle" validate:"required,max=120"`
	Department string       `form:"department" validate:"required"`
	Supervisor string       `form:"supervisor" validate:"omitempty,uuid"`
	Salary     string       `form:"salary" validate:"omitempty,numeric"`
	HireDate   string       `form:"hireDate" validate:"omitempty,datetime=2006-01-02"`
	Location   LocationForm `form:"location"`
	Status     string       `form:"status" validate:"omitempty,oneof=active inactive terminated"`
}

// EmployeeFormFrom fills a form from a stored employee for the edit page.
func EmployeeFormFrom(emp *domain.Employee) EmployeeForm {
	f := EmployeeForm{
		FirstName:  emp.FirstName,
		LastName:   emp.LastName,
		Email:      emp.Email,
		Phone:      emp.Phone,
		JobTitle:   emp.JobTitle,
		Department: emp.DepartmentID,
		Location: LocationForm{
			Country: emp.Location.Country,
			State:   emp.Location.State,
			City:    emp.Location.City,
		},
		Status: string(emp.Status),
	}
	if emp.SupervisorID != nil {
		f.Supervisor = *emp.SupervisorID
	}
	if emp.Salary != nil {
		f.Salary = emp.Salary.StringFixed(2)
	}
	if !emp.HireDate.IsZero() {
		f.HireDate = emp.HireDate.Format(DateLayout)
	}
	return f
}

// Ok validates the form.
func (f *EmployeeForm) Ok() error {
	trim(&f.FirstName, &f.LastName, &f.Email, &f.Phone, &f.JobTitle, &f.Department, &f.Supervisor,
		&f.Salary, &f.HireDate, &f.Location.Country, &f.Location.State, &f.Location.City, &f.Status)
	return check(f, "")
}

// ToInput converts the validated form.
func (f *EmployeeForm) ToInput() (service.EmployeeInput, error) {
	in := service.EmployeeInput{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Email:        f.Email,
		Phone:        f.Phone,
		JobTitle:     f.JobTitle,
		DepartmentID: f.Department,
		SupervisorID: f.Supervisor,
		Location: domain.Location{
			Country: f.Location.Country,
			State:   f.Location.State,
			City:    f.Location.City,
		},
		Status: domain.EmployeeStatus(f.Status),
	}
	if f.Salary != "" {
		salary, err := decimal.NewFromString(f.Salary)
		if err != nil {
			return in, apperrors.NewValidationError("Salary must be a number", nil)
		}
		in.Salary = &salary
	}
	if f.HireDate != "" {
		hired, err := time.Parse(DateLayout, f.HireDate)
		if err != nil {
			return in, apperrors.NewValidationError("Hire date must be a date (YYYY-MM-DD)", nil)
		}
		in.HireDate = &hired
	}
	return in, nil
}

// EmployeeQueryForm is the list filter query string. Unparseable page and
// limit values fall back to the defaults.
type EmployeeQueryForm struct {
	Page       string `form:"page"`
	Limit      string `form:"limit"`
	Search     string `form:"search"`
	Department string `form:"department"`
	JobTitle   string `form:"jobTitle"`
}

// ToQuery converts the query form.
func (f *EmployeeQueryForm) ToQuery() service.EmployeeQuery {
	page, _ := strconv.Atoi(f.Page)
	limit, _ := strconv.Atoi(f.Limit)
	return service.EmployeeQuery{
		PageRequest:  domain.PageRequest{Page: page, Limit: limit},
		Search:       f.Search,
		DepartmentID: f.Department,
		JobTitle:     f.JobTitle,
	}
}
