package dto

import "github.com/spec-kit/org-admin/internal/service"

// DepartmentForm is the create and edit form for departments.
type DepartmentForm struct {
	Name        string `form:"name" validate:"required,max=120"`
	Description string `form:"description" validate:"max=1000"`
	Location    string `form:"location" validate:"max=200"`
}

// Ok validates the form.
func (f *DepartmentForm) Ok() error {
	trim(&f.Name, &f.Description, &f.Location)
	return check(f, service.MsgDepartmentNameRequired)
}

// ToInput converts the form.
func (f *DepartmentForm) ToInput() service.DepartmentInput {
	return service.DepartmentInput{Name: f.Name, Description: f.Description, Location: f.Location}
}
