package dto

import "github.com/spec-kit/org-admin/internal/service"

// LoginForm is the login form.
type LoginForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Ok validates the form.
func (f *LoginForm) Ok() error {
	trim(&f.Email)
	return check(f, service.MsgMissingCredentials)
}

// RegisterForm is the admin registration form. Matching and length rules
// live in AuthService so the command line shares them.
type RegisterForm struct {
	Username        string `form:"username" validate:"required"`
	Email           string `form:"email" validate:"required"`
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirmPassword" validate:"required"`
	FirstName       string `form:"firstName" validate:"required"`
	LastName        string `form:"lastName" validate:"required"`
}

// Ok validates the form.
func (f *RegisterForm) Ok() error {
	trim(&f.Username, &f.Email, &f.FirstName, &f.LastName)
	return check(f, service.MsgAllFieldsRequired)
}

// ToInput converts the form.
func (f *RegisterForm) ToInput() service.RegisterInput {
	return service.RegisterInput{
		Username:        f.Username,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		FirstName:       f.FirstName,
		LastName:        f.LastName,
	}
}

// ChangePasswordForm is the password change form.
type ChangePasswordForm struct {
	CurrentPassword string `form:"currentPassword" validate:"required"`
	NewPassword     string `form:"newPassword" validate:"required"`
	ConfirmPassword string `form:"confirmPassword" validate:"required"`
}

// Ok validates the form.
func (f *ChangePasswordForm) Ok() error {
	return check(f, service.MsgAllFieldsRequired)
}

// ToInput converts the form.
func (f *ChangePasswordForm) ToInput() service.ChangePasswordInput {
	return service.ChangePasswordInput{
		CurrentPassword: f.CurrentPassword,
		NewPassword:     f.NewPassword,
		ConfirmPassword: f.ConfirmPassword,
	}
}
