package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-admin/internal/api/dto"
	"github.com/spec-kit/org-admin/internal/auth"
	"github.com/spec-kit/org-admin/internal/service"
)

const (
	loginTitle    = "Admin Login"
	registerTitle = "Admin Registration"
	passwordTitle = "Change Password"
)

// AuthHandler serves the login, registration, logout and password pages.
type AuthHandler struct {
	auth         *service.AuthService
	secureCookie bool
}

// NewAuthHandler constructs handler. secureCookie marks the session cookie
// Secure, which production deployments behind TLS require.
func NewAuthHandler(authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: authService, secureCookie: secureCookie}
}

// LoginPage handles GET /auth/login.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "auth/login", fiber.Map{"Title": loginTitle, "Error": "", "Email": ""})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	form, err := dto.UseForm(c, &dto.LoginForm{})
	if err == nil {
		err = form.Ok()
	}
	if err != nil {
		return h.loginFailed(c, form.Email, err)
	}

	_, token, err := h.auth.Login(c.UserContext(), form.Email, form.Password)
	if err != nil {
		return h.loginFailed(c, form.Email, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token.Value,
		Path:     "/",
		MaxAge:   int(h.auth.TokenTTL() / time.Second),
		Expires:  token.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusFound)
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, email string, err error) error {
	msg, ok := formError(err)
	if !ok {
		return err
	}
	return render(c, statusOf(err), "auth/login", fiber.Map{"Title": loginTitle, "Error": msg, "Email": email})
}

// RegisterPage handles GET /auth/register.
func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "auth/register", fiber.Map{
		"Title":   registerTitle,
		"Error":   "",
		"Success": "",
		"Form":    dto.RegisterForm{},
	})
}

// Register handles POST /auth/register and creates an admin account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	form, err := dto.UseForm(c, &dto.RegisterForm{})
	if err == nil {
		err = form.Ok()
	}
	if err == nil {
		_, err = h.auth.Register(c.UserContext(), form.ToInput())
	}
	if err != nil {
		msg, ok := formError(err)
		if !ok {
			return err
		}
		return render(c, fiber.StatusBadRequest, "auth/register", fiber.Map{
			"Title":   registerTitle,
			"Error":   msg,
			"Success": "",
			"Form":    form,
		})
	}
	return render(c, fiber.StatusOK, "auth/register", fiber.Map{
		"Title":   registerTitle,
		"Error":   "",
		"Success": service.MsgRegistered,
		"Form":    dto.RegisterForm{},
	})
}

// Logout handles GET and POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/auth/login", fiber.StatusFound)
}

// PasswordPage handles GET /auth/password.
func (h *AuthHandler) PasswordPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "auth/password", fiber.Map{"Title": passwordTitle, "Error": "", "Success": ""})
}

// ChangePassword handles POST /auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	form, err := dto.UseForm(c, &dto.ChangePasswordForm{})
	if err == nil {
		err = form.Ok()
	}
	if err == nil {
		err = h.auth.ChangePassword(c.UserContext(), actorID(c), form.ToInput())
	}
	if err != nil {
		msg, ok := formError(err)
		if !ok {
			return err
		}
		return render(c, fiber.StatusBadRequest, "auth/password", fiber.Map{"Title": passwordTitle, "Error": msg, "Success": ""})
	}
	return render(c, fiber.StatusOK, "auth/password", fiber.Map{
		"Title":   passwordTitle,
		"Error":   "",
		"Success": "Password updated",
	})
}
