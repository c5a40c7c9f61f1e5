package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/auth"
	"github.com/spec-kit/org-admin/internal/config"
	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/events"
	"github.com/spec-kit/org-admin/internal/repository"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

// Messages shown on the login, registration and password forms.
const (
	MsgMissingCredentials = "Please provide email and password"
	MsgInvalidCredentials = "Invalid email or password"
	MsgAccountDeactivated = "Account is deactivated. Contact administrator."
	MsgAllFieldsRequired  = "All fields are required"
	MsgPasswordMismatch   = "Passwords do not match"
	MsgPasswordTooShort   = "Password must be at least 6 characters long"
	MsgPasswordTooLong    = "Password must be at most 72 bytes long"
	MsgUserExists         = "User with this email or username already exists"
	MsgWrongPassword      = "Current password is incorrect"
	MsgRegistered         = "Admin account created successfully! You can now login."
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	tokenMgr := deps.TokenManager
	if tokenMgr == nil {
		tokenMgr = auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tokenMgr,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		now:        time.Now,
	}
}

// RegisterInput carries account fields for registration and user creation.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// ChangePasswordInput carries the password form.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// TokenTTL is the lifetime of issued session tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenMgr.TTL()
}

// Login authenticates by email and password and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Token{}, apperrors.NewValidationError(MsgMissingCredentials, nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Token{}, apperrors.NewUnauthorized(MsgInvalidCredentials)
		}
		return nil, domain.Token{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Token{}, apperrors.NewUnauthorized(MsgInvalidCredentials)
	}
	if !user.IsActive {
		return nil, domain.Token{}, apperrors.NewForbidden(MsgAccountDeactivated)
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, domain.Token{}, apperrors.MapError(err)
	}
	user.LastLogin = &now

	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventUserLoggedIn, user.ID, user.ID, nil))
	return user, token, nil
}

// Register creates an admin account from the public registration form.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.CreateUser(ctx, in, domain.RoleAdmin)
}

// CreateUser validates input and stores a new active user with role.
func (s *AuthService) CreateUser(ctx context.Context, in RegisterInput, role domain.Role) (*domain.User, error) {
	if !requireAll(in.Username, in.Email, in.Password, in.ConfirmPassword, in.FirstName, in.LastName) {
		return nil, apperrors.NewValidationError(MsgAllFieldsRequired, nil)
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperrors.NewValidationError(MsgPasswordMismatch, nil)
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, apperrors.NewValidationError(MsgPasswordTooShort, nil)
	}
	if len(in.Password) > auth.MaxPasswordLength {
		return nil, apperrors.NewValidationError(MsgPasswordTooLong, nil)
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewConflict(MsgUserExists, nil)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapUnique(err, MsgUserExists)
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventUserRegistered, user.ID, user.ID,
		events.NamePayload{Name: user.Username}))
	return user, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if !requireAll(in.CurrentPassword, in.NewPassword, in.ConfirmPassword) {
		return apperrors.NewValidationError(MsgAllFieldsRequired, nil)
	}
	if in.NewPassword != in.ConfirmPassword {
		return apperrors.NewValidationError(MsgPasswordMismatch, nil)
	}
	if len(in.NewPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError(MsgPasswordTooShort, nil)
	}
	if len(in.NewPassword) > auth.MaxPasswordLength {
		return apperrors.NewValidationError(MsgPasswordTooLong, nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("User", nil)
		}
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, in.CurrentPassword); err != nil {
		return apperrors.NewValidationError(MsgWrongPassword, nil)
	}

	hash, err := auth.HashPassword(in.NewPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventPasswordChanged, user.ID, user.ID, nil))
	return nil
}
