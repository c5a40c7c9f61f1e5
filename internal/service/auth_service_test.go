package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/org-admin/internal/auth"
	"github.com/spec-kit/org-admin/internal/config"
	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/events"
	"github.com/spec-kit/org-admin/internal/repository/repotest"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

func newAuthService(t *testing.T) (*AuthService, *repotest.Store, *auth.TokenManager) {
	t.Helper()
	store := repotest.NewStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, AuthDependencies{
		UserRepo:     store.Users(),
		TokenManager: tokens,
		Dispatcher:   events.NewInMemoryDispatcher(),
	})
	return svc, store, tokens
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:        "Admin",
		Email:           "Admin@Example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       "Ada",
		LastName:        "Admin",
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(in *RegisterInput)
		message string
	}{
		{"missing field", func(in *RegisterInput) { in.LastName = "" }, MsgAllFieldsRequired},
		{"mismatch", func(in *RegisterInput) { in.ConfirmPassword = "secret2" }, MsgPasswordMismatch},
		{"short", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "abc", "abc" }, MsgPasswordTooShort},
		{"long", func(in *RegisterInput) {
			in.Password = strings.Repeat("x", auth.MaxPasswordLength+8)
			in.ConfirmPassword = in.Password
		}, MsgPasswordTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration()
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			de := requireCode(t, err, apperrors.CodeValidation)
			assert.Equal(t, tc.message, de.Message)
		})
	}
}

func TestAuthService_RegisterCreatesAdmin(t *testing.T) {
	svc, store, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	stored, err := store.Users().GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	dup := validRegistration()
	dup.Email = "other@example.com"
	_, err = svc.Register(ctx, dup)
	de := requireCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, MsgUserExists, de.Message)
}

func TestAuthService_Login(t *testing.T) {
	svc, store, tokens := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "", "secret1")
	de := requireCode(t, err, apperrors.CodeValidation)
	assert.Equal(t, MsgMissingCredentials, de.Message)

	_, _, err = svc.Login(ctx, "admin@example.com", "wrong-pass")
	de = requireCode(t, err, apperrors.CodeUnauthorized)
	assert.Equal(t, MsgInvalidCredentials, de.Message)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
	requireCode(t, err, apperrors.CodeUnauthorized)

	user, token, err := svc.Login(ctx, "  ADMIN@example.com ", "secret1")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
	assert.Equal(t, user.ID, token.UserID)

	claims, err := tokens.ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	stored, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestAuthService_LoginInactive(t *testing.T) {
	svc, store, _ := newAuthService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, store.Users().Update(ctx, user))

	_, _, err = svc.Login(ctx, "admin@example.com", "secret1")
	de := requireCode(t, err, apperrors.CodeForbidden)
	assert.Equal(t, MsgAccountDeactivated, de.Message)
}

func TestAuthService_CreateUserWithRole(t *testing.T) {
	svc, _, _ := newAuthService(t)
	user, err := svc.CreateUser(context.Background(), validRegistration(), domain.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, user.Role)

	in := validRegistration()
	in.Username, in.Email = "x", "x@example.com"
	_, err = svc.CreateUser(context.Background(), in, domain.Role("root"))
	requireCode(t, err, apperrors.CodeValidation)
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordInput{CurrentPassword: "nope", NewPassword: "newpass", ConfirmPassword: "newpass"})
	de := requireCode(t, err, apperrors.CodeValidation)
	assert.Equal(t, MsgWrongPassword, de.Message)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "newpass", ConfirmPassword: "other"})
	de = requireCode(t, err, apperrors.CodeValidation)
	assert.Equal(t, MsgPasswordMismatch, de.Message)

	long := strings.Repeat("y", auth.MaxPasswordLength+1)
	err = svc.ChangePassword(ctx, user.ID, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: long, ConfirmPassword: long})
	de = requireCode(t, err, apperrors.CodeValidation)
	assert.Equal(t, MsgPasswordTooLong, de.Message)

	exact := strings.Repeat("z", auth.MaxPasswordLength)
	_, err = svc.Register(ctx, RegisterInput{
		Username: "edge", Email: "edge@example.com", Password: exact, ConfirmPassword: exact,
		FirstName: "Edge", LastName: "Case",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, ChangePasswordInput{
		CurrentPassword: "secret1", NewPassword: "newpass", ConfirmPassword: "newpass",
	}))

	_, _, err = svc.Login(ctx, "admin@example.com", "secret1")
	requireCode(t, err, apperrors.CodeUnauthorized)
	_, _, err = svc.Login(ctx, "admin@example.com", "newpass")
	require.NoError(t, err)
}
