package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/repository"
	"github.com/spec-kit/org-admin/internal/service"
)

func newCreateUserCmd() *cobra.Command {
	var (
		in   service.RegisterInput
		role string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login account without going through the web form",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			pg, err := rt.postgres(cmd.Context())
			if err != nil {
				return err
			}
			defer pg.Close()

			authService := service.NewAuthService(rt.cfg.Auth, service.AuthDependencies{
				UserRepo: repository.NewUserRepository(pg.PoolHandle()),
				Logger:   rt.logger,
			})
			in.ConfirmPassword = in.Password
			user, err := authService.CreateUser(cmd.Context(), in, domain.Role(role))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user.Role, user.Username, user.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password, at least 6 characters (required)")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name (required)")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "Role: admin or staff")
	for _, name := range []string{"username", "email", "password", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
