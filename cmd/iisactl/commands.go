package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"iisa-recruitment-backend/config"
	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/repository/postgres"
	"iisa-recruitment-backend/internal/usecase"
	"iisa-recruitment-backend/pkg/auth"
	"iisa-recruitment-backend/pkg/database"
	"iisa-recruitment-backend/pkg/logger"
	"iisa-recruitment-backend/pkg/validation"

	"github.com/spf13/cobra"
)

// app holds the command dependencies; tests replace the database-backed ones.
type app struct {
	out     io.Writer
	migrate func(ctx context.Context) error
	// admins returns the admin usecase and a release func for its resources
	admins func(ctx context.Context) (domain.AuthUsecase, func(), error)
}

func defaultApp() *app {
	return &app{
		out: os.Stdout,
		migrate: func(ctx context.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
			if err != nil {
				return err
			}
			defer pool.Close()
			return postgres.Migrate(ctx, pool)
		},
		admins: func(ctx context.Context) (domain.AuthUsecase, func(), error) {
			cfg, err := loadConfig()
			if err != nil {
				return nil, nil, err
			}
			pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
			if err != nil {
				return nil, nil, err
			}
			tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AdminTokenTTL, nil)
			uc := usecase.NewAuthUsecase(postgres.NewAdminRepository(pool), tokens, validation.New())
			return uc, pool.Close, nil
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DBUrl == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	logger.Init(cfg.LogLevel, "text")
	return cfg, nil
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "iisactl",
		Short:         "IISA recruitment backend administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)

	root.AddCommand(newMigrateCommand(a))
	root.AddCommand(newAdminCommand(a))
	return root
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

func newAdminCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage dashboard admins",
	}
	cmd.AddCommand(newAdminCreateCommand(a))
	cmd.AddCommand(newAdminHashCommand())
	return cmd
}

func newAdminCreateCommand(a *app) *cobra.Command {
	var email, password string
	var withTOTP bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dashboard admin",
		Example: `  iisactl admin create --email ops@iisa.org.il --password 's3cret-pass'
  iisactl admin create --email ops@iisa.org.il --password 's3cret-pass' --totp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, release, err := a.admins(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			admin, otpURL, err := uc.CreateAdmin(cmd.Context(), email, password, withTOTP)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Admin created: %s (%s)\n", admin.Email, admin.ID)
			if otpURL != "" {
				fmt.Fprintf(out, "TOTP provisioning URI: %s\n", otpURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 8 characters)")
	cmd.Flags().BoolVar(&withTOTP, "totp", false, "require a TOTP code at login")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAdminHashCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hash, err := usecase.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password to hash")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
