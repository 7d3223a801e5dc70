package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/app"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/fixtures"
	authService "github.com/cmlabs-hris/workforce-backend-go/internal/service/auth"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// seedCmd creates an organization with an administrator and the default
// schedule template. --org is the organization name here.
func seedCmd() *cobra.Command {
	var timezone, adminEmail, adminName, adminPassword string
	var year int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an organization with its administrator and default schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := viper.GetString("org")
			if name == "" {
				return fmt.Errorf("--org required")
			}
			if len(adminPassword) < 8 {
				return fmt.Errorf("--admin-password must be at least 8 characters long")
			}
			if year == 0 {
				year = time.Now().Year()
			}

			return withServices(cmd.Context(), func(ctx context.Context, s *app.Services) error {
				org, err := s.Repos.Organizations.Create(ctx, fixtures.GetDefaultOrganization(name, timezone))
				if err != nil {
					return fmt.Errorf("create organization: %w", err)
				}

				hash, err := authService.HashPassword(adminPassword)
				if err != nil {
					return err
				}
				admin, err := s.Repos.Users.Create(ctx, user.User{
					OrganizationID:     org.ID,
					Email:              strings.ToLower(strings.TrimSpace(adminEmail)),
					FullName:           adminName,
					PasswordHash:       hash,
					Role:               user.RoleAdmin,
					IsActive:           true,
					MustChangePassword: true,
				})
				if err != nil {
					return fmt.Errorf("create administrator: %w", err)
				}

				tmpl, err := s.Schedule.CreateTemplate(ctx, user.SystemActor(org.ID), fixtures.GetDefaultScheduleTemplate(org.ID, year))
				if err != nil {
					return fmt.Errorf("create default schedule: %w", err)
				}

				if viper.GetBool("json") {
					return printJSON(map[string]string{
						"organization_id": org.ID,
						"admin_user_id":   admin.ID,
						"template_id":     tmpl.ID,
					})
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Resource", "ID", "Name"})
				tw.AppendRow(table.Row{"organization", org.ID, org.Name})
				tw.AppendRow(table.Row{"administrator", admin.ID, admin.Email})
				tw.AppendRow(table.Row{"schedule template", tmpl.ID, tmpl.Name})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&timezone, "timezone", fixtures.DefaultTimezone, "IANA time zone of the organization")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "administrator email")
	cmd.Flags().StringVar(&adminName, "admin-name", "Administrador", "administrator full name")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "initial administrator password")
	cmd.Flags().IntVar(&year, "year", 0, "year of the intensive summer period (default: current year)")
	_ = cmd.MarkFlagRequired("admin-email")
	_ = cmd.MarkFlagRequired("admin-password")
	return cmd
}
