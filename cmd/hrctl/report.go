package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cmlabs-hris/workforce-backend-go/internal/app"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Attendance reports"}
	cmd.AddCommand(reportExportCmd())
	return cmd
}

func reportExportCmd() *cobra.Command {
	var employeeID, period, date, format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an attendance report as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := requireOrg()
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(ctx context.Context, s *app.Services) error {
				file, err := s.Report.Export(ctx, user.SystemActor(org), employeeID, report.ExportRequest{
					SummaryRequest: report.SummaryRequest{Period: period, Date: date},
					Format:         format,
				})
				if err != nil {
					return err
				}

				path := out
				if path == "" {
					path = file.Filename
				} else if info, err := os.Stat(path); err == nil && info.IsDir() {
					path = filepath.Join(path, file.Filename)
				}
				if err := os.WriteFile(path, file.Data, 0o644); err != nil {
					return err
				}
				fmt.Printf("wrote %s (%d bytes)\n", path, len(file.Data))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id")
	cmd.Flags().StringVar(&period, "period", string(report.PeriodMonthly), "daily, weekly, monthly or yearly")
	cmd.Flags().StringVar(&date, "date", "", "any date inside the period (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&format, "format", string(report.FormatXLSX), "csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file or directory (default: generated file name)")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}
