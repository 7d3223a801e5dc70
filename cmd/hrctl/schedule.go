package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/workforce-backend-go/internal/app"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "schedule", Short: "Manage schedule templates"}
	cmd.AddCommand(scheduleImportCmd())
	cmd.AddCommand(scheduleResolveCmd())
	return cmd
}

func scheduleImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create a schedule template from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := requireOrg()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(ctx context.Context, s *app.Services) error {
				tmpl, err := s.Schedule.ImportTemplate(ctx, user.SystemActor(org), data)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tmpl)
				}
				tw := newTable()
				tw.SetTitle(fmt.Sprintf("%s (%s)", tmpl.Name, tmpl.ID))
				tw.AppendHeader(table.Row{"Period", "Type", "From", "To", "Days"})
				for _, p := range tmpl.Periods {
					tw.AppendRow(table.Row{p.Name, p.PeriodType, orDash(p.ValidFrom), orDash(p.ValidTo), len(p.Patterns)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML template file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func scheduleResolveCmd() *cobra.Command {
	var employeeID, date string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the effective schedule of an employee on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDate(date)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(ctx context.Context, s *app.Services) error {
				eff, err := s.Schedule.Resolve(ctx, employeeID, day)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(schedule.NewEffectiveScheduleResponse(eff))
				}
				printEffective(eff)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id")
	cmd.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func printEffective(eff schedule.EffectiveSchedule) {
	tw := newTable()
	tw.SetTitle(fmt.Sprintf("%s  %s", eff.Date.Format("2006-01-02"), eff.Source))
	tw.AppendRow(table.Row{"Template", orDash(eff.TemplateName)})
	if eff.PeriodType != nil {
		tw.AppendRow(table.Row{"Period", string(*eff.PeriodType)})
	}
	if eff.Absence != nil {
		tw.AppendRow(table.Row{"Absence", eff.Absence.AbsenceType})
	}
	tw.AppendRow(table.Row{"Working day", eff.IsWorkingDay})
	tw.AppendRow(table.Row{"Expected", validator.FormatMinutes(eff.ExpectedMinutes)})
	tw.AppendSeparator()
	for _, slot := range eff.TimeSlots {
		tw.AppendRow(table.Row{string(slot.SlotType), fmt.Sprintf("%s - %s", clock(slot.StartMinutes), clock(slot.EndMinutes))})
	}
	tw.Render()
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
