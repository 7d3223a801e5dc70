package main

import (
	"context"

	"github.com/cmlabs-hris/workforce-backend-go/internal/app"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func timeBankCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "timebank", Short: "Time bank postings and balances"}
	cmd.AddCommand(timeBankPostCmd())
	cmd.AddCommand(timeBankBalanceCmd())
	return cmd
}

func timeBankPostCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post one work date for every active employee",
		Long:  "Post one work date for every active employee. Re-posting a date only appends what changed since the last run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := requireOrg()
			if err != nil {
				return err
			}
			day, err := parseDate(date)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(ctx context.Context, s *app.Services) error {
				result, err := s.TimeBank.PostDate(ctx, org, day)
				if viper.GetBool("json") {
					if perr := printJSON(result); perr != nil {
						return perr
					}
					return err
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Date", "Employees", "Entries", "Skipped"})
				tw.AppendRow(table.Row{result.WorkDate, result.EmployeesPosted, result.EntriesAppended, result.Skipped})
				tw.Render()
				return err
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "work date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func timeBankBalanceCmd() *cobra.Command {
	var employeeID string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the time bank balance of an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := requireOrg()
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(ctx context.Context, s *app.Services) error {
				balance, err := s.TimeBank.Balance(ctx, user.SystemActor(org), employeeID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(balance)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Employee", "Balance", "Minutes"})
				tw.AppendRow(table.Row{balance.EmployeeID, balance.Balance, balance.BalanceMinutes})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}
