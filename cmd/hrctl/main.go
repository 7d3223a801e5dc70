package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/app"
	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "hrctl",
	Short: "Workforce administration CLI",
	Long: `hrctl runs maintenance tasks against the workforce database: schema
migrations, organization seeding, schedule templates, time bank postings and
attendance report exports.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("HRCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("org", "", "organization id")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("org", rootCmd.PersistentFlags().Lookup("org"))
	_ = viper.BindPFlag("database-url", rootCmd.PersistentFlags().Lookup("database-url"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(timeBankCmd())
	rootCmd.AddCommand(reportCmd())
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, err
	}
	if url := viper.GetString("database-url"); url != "" {
		cfg.Database.URL = url
	}
	return cfg, nil
}

func withDB(ctx context.Context, fn func(ctx context.Context, cfg *config.Config, db *database.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	return fn(ctx, cfg, db)
}

func withServices(ctx context.Context, fn func(ctx context.Context, s *app.Services) error) error {
	return withDB(ctx, func(ctx context.Context, cfg *config.Config, db *database.DB) error {
		services, err := app.NewServices(cfg, db)
		if err != nil {
			return err
		}
		defer services.Close()
		return fn(ctx, services)
	})
}

func requireOrg() (string, error) {
	org := viper.GetString("org")
	if org == "" {
		return "", fmt.Errorf("--org required")
	}
	return org, nil
}

func parseDate(raw string) (time.Time, error) {
	d, ok := validator.IsValidDate(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", raw)
	}
	return d, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	return tw
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, cfg *config.Config, db *database.DB) error {
				version, err := db.Migrate(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("schema at version %d\n", version)
				return nil
			})
		},
	}
}
