package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/app"
	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/workforce-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.App.LogLevel)})))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, err := db.Migrate(context.Background())
	if err != nil {
		slog.Error("Error applying migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version)

	services, err := app.NewServices(cfg, db)
	if err != nil {
		slog.Error("Error building services", "error", err)
		os.Exit(1)
	}

	router := appHTTP.NewRouter(cfg.App, services.JWT, services.Translator, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(services.Auth),
		Attendance:   appHTTP.NewAttendanceHandler(services.Attendance),
		Notification: appHTTP.NewNotificationHandler(services.Notification, services.JWT),
		Report:       appHTTP.NewReportHandler(services.Report),
		Schedule:     appHTTP.NewScheduleHandler(services.Schedule),
		Absence:      appHTTP.NewAbsenceHandler(services.Absence),
		TimeBank:     appHTTP.NewTimeBankHandler(services.TimeBank),
		Expense:      appHTTP.NewExpenseHandler(services.Expense),
		AdminUser:    appHTTP.NewAdminUserHandler(services.AdminUsers),
	})

	scheduler := services.Scheduler(cfg.Cron)
	if cfg.Cron.Enabled {
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	// Closing the hub ends open SSE streams so Shutdown does not wait on them.
	services.Close()
	if cfg.Cron.Enabled {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server stopped")
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
