package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	SMTP       SMTPConfig
	Cron       CronConfig
}

type DatabaseConfig struct {
	// URL overrides the individual connection fields when set.
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port            int
	Env             string
	LogLevel        string
	DefaultTimezone string
	DefaultLocale   string
	FrontendURL     string
	AllowedOrigins  []string
}

// AttendanceConfig tunes clock alerts and geolocation checks.
type AttendanceConfig struct {
	// ExcessiveDurationPercent of the expected journey after which an open
	// session is reported. Organizations may override it.
	ExcessiveDurationPercent int
	FallbackJourneyMinutes   int
	GeoCheckTimeout          time.Duration
}

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	InviteBaseURL string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type CronConfig struct {
	Enabled              bool
	TimeBankInterval     time.Duration
	StaleSessionInterval time.Duration
}

// Load reads the API server configuration.
func Load() (*Config, error) {
	return load(true)
}

// LoadCLI reads the configuration for hrctl, which never issues tokens.
func LoadCLI() (*Config, error) {
	return load(false)
}

func load(requireJWT bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using environment only")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "workforce"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:            appPort,
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DefaultTimezone: getEnv("APP_DEFAULT_TIMEZONE", "Europe/Madrid"),
		DefaultLocale:   getEnv("APP_DEFAULT_LOCALE", "es"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins:  getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{config.App.FrontendURL}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	excessive, err := getEnvInt("ATTENDANCE_EXCESSIVE_DURATION_PERCENT", 150)
	if err != nil {
		return nil, err
	}
	fallbackJourney, err := getEnvInt("ATTENDANCE_FALLBACK_JOURNEY_MINUTES", 480)
	if err != nil {
		return nil, err
	}
	geoTimeout, err := getEnvDuration("ATTENDANCE_GEO_CHECK_TIMEOUT", 2*time.Second)
	if err != nil {
		return nil, err
	}
	config.Attendance = AttendanceConfig{
		ExcessiveDurationPercent: excessive,
		FallbackJourneyMinutes:   fallbackJourney,
		GeoCheckTimeout:          geoTimeout,
	}

	// SMTP configuration
	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	config.SMTP = SMTPConfig{
		Host:          getEnv("SMTP_HOST", ""),
		Port:          smtpPort,
		Username:      getEnv("SMTP_USERNAME", ""),
		Password:      getEnv("SMTP_PASSWORD", ""),
		From:          getEnv("SMTP_FROM", "no-reply@workforce.local"),
		InviteBaseURL: getEnv("SMTP_INVITE_BASE_URL", config.App.FrontendURL+"/login"),
	}

	// Cron configuration
	timeBankInterval, err := getEnvDuration("CRON_TIME_BANK_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	staleInterval, err := getEnvDuration("CRON_STALE_SESSION_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	config.Cron = CronConfig{
		Enabled:              getEnv("CRON_ENABLED", "true") == "true",
		TimeBankInterval:     timeBankInterval,
		StaleSessionInterval: staleInterval,
	}

	// Validate required fields
	if !requireJWT && config.JWT.Secret == "" {
		config.JWT.Secret = "unused"
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Attendance.ExcessiveDurationPercent <= 0 {
		return fmt.Errorf("ATTENDANCE_EXCESSIVE_DURATION_PERCENT must be positive")
	}
	if c.Attendance.FallbackJourneyMinutes <= 0 {
		return fmt.Errorf("ATTENDANCE_FALLBACK_JOURNEY_MINUTES must be positive")
	}
	if _, err := time.LoadLocation(c.App.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid APP_DEFAULT_TIMEZONE: %w", err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
