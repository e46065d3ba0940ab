package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Payroll    PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds token verification configuration. Tokens are issued by the
// identity collaborator; this service only verifies them.
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// AttendanceConfig holds company-wide presence policy defaults.
type AttendanceConfig struct {
	StandardDayMinutes int
	GraceMinutes       int
	HalfDayMinutes     int
	SweepIntervalHours int
}

// PayrollConfig holds payroll computation policy.
type PayrollConfig struct {
	OvertimeMultiplier   string // decimal, e.g. "1.5"
	StandardMonthlyHours int
}

func Load() (*Config, error) {
	// Missing .env is fine in containerized deployments; env vars win anyway.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "workforce_ledger"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET", ""),
		AccessExpiration: accessExpiration,
	}
	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	standardDay, err := strconv.Atoi(getEnv("ATTENDANCE_STANDARD_DAY_MINUTES", "480"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_STANDARD_DAY_MINUTES: %w", err)
	}
	grace, err := strconv.Atoi(getEnv("ATTENDANCE_GRACE_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_GRACE_MINUTES: %w", err)
	}
	halfDay, err := strconv.Atoi(getEnv("ATTENDANCE_HALF_DAY_MINUTES", "240"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_HALF_DAY_MINUTES: %w", err)
	}
	sweepInterval, err := strconv.Atoi(getEnv("ATTENDANCE_SWEEP_INTERVAL_HOURS", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_SWEEP_INTERVAL_HOURS: %w", err)
	}

	config.Attendance = AttendanceConfig{
		StandardDayMinutes: standardDay,
		GraceMinutes:       grace,
		HalfDayMinutes:     halfDay,
		SweepIntervalHours: sweepInterval,
	}

	monthlyHours, err := strconv.Atoi(getEnv("PAYROLL_STANDARD_MONTHLY_HOURS", "173"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_STANDARD_MONTHLY_HOURS: %w", err)
	}

	config.Payroll = PayrollConfig{
		OvertimeMultiplier:   getEnv("PAYROLL_OVERTIME_MULTIPLIER", "1.5"),
		StandardMonthlyHours: monthlyHours,
	}

	return config, nil
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host,
		c.Database.Port, c.Database.Name, c.Database.SSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
