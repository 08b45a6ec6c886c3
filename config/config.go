package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Dispatch    DispatchConfig
	Health      HealthConfig
	Probe       ProbeConfig
	LogLevel    string
	Environment string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds MongoDB configuration
type DatabaseConfig struct {
	URI            string
	Database       string
	MaxPoolSize    int
	ConnectTimeout time.Duration
}

// AuthConfig holds JWT authentication configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// DispatchConfig holds model dispatch configuration
type DispatchConfig struct {
	AttemptTimeout time.Duration
	RetryOnFailure int
}

// HealthConfig holds endpoint health tracking thresholds
type HealthConfig struct {
	DegradedThreshold    int
	UnavailableThreshold int
	RecoveryThreshold    int
	LatencySmoothing     float64
}

// ProbeConfig holds connectivity probe configuration
type ProbeConfig struct {
	Timeout       time.Duration
	MaxTokens     int
	MaxConcurrent int
	PreviewLength int
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env if it exists; real env vars take precedence
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DATABASE", "agentadmin"),
			MaxPoolSize:    getEnvAsInt("MONGO_MAX_POOL_SIZE", 100),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TOKEN_TTL", 24*time.Hour),
		},
		Dispatch: DispatchConfig{
			AttemptTimeout: getEnvAsDuration("DISPATCH_ATTEMPT_TIMEOUT", 60*time.Second),
			RetryOnFailure: getEnvAsInt("DISPATCH_RETRY_ON_FAILURE", 1),
		},
		Health: HealthConfig{
			DegradedThreshold:    getEnvAsInt("HEALTH_DEGRADED_THRESHOLD", 3),
			UnavailableThreshold: getEnvAsInt("HEALTH_UNAVAILABLE_THRESHOLD", 5),
			RecoveryThreshold:    getEnvAsInt("HEALTH_RECOVERY_THRESHOLD", 1),
			LatencySmoothing:     getEnvAsFloat("HEALTH_LATENCY_SMOOTHING", 0.3),
		},
		Probe: ProbeConfig{
			Timeout:       getEnvAsDuration("PROBE_TIMEOUT", 30*time.Second),
			MaxTokens:     getEnvAsInt("PROBE_MAX_TOKENS", 100),
			MaxConcurrent: getEnvAsInt("PROBE_MAX_CONCURRENT", 8),
			PreviewLength: getEnvAsInt("PROBE_PREVIEW_LENGTH", 200),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("mongodb URI is required: set MONGO_URI")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("mongodb database name is required")
	}
	if c.Health.DegradedThreshold <= 0 || c.Health.UnavailableThreshold <= c.Health.DegradedThreshold {
		return fmt.Errorf("health thresholds must satisfy 0 < degraded < unavailable")
	}
	if c.Health.LatencySmoothing <= 0 || c.Health.LatencySmoothing > 1 {
		return fmt.Errorf("latency smoothing must be in (0, 1]")
	}
	if c.Dispatch.RetryOnFailure < 0 {
		return fmt.Errorf("dispatch retry count cannot be negative")
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required in production")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogString returns a safe connection string for logging (no credentials)
func (c *DatabaseConfig) LogString() string {
	u, err := url.Parse(c.URI)
	if err != nil {
		return fmt.Sprintf("database=%s", c.Database)
	}
	return fmt.Sprintf("host=%s database=%s", u.Host, c.Database)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
