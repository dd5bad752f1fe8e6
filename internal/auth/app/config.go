package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/credential"
	"github.com/aussiebroadwan/surveybasket/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	JobsLocal = "local"
	JobsMQTT  = "mqtt"
)

type Config struct {
	JWTKey     string // HS256 signing key, at least 32 bytes
	JWTKeyFile string // Alternative to JWTKey: file holding the key
	Issuer     string // iss claim (default: SurveyBasketApp)
	Audience   string // aud claim (default: SurveyBasketApp Users)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database path (default: ./surveybasket.db)
	DatabaseURL    string // Postgres DSN, required for the postgres driver
	PepperFile     string // File holding the password hashing pepper (default: ./pepper)

	MaxFailedAccess int           // Failures before lockout (default: 5)
	LockoutDuration time.Duration // Lockout window (default: 5m)
	ActionCodeTTL   time.Duration // Lifetime of emailed codes (default: 24h)

	SeedFile       string // Optional YAML role definitions used by bootstrap
	BootstrapToken string // Optional: if unset, bootstrap is disabled
	AppOrigin      string // Front-end base URL for emailed links

	JobsBackend string // local or mqtt (default: local)
	JobsWorkers int    // Local queue workers (default: 2)
	MQTT        MQTTConfig

	SentryDSN string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	MigrateOnly          bool          // Apply migrations and exit
}

type MQTTConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Topic     string
}

func LoadConfig() Config {
	return Config{
		JWTKey:     os.Getenv("AUTH_JWT_KEY"),
		JWTKeyFile: os.Getenv("AUTH_JWT_KEY_FILE"),
		Issuer:     getEnvOrDefault("AUTH_ISSUER", jwtx.DefaultIssuer),
		Audience:   getEnvOrDefault("AUTH_AUDIENCE", jwtx.DefaultAudience),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "surveybasket.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		MaxFailedAccess: getEnvIntOrDefault("AUTH_MAX_FAILED_ACCESS", credential.DefaultMaxFailedAccess),
		LockoutDuration: getEnvDurationOrDefault("AUTH_LOCKOUT_DURATION", credential.DefaultLockoutDuration),
		ActionCodeTTL:   getEnvDurationOrDefault("AUTH_ACTION_CODE_TTL", credential.DefaultActionCodeTTL),

		SeedFile:       os.Getenv("AUTH_SEED_FILE"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),
		AppOrigin:      strings.TrimRight(getEnvOrDefault("APP_ORIGIN", "http://localhost:3000"), "/"),

		JobsBackend: strings.ToLower(getEnvOrDefault("JOBS_BACKEND", JobsLocal)),
		JobsWorkers: getEnvIntOrDefault("JOBS_WORKERS", 2),
		MQTT: MQTTConfig{
			BrokerURL: getEnvOrDefault("MQTT_BROKER_URL", "tcp://localhost:1883"),
			ClientID:  getEnvOrDefault("MQTT_CLIENT_ID", "surveybasket-auth"),
			Username:  os.Getenv("MQTT_USERNAME"),
			Password:  os.Getenv("MQTT_PASSWORD"),
			Topic:     getEnvOrDefault("MQTT_EMAIL_TOPIC", "surveybasket/jobs/email"),
		},

		SentryDSN: os.Getenv("SENTRY_DSN"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		MigrateOnly:          getEnvBoolOrDefault("MIGRATE_ONLY", false),
	}
}

// Validate reports settings that cannot start the service.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("AUTH_DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown AUTH_DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.JobsBackend {
	case JobsLocal, JobsMQTT:
	default:
		return fmt.Errorf("unknown JOBS_BACKEND %q", c.JobsBackend)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
