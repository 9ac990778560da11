package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/propmarket/apicore/internal/types/environments"
)

const (
	DefaultTimeout          = 10 * time.Second
	DefaultRetryAttempts    = 3
	DefaultRetryDelay       = 1 * time.Second
	DefaultBreakerThreshold = 5
	DefaultBreakerCooldown  = 30 * time.Second
	DefaultProbeSchedule    = "@every 2m"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	API         APIConfig
}

type ApiServerConfig struct {
	AllowedOrigins string
}

// APIConfig is the configuration surface of the request executor. When
// BaseURLOverride is set it replaces all environment auto-detection.
type APIConfig struct {
	BaseURLOverride  string
	Timeout          time.Duration `validate:"gt=0"`
	RetryAttempts    int           `validate:"gte=0"`
	RetryDelay       time.Duration `validate:"gt=0"`
	BreakerThreshold int           `validate:"gt=0"`
	BreakerCooldown  time.Duration `validate:"gt=0"`
	ProbeSchedule    string        `validate:"required"`
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// this will not override env variables if they already exist
	godotenv.Load(".env." + env)

	cfg := &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		API: APIConfig{
			BaseURLOverride:  os.Getenv("API_BASE_URL"),
			Timeout:          envVarMillis("API_TIMEOUT_MS", DefaultTimeout),
			RetryAttempts:    envVarAtoi("API_RETRY_ATTEMPTS", DefaultRetryAttempts),
			RetryDelay:       envVarMillis("API_RETRY_DELAY_MS", DefaultRetryDelay),
			BreakerThreshold: envVarAtoi("BREAKER_FAILURE_THRESHOLD", DefaultBreakerThreshold),
			BreakerCooldown:  envVarMillis("BREAKER_COOLDOWN_MS", DefaultBreakerCooldown),
			ProbeSchedule:    envVarStr("PROBE_SCHEDULE", DefaultProbeSchedule),
		},
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return cfg
}

func (c *AppConfig) Validate() error {
	return validator.New().Struct(c.API)
}

func envVarStr(envName, fallback string) string {
	value := os.Getenv(envName)
	if value == "" {
		return fallback
	}

	return value
}

func envVarAtoi(envName string, fallback int) int {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		panic(err)
	}

	return value
}

func envVarMillis(envName string, fallback time.Duration) time.Duration {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		panic(err)
	}

	return time.Duration(value) * time.Millisecond
}
