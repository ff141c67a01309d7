// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration. It is read once per run and never
// mutated by the core.
type Config struct {
	// Groww API credentials. Required unless DevMode is set (research mode
	// runs against stubbed gateways and places no orders).
	GrowwAPIKey    string `validate:"required_unless=DevMode true"`
	GrowwAPISecret string `validate:"required_unless=DevMode true"`

	// TargetReturn is the fractional return the strategy aims for within
	// HorizonDays (e.g. 0.15 for 15% in 30 days).
	TargetReturn float64 `validate:"gt=0,lte=1"`
	HorizonDays  int     `validate:"gt=0"`

	// MaxInvestmentAmount caps both the sell-side value freed per rebalance
	// and the order-size sanity check, in INR.
	MaxInvestmentAmount float64 `validate:"gt=0"`

	// RiskThreshold is the fractional risk score above which buys are
	// discouraged.
	RiskThreshold float64 `validate:"gte=0,lte=1"`

	// ScreeningIterations is the number of universe slices per screening run.
	ScreeningIterations int `validate:"gt=0"`

	// UniverseFile optionally overrides the built-in NSE universe with a
	// symbol-per-line file.
	UniverseFile string

	// Cron schedules (seconds field included). An empty schedule disables
	// the job.
	ScreeningSchedule string
	RebalanceSchedule string

	// FetchHistory enables candle-history enrichment (RSI, trend) per
	// analyzed symbol, at the cost of one extra gateway call per symbol.
	FetchHistory bool

	DataDir  string
	Port     int
	LogLevel string
	DevMode  bool
}

// Load reads configuration from environment variables (including a .env file
// if present) and validates it. Percentage-style variables
// (MIN_EXPECTED_RETURN, RISK_THRESHOLD) are given as percentages and
// converted to decimals here, once, at the boundary.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("EQUISCAN_DATA_DIR", "./data")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		GrowwAPIKey:         getEnv("GROWW_API_KEY", ""),
		GrowwAPISecret:      getEnv("GROWW_API_SECRET", ""),
		TargetReturn:        getEnvAsFloat("MIN_EXPECTED_RETURN", 15.0) / 100.0,
		HorizonDays:         getEnvAsInt("EXPECTED_RETURN_DAYS", 30),
		MaxInvestmentAmount: getEnvAsFloat("MAX_INVESTMENT_AMOUNT", 50000.0),
		RiskThreshold:       getEnvAsFloat("RISK_THRESHOLD", 15.0) / 100.0,
		ScreeningIterations: getEnvAsInt("SCREENING_ITERATIONS", 10),
		UniverseFile:        getEnv("UNIVERSE_FILE", ""),
		ScreeningSchedule:   getEnv("SCREENING_SCHEDULE", "0 15 9 * * MON-FRI"),
		RebalanceSchedule:   getEnv("REBALANCE_SCHEDULE", "0 30 9 * * MON"),
		FetchHistory:        getEnvAsBool("FETCH_HISTORY", false),
		DataDir:             dataDir,
		Port:                getEnvAsInt("PORT", 8080),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration and fails fast on anything that would
// make a run unsafe (missing credentials, undefined target return). A run
// with invalid configuration must not reach the network.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
