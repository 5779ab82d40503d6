package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Data sources
	DataDir   string // catalog.json, traders.json, listings.json, profile.json
	CacheFile string // persisted price lookup table
	UseCache  bool

	// Broker identity
	BrokerTraderID  string
	CustomTraderIDs []string

	// Pricing
	BuyRateDollar           float64
	BuyRateEuro             float64
	ProfitCommissionPercent float64

	// Flea market route
	UseFlea                  bool
	FleaUseLowestPrice       bool
	FleaIgnoreAttachments    bool // also prices only the root item and uses stack count in group totals
	FleaIgnoreFoundInSession bool
	FleaIgnorePlayerLevel    bool

	// Traders
	TradersIgnoreUnlocked bool

	// Client overrides
	UseClientOverrides bool

	// Ledger storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Data source defaults
		DataDir:   getEnvOrDefault("DATA_DIR", "./data"),
		CacheFile: getEnvOrDefault("CACHE_FILE", "./cache/price-table.json"),
		UseCache:  getBoolOrDefault("USE_CACHE", true),

		// Broker defaults
		BrokerTraderID:  getEnvOrDefault("BROKER_TRADER_ID", "broker"),
		CustomTraderIDs: getListOrDefault("CUSTOM_TRADER_IDS", nil),

		// Pricing defaults
		BuyRateDollar:           getFloat64OrDefault("BUY_RATE_DOLLAR", 1.0),
		BuyRateEuro:             getFloat64OrDefault("BUY_RATE_EURO", 1.0),
		ProfitCommissionPercent: getFloat64OrDefault("PROFIT_COMMISSION_PERCENT", 0.0),

		// Flea route defaults
		UseFlea:                  getBoolOrDefault("USE_FLEA", true),
		FleaUseLowestPrice:       getBoolOrDefault("FLEA_USE_LOWEST_PRICE", true),
		FleaIgnoreAttachments:    getBoolOrDefault("FLEA_IGNORE_ATTACHMENTS", false),
		FleaIgnoreFoundInSession: getBoolOrDefault("FLEA_IGNORE_FOUND_IN_SESSION", false),
		FleaIgnorePlayerLevel:    getBoolOrDefault("FLEA_IGNORE_PLAYER_LEVEL", false),

		// Trader defaults
		TradersIgnoreUnlocked: getBoolOrDefault("TRADERS_IGNORE_UNLOCKED", false),

		// Override defaults
		UseClientOverrides: getBoolOrDefault("USE_CLIENT_OVERRIDES", true),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "broker"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "broker123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "broker"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.BrokerTraderID == "" {
		return fmt.Errorf("BROKER_TRADER_ID cannot be empty")
	}

	if c.ProfitCommissionPercent < 0 || c.ProfitCommissionPercent >= 100 {
		return fmt.Errorf("PROFIT_COMMISSION_PERCENT must be in [0, 100), got %f", c.ProfitCommissionPercent)
	}

	if c.BuyRateDollar <= 0 || c.BuyRateEuro <= 0 {
		return fmt.Errorf("currency buy rates must be positive, got USD=%f EUR=%f", c.BuyRateDollar, c.BuyRateEuro)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
