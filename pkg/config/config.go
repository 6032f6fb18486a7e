package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Panel data locations
	Panel PanelConfig

	// Trading defaults
	Trading TradingConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// PanelConfig holds the file locations of the aligned panel and its inputs
type PanelConfig struct {
	// PanelPath is the aligned daily panel CSV the serving layer reads
	PanelPath string
	// ReturnsPath and FactsPath feed the offline panel build
	ReturnsPath string
	FactsPath   string
	// WidePath is where the pivoted fundamentals table is written
	WidePath string
	// TrajectoryDir receives live-simulator run logs
	TrajectoryDir string
}

// TradingConfig holds default thresholds and simulation parameters
type TradingConfig struct {
	BuyThreshold  float64
	SellThreshold float64
	QBuy          float64
	QSell         float64
	ThreshStart   string
	ThreshEnd     string

	InitialCash float64
	Sizing      string // one_share, all_in
	CostBps     float64
	Tickers     []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Panel: PanelConfig{
			PanelPath:     getEnv("PANEL_PATH", "data/processed/panel/daily_panel.csv"),
			ReturnsPath:   getEnv("RETURNS_PATH", "data/processed/prices/daily_returns.csv"),
			FactsPath:     getEnv("FACTS_PATH", "data/raw/companyfacts.csv"),
			WidePath:      getEnv("WIDE_PATH", "data/processed/panel/fundamentals_wide.csv"),
			TrajectoryDir: getEnv("TRAJECTORY_DIR", "results/runs"),
		},

		Trading: TradingConfig{
			BuyThreshold:  getEnvAsFloat("BUY_THRESHOLD", 0.25),
			SellThreshold: getEnvAsFloat("SELL_THRESHOLD", -0.25),
			QBuy:          getEnvAsFloat("Q_BUY", 0.7),
			QSell:         getEnvAsFloat("Q_SELL", 0.3),
			ThreshStart:   getEnv("THRESH_START", "2022-01-03"),
			ThreshEnd:     getEnv("THRESH_END", "2024-12-31"),
			InitialCash:   getEnvAsFloat("INITIAL_CASH", 1_000_000),
			Sizing:        getEnv("POSITION_SIZING", "one_share"),
			CostBps:       getEnvAsFloat("TRANSACTION_COST_BPS", 0),
			Tickers:       getEnvAsList("TICKERS", []string{"TSLA"}),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Panel.PanelPath == "" {
		return fmt.Errorf("PANEL_PATH is required")
	}

	if c.Trading.QBuy < 0 || c.Trading.QBuy > 1 || c.Trading.QSell < 0 || c.Trading.QSell > 1 {
		return fmt.Errorf("Q_BUY and Q_SELL must be within [0, 1]")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
