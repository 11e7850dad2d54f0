package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 環境変数の読み取りはこのパッケージでのみ行う
type Config struct {
	Env string // development, staging, production

	// Data layout
	DataDir string // raw snapshots, histories, registry
	SiteDir string // generated static pages

	// 金利計算用: 一般信用の年利（%）
	InterestRate float64

	// External sources
	InvestJP InvestJPConfig
	Gokigen  GokigenConfig
	Yahoo    YahooConfig

	// API server
	API APIConfig

	// Optional infrastructure
	Database DatabaseConfig
	Redis    RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// InvestJPConfig holds invest-jp (優待情報ページ) configuration
type InvestJPConfig struct {
	BaseURL        string
	AccessInterval time.Duration // crawl politeness interval
}

// GokigenConfig holds gokigen-life (在庫API) configuration
type GokigenConfig struct {
	BaseURL        string
	AccessInterval time.Duration
}

// YahooConfig holds Yahoo Finance quote configuration
type YahooConfig struct {
	BaseURL        string
	AccessInterval time.Duration
}

// APIConfig holds the HTTP API server configuration
type APIConfig struct {
	Port string
}

// DatabaseConfig holds PostgreSQL configuration for the archive.
// Archiving is optional: an empty URL disables it entirely.
type DatabaseConfig struct {
	URL string

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration for the optional price cache
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: os.Getenv() を呼ぶのはこの関数だけ
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		DataDir: getEnv("DATA_DIR", "data"),
		SiteDir: getEnv("SITE_DIR", "html"),

		InterestRate: getEnvAsFloat("INTEREST_RATE", 1.7),

		InvestJP: InvestJPConfig{
			BaseURL:        getEnv("INVEST_JP_BASE_URL", "https://www.invest-jp.net"),
			AccessInterval: getEnvAsDuration("INVEST_JP_ACCESS_INTERVAL", "3s"),
		},
		Gokigen: GokigenConfig{
			BaseURL:        getEnv("GOKIGEN_BASE_URL", "https://gokigen-life.tokyo"),
			AccessInterval: getEnvAsDuration("GOKIGEN_ACCESS_INTERVAL", "2s"),
		},
		Yahoo: YahooConfig{
			BaseURL:        getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			AccessInterval: getEnvAsDuration("YAHOO_ACCESS_INTERVAL", "300ms"),
		},

		API: APIConfig{
			Port: getEnv("PORT", "8089"),
		},

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

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
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

	if c.InterestRate <= 0 {
		return fmt.Errorf("INTEREST_RATE must be positive")
	}

	return nil
}

// Data layout accessors. The directory structure mirrors the data
// snapshots committed alongside the generated site.

// HTMLCacheDir is where raw invest-jp pages are cached per month.
func (c *Config) HTMLCacheDir() string { return filepath.Join(c.DataDir, "html_cache") }

// GyakuHibokuDir holds per-code borrow-cost history CSVs.
func (c *Config) GyakuHibokuDir() string { return filepath.Join(c.DataDir, "gyaku_hiboku") }

// DividendDir holds per-code dividend history CSVs.
func (c *Config) DividendDir() string { return filepath.Join(c.DataDir, "dividend") }

// ZaikoDir holds timestamped per-month inventory snapshots.
func (c *Config) ZaikoDir() string { return filepath.Join(c.DataDir, "ippan_zaiko") }

// StockPriceDir holds the live price snapshot.
func (c *Config) StockPriceDir() string { return filepath.Join(c.DataDir, "stock_price") }

// LatestPricesJSON is the live price snapshot file.
func (c *Config) LatestPricesJSON() string {
	return filepath.Join(c.StockPriceDir(), "latest_prices.json")
}

// KachiCSV is the entitlement registry file.
func (c *Config) KachiCSV() string { return filepath.Join(c.DataDir, "kachi.csv") }

// ParsedStocksJSON is the parsed invest-jp output.
func (c *Config) ParsedStocksJSON() string { return filepath.Join(c.DataDir, "parsed_stocks.json") }

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
