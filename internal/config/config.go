package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Data source kinds
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config 应用配置
type Config struct {
	Port string `yaml:"port" validate:"required"`
	Env  string `yaml:"env" validate:"oneof=development production test"`

	DataSource     string `yaml:"data_source" validate:"oneof=csv sqlite"`
	TripStatsPath  string `yaml:"trip_stats_path" validate:"required_if=DataSource csv"`
	CongestionPath string `yaml:"congestion_path"`
	DBPath         string `yaml:"db_path" validate:"required_if=DataSource sqlite"`

	CacheSize int           `yaml:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `yaml:"cache_ttl" validate:"gte=0"`

	RateLimit  int           `yaml:"rate_limit" validate:"gte=0"` // 0 disables limiting
	RateWindow time.Duration `yaml:"rate_window" validate:"gt=0"`

	AllowedOrigins []string `yaml:"allowed_origins" validate:"min=1"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Port:           ":5001",
		Env:            "development",
		DataSource:     SourceCSV,
		TripStatsPath:  "./data/TLI_FINAL_output.csv",
		CongestionPath: "./data/CI_output.csv",
		DBPath:         "./data/tli.db",
		CacheSize:      1024,
		CacheTTL:       10 * time.Minute,
		RateLimit:      120,
		RateWindow:     time.Minute,
		AllowedOrigins: []string{"*"},
	}
}

// Load 加载配置: defaults, then .env, then the YAML file named by CONFIG_FILE
// (or ./config.yml when present), then environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()

	path, explicit := os.LookupEnv("CONFIG_FILE")
	if !explicit {
		path = "config.yml"
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.DataSource = getEnv("DATA_SOURCE", c.DataSource)
	c.TripStatsPath = getEnv("TRIP_STATS_PATH", c.TripStatsPath)
	c.CongestionPath = getEnv("CONGESTION_PATH", c.CongestionPath)
	c.DBPath = getEnv("DB_PATH", c.DBPath)

	if !strings.Contains(c.Port, ":") {
		c.Port = ":" + c.Port
	}

	var err error
	if c.CacheSize, err = getIntEnv("CACHE_SIZE", c.CacheSize); err != nil {
		return err
	}
	if c.CacheTTL, err = getSecondsEnv("CACHE_TTL_SECONDS", c.CacheTTL); err != nil {
		return err
	}
	if c.RateLimit, err = getIntEnv("RATE_LIMIT", c.RateLimit); err != nil {
		return err
	}
	if c.RateWindow, err = getSecondsEnv("RATE_WINDOW_SECONDS", c.RateWindow); err != nil {
		return err
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getSecondsEnv(key string, fallback time.Duration) (time.Duration, error) {
	n, err := getIntEnv(key, -1)
	if err != nil || n < 0 {
		return fallback, err
	}
	return time.Duration(n) * time.Second, nil
}
