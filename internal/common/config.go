package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production" - controls error detail in responses
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	CORS        CORSConfig      `toml:"cors"`
	FMP         FMPConfig       `toml:"fmp"`
	Collector   CollectorConfig `toml:"collector"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // "badger" (embedded) or "mongo"
	Badger BadgerConfig `toml:"badger"`
	Mongo  MongoConfig  `toml:"mongo"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// MongoConfig represents MongoDB-specific configuration
type MongoConfig struct {
	URI            string        `toml:"uri"`             // Connection string (mongodb://...)
	Database       string        `toml:"database"`        // Database name
	ConnectTimeout time.Duration `toml:"connect_timeout"` // Fixed connection-establishment timeout
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// CORSConfig contains cross-origin settings for the API surface
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"` // "*" allows any origin
}

// FMPConfig contains Financial Modeling Prep API configuration
type FMPConfig struct {
	APIKey         string        `toml:"api_key"`         // FMP API key (also FMP_API_KEY / BURSA_FMP_API_KEY env)
	BaseURL        string        `toml:"base_url"`        // API base URL
	RateLimit      time.Duration `toml:"rate_limit"`      // Minimum time between API requests
	RequestTimeout time.Duration `toml:"request_timeout"` // HTTP request timeout
	StatementLimit int           `toml:"statement_limit"` // Annual statements to pull per ticker
}

// CollectorConfig contains data collection configuration
type CollectorConfig struct {
	Schedule       string `toml:"schedule"`        // Cron schedule for daemon mode (empty = one-shot only)
	MaxConcurrency int    `toml:"max_concurrency"` // Concurrent per-ticker pulls
	SeedFile       string `toml:"seed_file"`       // Markets seed file (YAML or JSON)
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in bursa.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development", // Default to development mode - error detail included in 500 bodies
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger", // Embedded store by default so local runs need no external service
			Badger: BadgerConfig{
				Path: "./data",
			},
			Mongo: MongoConfig{
				URI:            "mongodb://localhost:27017",
				Database:       "bursa",
				ConnectTimeout: 10 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",                     // Info level for production (debug|info|warn|error)
			Format: "text",                     // Human-readable text format (text|json)
			Output: []string{"stdout", "file"}, // Log to both console and file
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		FMP: FMPConfig{
			APIKey:         "", // User must provide API key in config file or FMP_API_KEY
			BaseURL:        "https://financialmodelingprep.com/api/v3",
			RateLimit:      250 * time.Millisecond, // ~4 req/s, under the paid-tier quota
			RequestTimeout: 30 * time.Second,
			StatementLimit: 5,
		},
		Collector: CollectorConfig{
			Schedule:       "",
			MaxConcurrency: 4,
			SeedFile:       "",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env -> CLI
// Later files override earlier files.
// Example: LoadFromFiles("base.toml", "override.toml") - override.toml settings take precedence over base.toml
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: BURSA_ENV, fallback: GO_ENV)
	if env := os.Getenv("BURSA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("BURSA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("BURSA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if storageType := os.Getenv("BURSA_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if badgerPath := os.Getenv("BURSA_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if uri := os.Getenv("BURSA_MONGO_URI"); uri != "" {
		config.Storage.Mongo.URI = uri
	} else if uri := os.Getenv("MONGO_URI"); uri != "" {
		config.Storage.Mongo.URI = uri
	}
	if database := os.Getenv("BURSA_MONGO_DATABASE"); database != "" {
		config.Storage.Mongo.Database = database
	}
	if connectTimeout := os.Getenv("BURSA_MONGO_CONNECT_TIMEOUT"); connectTimeout != "" {
		if ct, err := time.ParseDuration(connectTimeout); err == nil {
			config.Storage.Mongo.ConnectTimeout = ct
		}
	}

	// Logging configuration
	if level := os.Getenv("BURSA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("BURSA_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("BURSA_LOG_OUTPUT"); output != "" {
		// Split comma-separated output types
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// CORS configuration
	if origins := os.Getenv("BURSA_CORS_ALLOWED_ORIGINS"); origins != "" {
		allowed := []string{}
		for _, o := range strings.Split(origins, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				allowed = append(allowed, trimmed)
			}
		}
		if len(allowed) > 0 {
			config.CORS.AllowedOrigins = allowed
		}
	}

	// FMP configuration
	if apiKey := os.Getenv("BURSA_FMP_API_KEY"); apiKey != "" {
		config.FMP.APIKey = apiKey
	} else if apiKey := os.Getenv("FMP_API_KEY"); apiKey != "" {
		config.FMP.APIKey = apiKey
	}
	if baseURL := os.Getenv("BURSA_FMP_BASE_URL"); baseURL != "" {
		config.FMP.BaseURL = baseURL
	}
	if rateLimit := os.Getenv("BURSA_FMP_RATE_LIMIT"); rateLimit != "" {
		if rl, err := time.ParseDuration(rateLimit); err == nil {
			config.FMP.RateLimit = rl
		}
	}
	if requestTimeout := os.Getenv("BURSA_FMP_REQUEST_TIMEOUT"); requestTimeout != "" {
		if rt, err := time.ParseDuration(requestTimeout); err == nil {
			config.FMP.RequestTimeout = rt
		}
	}
	if statementLimit := os.Getenv("BURSA_FMP_STATEMENT_LIMIT"); statementLimit != "" {
		if sl, err := strconv.Atoi(statementLimit); err == nil && sl > 0 {
			config.FMP.StatementLimit = sl
		}
	}

	// Collector configuration
	if schedule := os.Getenv("BURSA_COLLECTOR_SCHEDULE"); schedule != "" {
		config.Collector.Schedule = schedule
	}
	if maxConcurrency := os.Getenv("BURSA_COLLECTOR_MAX_CONCURRENCY"); maxConcurrency != "" {
		if mc, err := strconv.Atoi(maxConcurrency); err == nil && mc > 0 {
			config.Collector.MaxConcurrency = mc
		}
	}
	if seedFile := os.Getenv("BURSA_COLLECTOR_SEED_FILE"); seedFile != "" {
		config.Collector.SeedFile = seedFile
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ValidateCollectorSchedule validates a cron schedule expression and ensures minimum 15-minute interval
func ValidateCollectorSchedule(schedule string) error {
	// Parse the cron expression
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	// Check for minimum 15-minute interval so scheduled runs stay inside API quotas
	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]

	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 15-minute interval (every minute is not allowed)")
	}

	if strings.HasPrefix(minuteField, "*/") {
		intervalStr := strings.TrimPrefix(minuteField, "*/")
		interval, err := strconv.Atoi(intervalStr)
		if err == nil && interval < 15 {
			return fmt.Errorf("schedule interval must be at least 15 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
