package domain

import "time"

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Model    ModelConfig    `mapstructure:"model"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// ModelConfig locates the classifier artifact and its sidecar metadata.
type ModelConfig struct {
	// Dir is the directory searched for a fallback artifact when Path is
	// missing.
	Dir string `mapstructure:"dir"`
	// Path is the expected artifact file.
	Path string `mapstructure:"path"`
	// InfoPath is the optional sidecar metadata file.
	InfoPath string `mapstructure:"info_path"`
	// PreloadOnStart loads the artifact during process startup instead of
	// on the first decision request.
	PreloadOnStart bool `mapstructure:"preload_on_start"`
}

// CacheConfig configures the verdict cache tiers.
type CacheConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxMemorySize int           `mapstructure:"max_memory_size"`
	RedisURL      string        `mapstructure:"redis_url"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
}

// DatabaseConfig configures the feedback store backend.
type DatabaseConfig struct {
	// Driver selects the feedback store: "sqlite", "postgres" or "" to
	// disable feedback entirely.
	Driver string `mapstructure:"driver"`
	// SQLitePath is the SQLite database file (sqlite driver).
	SQLitePath string `mapstructure:"sqlite_path"`
	// URL is the PostgreSQL connection URL (postgres driver).
	URL string `mapstructure:"url"`
	// MigrationsPath is the directory holding SQL migrations (postgres
	// driver).
	MigrationsPath string `mapstructure:"migrations_path"`
	MaxConns       int32  `mapstructure:"max_conns"`
	MinConns       int32  `mapstructure:"min_conns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
