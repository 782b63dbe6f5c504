package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/blood-eligibility-server/internal/domain"
)

// Manager implements the ConfigManager interface using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file and environment.
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/blood-eligibility-server/")

	viper.SetEnvPrefix("BLOOD_ELIG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit", 50)
	viper.SetDefault("server.rate_burst", 100)

	// Model defaults
	viper.SetDefault("model.dir", "model")
	viper.SetDefault("model.path", "model/eligibility_gradient_boosting.model.json")
	viper.SetDefault("model.info_path", "model/model_info.json")
	viper.SetDefault("model.preload_on_start", true)

	// Cache defaults
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_memory_size", 1000)
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.redis_ttl", "24h")

	// Database (feedback store) defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.sqlite_path", "data/feedback.db")
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.migrations_path", "migrations")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("database.min_conns", 5)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns the HTTP server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetModelConfig returns the model artifact configuration.
func (m *Manager) GetModelConfig() *domain.ModelConfig {
	return &m.config.Model
}

// GetCacheConfig returns the verdict cache configuration.
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.config.Cache
}

// GetDatabaseConfig returns the feedback store configuration.
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Model.Path == "" && config.Model.Dir == "" {
		return fmt.Errorf("model path or model directory is required")
	}

	switch config.Database.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database driver: %s", config.Database.Driver)
	}
	if config.Database.Driver == "sqlite" && config.Database.SQLitePath == "" {
		return fmt.Errorf("sqlite database path is required")
	}
	if config.Database.Driver == "postgres" && config.Database.URL == "" {
		return fmt.Errorf("postgres database URL is required")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
