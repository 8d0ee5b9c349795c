package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageTypePostgres = "postgres"
	StorageTypeMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Logging  LoggingConfig
	Matching MatchingConfig
	Events   EventsConfig

	GeminiAPIKey string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	Type string
}

type LoggingConfig struct {
	Level string
}

// MatchingConfig tunes candidate selection and store access.
type MatchingConfig struct {
	DefaultLimit    int
	AuxLimit        int
	MaxLimit        int
	StoreTimeout    time.Duration
	CacheTTL        time.Duration
	FallbackEnabled bool
}

type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	config := FromViper(v)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("STORAGE_TYPE", StorageTypePostgres)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MATCH_DEFAULT_LIMIT", 50)
	v.SetDefault("MATCH_AUX_LIMIT", 10)
	v.SetDefault("MATCH_MAX_LIMIT", 100)
	v.SetDefault("MATCH_STORE_TIMEOUT", 3*time.Second)
	v.SetDefault("MATCH_CACHE_TTL", 30*time.Second)
	v.SetDefault("MATCH_FALLBACK_ENABLED", true)
	v.SetDefault("MATCH_EXCHANGE", "match_events")
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)
	return &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("SERVER_ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Storage: StorageConfig{
			Type: v.GetString("STORAGE_TYPE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Matching: MatchingConfig{
			DefaultLimit:    v.GetInt("MATCH_DEFAULT_LIMIT"),
			AuxLimit:        v.GetInt("MATCH_AUX_LIMIT"),
			MaxLimit:        v.GetInt("MATCH_MAX_LIMIT"),
			StoreTimeout:    v.GetDuration("MATCH_STORE_TIMEOUT"),
			CacheTTL:        v.GetDuration("MATCH_CACHE_TTL"),
			FallbackEnabled: v.GetBool("MATCH_FALLBACK_ENABLED"),
		},
		Events: EventsConfig{
			RabbitMQURL: v.GetString("RABBITMQ_URL"),
			Exchange:    v.GetString("MATCH_EXCHANGE"),
		},
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
	}
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageTypePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	m := c.Matching
	if m.MaxLimit <= 0 {
		return fmt.Errorf("MATCH_MAX_LIMIT must be positive")
	}
	if m.DefaultLimit <= 0 || m.DefaultLimit > m.MaxLimit {
		return fmt.Errorf("MATCH_DEFAULT_LIMIT must be between 1 and %d", m.MaxLimit)
	}
	if m.AuxLimit <= 0 || m.AuxLimit > m.MaxLimit {
		return fmt.Errorf("MATCH_AUX_LIMIT must be between 1 and %d", m.MaxLimit)
	}
	if m.StoreTimeout < 0 {
		return fmt.Errorf("MATCH_STORE_TIMEOUT must not be negative")
	}
	if c.Redis.Enabled && m.CacheTTL <= 0 {
		return fmt.Errorf("MATCH_CACHE_TTL must be positive when redis is enabled")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// GetAddr returns the HTTP listen address
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
