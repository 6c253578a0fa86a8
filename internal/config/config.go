package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Listings   ListingsConfig
	Chat       ChatConfig
	Recommend  RecommendConfig
	Redis      RedisConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence over the fields below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// ListingsConfig holds listing page configuration
type ListingsConfig struct {
	DefaultCount int
	MaxCount     int
}

// ChatConfig holds the conversation timing configuration
type ChatConfig struct {
	TypingDelay       time.Duration
	InterstitialDelay time.Duration
	CloseDelay        time.Duration
	SessionIdleTTL    time.Duration
	SweepInterval     time.Duration
}

// RecommendConfig holds recommendation configuration
type RecommendConfig struct {
	APIURL         string // remote recommender; empty means the built-in one
	Timeout        int    // seconds
	TopN           int
	MaxDrivingM    float64
	CacheTTL       time.Duration
	SubmitOnFinish bool
}

// RedisConfig holds Redis configuration for the recommendation cache
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Enabled  bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "rentrobo"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 5000),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Listings: ListingsConfig{
			DefaultCount: getEnvAsInt("LISTINGS_DEFAULT_COUNT", 9),
			MaxCount:     getEnvAsInt("LISTINGS_MAX_COUNT", 100),
		},
		Chat: ChatConfig{
			TypingDelay:       getEnvAsDuration("CHAT_TYPING_DELAY", 1000*time.Millisecond),
			InterstitialDelay: getEnvAsDuration("CHAT_INTERSTITIAL_DELAY", 1200*time.Millisecond),
			CloseDelay:        getEnvAsDuration("CHAT_CLOSE_DELAY", 500*time.Millisecond),
			SessionIdleTTL:    getEnvAsDuration("CHAT_SESSION_IDLE_TTL", 30*time.Minute),
			SweepInterval:     getEnvAsDuration("CHAT_SWEEP_INTERVAL", time.Minute),
		},
		Recommend: RecommendConfig{
			APIURL:         getEnv("RECOMMEND_API_URL", ""),
			Timeout:        getEnvAsInt("RECOMMEND_TIMEOUT", 30),
			TopN:           getEnvAsInt("RECOMMEND_TOP_N", 10),
			MaxDrivingM:    getEnvAsFloat("RECOMMEND_MAX_DRIVING_M", 25000),
			CacheTTL:       getEnvAsDuration("RECOMMEND_CACHE_TTL", 10*time.Minute),
			SubmitOnFinish: getEnvAsBool("RECOMMEND_ON_CHAT_COMPLETE", true),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnv("REDIS_ADDR", "") != "",
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if cfg.Listings.DefaultCount <= 0 || cfg.Listings.DefaultCount > cfg.Listings.MaxCount {
		return nil, fmt.Errorf("invalid LISTINGS_DEFAULT_COUNT %d (max %d)", cfg.Listings.DefaultCount, cfg.Listings.MaxCount)
	}
	if cfg.Chat.SweepInterval <= 0 {
		return nil, fmt.Errorf("invalid CHAT_SWEEP_INTERVAL %s", cfg.Chat.SweepInterval)
	}
	if cfg.Recommend.TopN <= 0 {
		return nil, fmt.Errorf("invalid RECOMMEND_TOP_N %d", cfg.Recommend.TopN)
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer value, using default", "key", key, "default", defaultValue)
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
		slog.Warn("invalid float value, using default", "key", key, "default", defaultValue)
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
		slog.Warn("invalid bool value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("1.5s") or a bare integer in milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}
