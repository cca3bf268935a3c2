// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for our application
type Config struct {
	App           AppConfig
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Security      SecurityConfig
	Chain         ChainConfig
	Cart          CartConfig
	Notifications NotificationConfig
	Logging       LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// JWTConfig contains wallet-session token configuration
type JWTConfig struct {
	Secret        string
	SessionExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	RateLimitBurst     int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// ChainConfig contains blockchain gateway and contract configuration
type ChainConfig struct {
	GatewayURL           string
	Network              string
	MarketplaceAddress   string
	TokenContractAddress string
	TokenSymbol          string
	TokenDecimals        int
	TokensPerBase        decimal.Decimal // platform tokens per 1 base-currency unit
	ApprovalThreshold    decimal.Decimal // minimum allowance before purchases are allowed
	RequestTimeout       time.Duration
}

// CartConfig contains cart persistence configuration
type CartConfig struct {
	SessionTTL time.Duration
}

// NotificationConfig contains notification queue and poller configuration.
// StatsSource selects where the poller reads aggregate activity from:
// "gateway" asks the chain gateway, "local" aggregates the purchase log
// (for deployments whose gateway has no stats endpoint).
type NotificationConfig struct {
	MaxVisible   int
	DisplayTTL   time.Duration
	PollInterval time.Duration
	AmountEps    decimal.Decimal // minimum spend/receive delta worth reporting
	StatsSource  string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "AINexus Marketplace"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "ainexus_db"),
			User:         getEnv("DB_USER", "ainexus_user"),
			Password:     getEnv("DB_PASSWORD", "ainexus_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
			SessionExpiry: getEnvAsDuration("JWT_SESSION_EXPIRE", 24*time.Hour),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 50),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Chain: ChainConfig{
			GatewayURL:           getEnv("CHAIN_GATEWAY_URL", "http://localhost:8545"),
			Network:              getEnv("CHAIN_NETWORK", "sepolia"),
			MarketplaceAddress:   getEnv("MARKETPLACE_CONTRACT_ADDRESS", ""),
			TokenContractAddress: getEnv("TOKEN_CONTRACT_ADDRESS", ""),
			TokenSymbol:          getEnv("TOKEN_SYMBOL", "ANX"),
			TokenDecimals:        getEnvAsInt("TOKEN_DECIMALS", 18),
			TokensPerBase:        getEnvAsDecimal("TOKENS_PER_BASE_UNIT", decimal.NewFromInt(1000)),
			ApprovalThreshold:    getEnvAsDecimal("APPROVAL_THRESHOLD", decimal.NewFromInt(1000000)),
			RequestTimeout:       getEnvAsDuration("CHAIN_REQUEST_TIMEOUT", 30*time.Second),
		},
		Cart: CartConfig{
			SessionTTL: getEnvAsDuration("CART_SESSION_TTL", 30*24*time.Hour),
		},
		Notifications: NotificationConfig{
			MaxVisible:   getEnvAsInt("NOTIFICATION_MAX_VISIBLE", 5),
			DisplayTTL:   getEnvAsDuration("NOTIFICATION_DISPLAY_TTL", 5*time.Second),
			PollInterval: getEnvAsDuration("NOTIFICATION_POLL_INTERVAL", 20*time.Second),
			AmountEps:    getEnvAsDecimal("NOTIFICATION_AMOUNT_EPSILON", decimal.RequireFromString("0.001")),
			StatsSource:  getEnv("NOTIFICATION_STATS_SOURCE", "gateway"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate JWT secret
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	// Validate database configuration
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	// Validate Redis configuration
	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	// Validate server port
	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	// Validate chain configuration
	if c.Chain.GatewayURL == "" {
		return fmt.Errorf("CHAIN_GATEWAY_URL is required")
	}
	if !c.Chain.TokensPerBase.IsPositive() {
		return fmt.Errorf("TOKENS_PER_BASE_UNIT must be positive")
	}

	// Validate notification configuration
	if c.Notifications.StatsSource != "gateway" && c.Notifications.StatsSource != "local" {
		return fmt.Errorf("NOTIFICATION_STATS_SOURCE must be \"gateway\" or \"local\"")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
