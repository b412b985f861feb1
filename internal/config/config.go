package config

import (
	"errors"
	"sync"

	"github.com/spf13/viper"
)

// Env values recognized by the error renderer. Anything that is not
// EnvDevelopment is treated as production.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration
type Config struct {
	AppPort             int    `mapstructure:"APP_PORT"`
	AppEnv              string `mapstructure:"APP_ENV"`
	PublicBaseURL       string `mapstructure:"PUBLIC_BASE_URL"`
	BcryptCost          int    `mapstructure:"BCRYPT_COST"`
	LoginRatePerMin     int    `mapstructure:"LOGIN_RATE_PER_MIN"`
	LogLevel            string `mapstructure:"LOG_LEVEL"`
	LogFormat           string `mapstructure:"LOG_FORMAT"`
	MongoURI            string `mapstructure:"MONGO_URI"`
	MongoDBName         string `mapstructure:"MONGO_DB_NAME"`
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	JWTExpiryMinutes    int    `mapstructure:"JWT_EXPIRY_MINUTES"`
	ResetTokenMinutes   int    `mapstructure:"RESET_TOKEN_MINUTES"`
	SMTPHost            string `mapstructure:"SMTP_HOST"`
	SMTPPort            int    `mapstructure:"SMTP_PORT"`
	SMTPUsername        string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword        string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom            string `mapstructure:"SMTP_FROM"`
	RouteMetricsEnabled bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
}

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file.
// It caches the result for subsequent calls.
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Double-check in case another goroutine loaded it while we waited for the lock
	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOGIN_RATE_PER_MIN", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB_NAME", "trailhead")
	v.SetDefault("JWT_SECRET", "this-is-a-default-jwt-secret-key-with-32-plus-characters")
	v.SetDefault("JWT_EXPIRY_MINUTES", 90*24*60)
	v.SetDefault("RESET_TOKEN_MINUTES", 10)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 1025)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "Trailhead <hello@trailhead.example>")
	v.SetDefault("ROUTE_METRICS_ENABLED", true)

	// Configure Viper to read from .env file (if present)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	// Override with OS environment variables
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// IsDevelopment reports whether detailed errors may be exposed to clients.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 {
		return errors.New("APP_PORT must be greater than 0")
	}
	if c.AppEnv == "" {
		return errors.New("APP_ENV cannot be empty")
	}
	if c.PublicBaseURL == "" {
		return errors.New("PUBLIC_BASE_URL cannot be empty")
	}
	if c.BcryptCost < 10 || c.BcryptCost > 16 {
		return errors.New("BCRYPT_COST must be between 10 and 16")
	}
	if c.LoginRatePerMin < 1 {
		return errors.New("LOGIN_RATE_PER_MIN must be greater than or equal to 1")
	}
	if c.LogLevel == "" {
		return errors.New("LOG_LEVEL cannot be empty")
	}
	if c.LogFormat == "" {
		return errors.New("LOG_FORMAT cannot be empty")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI cannot be empty")
	}
	if c.MongoDBName == "" {
		return errors.New("MONGO_DB_NAME cannot be empty")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.JWTExpiryMinutes <= 0 {
		return errors.New("JWT_EXPIRY_MINUTES must be greater than 0")
	}
	if c.ResetTokenMinutes <= 0 {
		return errors.New("RESET_TOKEN_MINUTES must be greater than 0")
	}
	if c.SMTPHost == "" {
		return errors.New("SMTP_HOST cannot be empty")
	}
	if c.SMTPPort <= 0 {
		return errors.New("SMTP_PORT must be greater than 0")
	}
	if c.SMTPFrom == "" {
		return errors.New("SMTP_FROM cannot be empty")
	}
	return nil
}
