package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseValidConfig returns a fully-valid configuration object that callers
// can tweak inside table tests.
func baseValidConfig() Config {
	return Config{
		AppPort:           8080,
		AppEnv:            EnvProduction,
		PublicBaseURL:     "https://trailhead.example",
		BcryptCost:        12,
		LoginRatePerMin:   10,
		LogLevel:          "info",
		LogFormat:         "json",
		MongoURI:          "mongodb://localhost:27017",
		MongoDBName:       "test",
		JWTSecret:         "this-is-a-super-secret-jwt-key-with-32-plus-chars",
		JWTExpiryMinutes:  90,
		ResetTokenMinutes: 10,
		SMTPHost:          "localhost",
		SMTPPort:          1025,
		SMTPFrom:          "Trailhead <hello@trailhead.example>",
	}
}

// clearConfigEnvVars removes every environment variable that the Config loader
// consumes so each test starts with a clean slate.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		"APP_PORT",
		"APP_ENV",
		"PUBLIC_BASE_URL",
		"BCRYPT_COST",
		"LOGIN_RATE_PER_MIN",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"MONGO_URI",
		"MONGO_DB_NAME",
		"JWT_SECRET",
		"JWT_EXPIRY_MINUTES",
		"RESET_TOKEN_MINUTES",
		"SMTP_HOST",
		"SMTP_PORT",
		"SMTP_USERNAME",
		"SMTP_PASSWORD",
		"SMTP_FROM",
		"ROUTE_METRICS_ENABLED",
	} {
		if err := os.Unsetenv(k); err != nil {
			t.Logf("warning: failed to unset %s: %v", k, err)
		}
	}
}

func TestConfigLoadDefaults(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 10, cfg.LoginRatePerMin)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
	assert.Equal(t, "trailhead", cfg.MongoDBName)
	assert.Equal(t, 90*24*60, cfg.JWTExpiryMinutes)
	assert.Equal(t, 10, cfg.ResetTokenMinutes)
	assert.True(t, cfg.RouteMetricsEnabled)
}

func TestConfigLoadEnvOverrides(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()

	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_EXPIRY_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.AppPort)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 15, cfg.JWTExpiryMinutes)

	ResetCache()
}

func TestConfigLoadCaches(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()

	first, err := Load()
	require.NoError(t, err)

	// Later environment changes are invisible until the cache is reset.
	t.Setenv("APP_PORT", "1234")
	second, err := Load()
	require.NoError(t, err)
	assert.Equal(t, first.AppPort, second.AppPort)

	ResetCache()
	third, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1234, third.AppPort)

	ResetCache()
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero port", func(c *Config) { c.AppPort = 0 }, "APP_PORT"},
		{"empty env", func(c *Config) { c.AppEnv = "" }, "APP_ENV"},
		{"empty base url", func(c *Config) { c.PublicBaseURL = "" }, "PUBLIC_BASE_URL"},
		{"bcrypt too low", func(c *Config) { c.BcryptCost = 4 }, "BCRYPT_COST"},
		{"bcrypt too high", func(c *Config) { c.BcryptCost = 20 }, "BCRYPT_COST"},
		{"rate limit zero", func(c *Config) { c.LoginRatePerMin = 0 }, "LOGIN_RATE_PER_MIN"},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"zero expiry", func(c *Config) { c.JWTExpiryMinutes = 0 }, "JWT_EXPIRY_MINUTES"},
		{"zero reset window", func(c *Config) { c.ResetTokenMinutes = 0 }, "RESET_TOKEN_MINUTES"},
		{"empty smtp host", func(c *Config) { c.SMTPHost = "" }, "SMTP_HOST"},
		{"empty smtp from", func(c *Config) { c.SMTPFrom = "" }, "SMTP_FROM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseValidConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}
