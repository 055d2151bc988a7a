package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crud-microservices/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Offline = true
	cfg.JWTSecret = "secret"
	return cfg
}

// TestLoadConfig tests basic configuration loading from environment variables.
func TestLoadConfig(t *testing.T) {
	t.Setenv("IS_OFFLINE", "true")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("USERS_TABLE", "users-dev")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("USER_RATE_LIMIT", "120")
	t.Setenv("JWKS_REFRESH_INTERVAL", "15m")
	t.Setenv("JWKS_KEY_TTL", "6h")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Offline)
	assert.Equal(t, "users-dev", cfg.UsersTable)
	assert.Equal(t, "products", cfg.ProductsTable)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 120, cfg.UserRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.JWKSRefreshInterval)
	assert.Equal(t, 6*time.Hour, cfg.JWKSKeyTTL)
	assert.Equal(t, config.AuthModeAuthorizer, cfg.AuthMode)
}

func TestLoadConfig_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
offline: true
jwtSecret: from-file
authMode: token
bucket: file-bucket
tokenExpiry: 2h
corsOrigins:
  - https://app.example.com
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("S3_BUCKET", "env-bucket")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, config.AuthModeToken, cfg.AuthMode)
	assert.Equal(t, "env-bucket", cfg.Bucket)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
}

func TestLoadConfig_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("offline: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

// TestConfigValidation tests configuration validation.
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid offline config",
			mutate: func(*config.Config) {},
		},
		{
			name: "offline in production",
			mutate: func(c *config.Config) {
				c.Environment = "production"
			},
			wantErr: "offline mode is not allowed in production",
		},
		{
			name: "offline without secret",
			mutate: func(c *config.Config) {
				c.JWTSecret = ""
			},
			wantErr: "JWT_SECRET is required",
		},
		{
			name: "managed token mode without pool",
			mutate: func(c *config.Config) {
				c.Offline = false
				c.AuthMode = config.AuthModeToken
				c.CognitoClientID = "client"
			},
			wantErr: "COGNITO_USER_POOL_ID is required",
		},
		{
			name: "managed without client",
			mutate: func(c *config.Config) {
				c.Offline = false
			},
			wantErr: "COGNITO_CLIENT_ID is required",
		},
		{
			name: "unknown auth mode",
			mutate: func(c *config.Config) {
				c.AuthMode = "basic"
			},
			wantErr: "AUTH_MODE must be",
		},
		{
			name: "negative rate limit",
			mutate: func(c *config.Config) {
				c.IPRateLimit = -1
			},
			wantErr: "rate limits must not be negative",
		},
		{
			name: "zero jwks refresh interval",
			mutate: func(c *config.Config) {
				c.JWKSRefreshInterval = 0
			},
			wantErr: "JWKS_REFRESH_INTERVAL and JWKS_KEY_TTL must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := offlineConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTables(t *testing.T) {
	cfg := config.Defaults()
	cfg.OrdersTable = "orders-prod"

	tables := cfg.Tables()
	assert.Equal(t, "users", tables["users"])
	assert.Equal(t, "orders-prod", tables["orders"])
}
