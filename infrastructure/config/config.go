package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"crud-microservices/application/ports"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"serverAddress"`
	Environment   string `yaml:"environment"`

	// Offline runs every adapter in process: memory stores, local event
	// publisher and notifier, bcrypt accounts with HS256 tokens.
	Offline bool `yaml:"offline"`

	// AuthMode is "authorizer" (trust API Gateway claims) or "token"
	// (verify the bearer token in process).
	AuthMode string `yaml:"authMode"`

	// AWS configuration
	AWSRegion     string `yaml:"awsRegion"`
	UsersTable    string `yaml:"usersTable"`
	ProductsTable string `yaml:"productsTable"`
	OrdersTable   string `yaml:"ordersTable"`
	Bucket        string `yaml:"bucket"`
	S3Endpoint    string `yaml:"s3Endpoint"`
	EventBusName  string `yaml:"eventBusName"`
	QueueURL      string `yaml:"queueUrl"`

	// Identity
	CognitoUserPoolID string        `yaml:"cognitoUserPoolId"`
	CognitoClientID   string        `yaml:"cognitoClientId"`
	JWTSecret         string        `yaml:"jwtSecret"`
	TokenExpiry       time.Duration `yaml:"tokenExpiry"`
	OfflineUserID     string        `yaml:"offlineUserId"`

	// JWKSRefreshInterval is the minimum time between two key set fetches.
	// JWKSKeyTTL is how long a fetched key stays cached.
	JWKSRefreshInterval time.Duration `yaml:"jwksRefreshInterval"`
	JWKSKeyTTL          time.Duration `yaml:"jwksKeyTtl"`

	// PayloadVersion is the API Gateway payload format the Lambda receives:
	// "2.0" for HTTP APIs, "1.0" for REST APIs.
	PayloadVersion string `yaml:"payloadVersion"`

	// Logging
	LogLevel string `yaml:"logLevel"`

	// Feature flags
	EnableMetrics bool     `yaml:"enableMetrics"`
	EnableTracing bool     `yaml:"enableTracing"`
	CORSOrigins   []string `yaml:"corsOrigins"`

	// Rate limits per minute. Zero disables a limit.
	IPRateLimit    int    `yaml:"ipRateLimit"`
	UserRateLimit  int    `yaml:"userRateLimit"`
	RateLimitTable string `yaml:"rateLimitTable"`
}

// Auth modes.
const (
	AuthModeAuthorizer = "authorizer"
	AuthModeToken      = "token"
)

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ServerAddress:  ":3000",
		Environment:    "development",
		AuthMode:       AuthModeAuthorizer,
		AWSRegion:      "us-east-1",
		UsersTable:     "users",
		ProductsTable:  "products",
		OrdersTable:    "orders",
		Bucket:         "crud-files",
		EventBusName:   "default",
		TokenExpiry:    24 * time.Hour,
		OfflineUserID:  "test-user-id",
		PayloadVersion: "2.0",
		LogLevel:       "info",
		CORSOrigins:    []string{"*"},

		JWKSRefreshInterval: time.Minute,
		JWKSKeyTTL:          24 * time.Hour,
	}
}

// LoadConfig loads defaults, then the YAML file named by CONFIG_FILE if set,
// then environment variables.
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", getEnv("NODE_ENV", c.Environment))
	c.Offline = getEnvBool("IS_OFFLINE", c.Offline)
	c.AuthMode = getEnv("AUTH_MODE", c.AuthMode)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.UsersTable = getEnv("USERS_TABLE", c.UsersTable)
	c.ProductsTable = getEnv("PRODUCTS_TABLE", c.ProductsTable)
	c.OrdersTable = getEnv("ORDERS_TABLE", c.OrdersTable)
	c.Bucket = getEnv("S3_BUCKET", c.Bucket)
	c.S3Endpoint = getEnv("S3_ENDPOINT", c.S3Endpoint)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)
	c.QueueURL = getEnv("SQS_QUEUE", c.QueueURL)

	c.CognitoUserPoolID = getEnv("COGNITO_USER_POOL_ID", c.CognitoUserPoolID)
	c.CognitoClientID = getEnv("COGNITO_CLIENT_ID", c.CognitoClientID)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.TokenExpiry = getEnvDuration("TOKEN_EXPIRY", c.TokenExpiry)
	c.JWKSRefreshInterval = getEnvDuration("JWKS_REFRESH_INTERVAL", c.JWKSRefreshInterval)
	c.JWKSKeyTTL = getEnvDuration("JWKS_KEY_TTL", c.JWKSKeyTTL)
	c.OfflineUserID = getEnv("OFFLINE_USER_ID", c.OfflineUserID)

	c.PayloadVersion = getEnv("PAYLOAD_VERSION", c.PayloadVersion)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.CORSOrigins = splitList(origins)
	}

	c.IPRateLimit = getEnvInt("IP_RATE_LIMIT", c.IPRateLimit)
	c.UserRateLimit = getEnvInt("USER_RATE_LIMIT", c.UserRateLimit)
	c.RateLimitTable = getEnv("RATE_LIMIT_TABLE", c.RateLimitTable)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	var errs []error

	if c.IsProduction() && c.Offline {
		errs = append(errs, errors.New("offline mode is not allowed in production"))
	}

	switch c.AuthMode {
	case AuthModeAuthorizer:
	case AuthModeToken:
		if !c.Offline && c.CognitoUserPoolID == "" {
			errs = append(errs, errors.New("COGNITO_USER_POOL_ID is required for token auth"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeAuthorizer, AuthModeToken, c.AuthMode))
	}

	if c.Offline && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in offline mode"))
	}

	if !c.Offline {
		if c.UsersTable == "" || c.ProductsTable == "" || c.OrdersTable == "" {
			errs = append(errs, errors.New("USERS_TABLE, PRODUCTS_TABLE and ORDERS_TABLE are required"))
		}
		if c.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required"))
		}
		if c.CognitoClientID == "" {
			errs = append(errs, errors.New("COGNITO_CLIENT_ID is required"))
		}
	}

	if c.PayloadVersion != "1.0" && c.PayloadVersion != "2.0" {
		errs = append(errs, fmt.Errorf("PAYLOAD_VERSION must be 1.0 or 2.0, got %q", c.PayloadVersion))
	}

	if c.JWKSRefreshInterval <= 0 || c.JWKSKeyTTL <= 0 {
		errs = append(errs, errors.New("JWKS_REFRESH_INTERVAL and JWKS_KEY_TTL must be positive"))
	}

	if c.IPRateLimit < 0 || c.UserRateLimit < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}

	return errors.Join(errs...)
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Tables maps logical table names to physical ones.
func (c *Config) Tables() map[string]string {
	return map[string]string{
		ports.TableUsers:    c.UsersTable,
		ports.TableProducts: c.ProductsTable,
		ports.TableOrders:   c.OrdersTable,
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
