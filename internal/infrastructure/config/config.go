package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	API       APIConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Checkout  CheckoutConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds the local HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// APIConfig describes the remote catalog, order and payment service
type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration // per request
	RetryWait  time.Duration // wait before retrying an idempotent GET
	MaxRetries int           // retries for idempotent GETs; POSTs are never retried
	Token      string        // fallback bearer token when the request carries none
}

// Storage drivers
const (
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
	StorageDriverS3       = "s3"
	StorageDriverMemory   = "memory"
)

// StorageConfig selects where the cart snapshot and correlation record live
type StorageConfig struct {
	Driver     string
	SQLitePath string
	KeyPrefix  string // redis and s3 key prefix
	S3         S3Config
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// DatabaseConfig holds postgres connection settings for the postgres storage driver
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CheckoutConfig tunes the checkout coordinator
type CheckoutConfig struct {
	ConfirmationDelay    time.Duration // delay before showing the confirmation view after a simulated payment
	ConfirmationPath     string
	ReconcileConcurrency int
	CrossTabLock         bool
	LockTTL              time.Duration
	MockGatewayEnabled   bool
	RequireAuth          bool
	PaymentPollInterval  time.Duration // background status poll while a payment is pending; negative disables
	CompletionTimeout    time.Duration // bounds order creation and the writes after it once detached from the request
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_API_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/storefront")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		API: APIConfig{
			BaseURL:    v.GetString("api.base_url"),
			Timeout:    v.GetDuration("api.timeout"),
			RetryWait:  v.GetDuration("api.retry_wait"),
			MaxRetries: v.GetInt("api.max_retries"),
			Token:      v.GetString("api.token"),
		},
		Storage: StorageConfig{
			Driver:     v.GetString("storage.driver"),
			SQLitePath: v.GetString("storage.sqlite_path"),
			KeyPrefix:  v.GetString("storage.key_prefix"),
			S3: S3Config{
				Bucket:       v.GetString("storage.s3.bucket"),
				Region:       v.GetString("storage.s3.region"),
				Endpoint:     v.GetString("storage.s3.endpoint"),
				AccessKey:    v.GetString("storage.s3.access_key"),
				SecretKey:    v.GetString("storage.s3.secret_key"),
				UsePathStyle: v.GetBool("storage.s3.use_path_style"),
			},
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Checkout: CheckoutConfig{
			ConfirmationDelay:    v.GetDuration("checkout.confirmation_delay"),
			ConfirmationPath:     v.GetString("checkout.confirmation_path"),
			ReconcileConcurrency: v.GetInt("checkout.reconcile_concurrency"),
			CrossTabLock:         v.GetBool("checkout.cross_tab_lock"),
			LockTTL:              v.GetDuration("checkout.lock_ttl"),
			MockGatewayEnabled:   v.GetBool("checkout.mock_gateway_enabled"),
			RequireAuth:          v.GetBool("checkout.require_auth"),
			PaymentPollInterval:  v.GetDuration("checkout.payment_poll_interval"),
			CompletionTimeout:    v.GetDuration("checkout.completion_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
	}

	applyDefaults(cfg)

	// Booleans whose default is not false
	if !v.IsSet("checkout.mock_gateway_enabled") {
		cfg.Checkout.MockGatewayEnabled = !cfg.IsProduction()
	}
	if !v.IsSet("checkout.require_auth") {
		cfg.Checkout.RequireAuth = true
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the app runs in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "gastroshop-storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8081"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// a checkout runs reconciliation, order and payment calls in one request
		cfg.HTTP.WriteTimeout = 45 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 10 * time.Second
	}
	if cfg.API.RetryWait == 0 {
		cfg.API.RetryWait = 250 * time.Millisecond
	}
	if cfg.API.MaxRetries == 0 {
		cfg.API.MaxRetries = 1
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverSQLite
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "storefront.db"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "storefront:"
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = "us-east-1"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Checkout.ConfirmationDelay == 0 {
		cfg.Checkout.ConfirmationDelay = 2 * time.Second
	}
	if cfg.Checkout.ConfirmationPath == "" {
		cfg.Checkout.ConfirmationPath = "/checkout/success"
	}
	if cfg.Checkout.ReconcileConcurrency == 0 {
		cfg.Checkout.ReconcileConcurrency = 4
	}
	if cfg.Checkout.LockTTL == 0 {
		cfg.Checkout.LockTTL = 30 * time.Second
	}
	if cfg.Checkout.PaymentPollInterval == 0 {
		cfg.Checkout.PaymentPollInterval = 5 * time.Second
	}
	if cfg.Checkout.CompletionTimeout <= 0 {
		cfg.Checkout.CompletionTimeout = time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	base, err := url.Parse(c.API.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries cannot be negative")
	}
	if c.Checkout.ReconcileConcurrency < 1 {
		return fmt.Errorf("checkout.reconcile_concurrency must be positive")
	}
	if !strings.HasPrefix(c.Checkout.ConfirmationPath, "/") {
		return fmt.Errorf("checkout.confirmation_path must start with '/'")
	}

	switch c.Storage.Driver {
	case StorageDriverSQLite, StorageDriverPostgres, StorageDriverRedis, StorageDriverMemory:
	case StorageDriverS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("storage.driver must be one of sqlite, postgres, redis, s3, memory; got %q", c.Storage.Driver)
	}

	if c.IsProduction() {
		if c.Checkout.MockGatewayEnabled {
			return fmt.Errorf("checkout.mock_gateway_enabled must be false in production")
		}
		if base.Scheme != "https" {
			return fmt.Errorf("api.base_url must use https in production")
		}
		if c.Storage.Driver == StorageDriverMemory {
			return fmt.Errorf("storage.driver=memory loses the cart on restart and is not allowed in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
