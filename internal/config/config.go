package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Listing      ListingConfig
	Shopify      ShopifyConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig holds the embedded-app credentials used to verify admin session tokens.
type AuthConfig struct {
	APIKey        string
	APISecret     string
	LeewaySeconds int
}

// StorageConfig points at the S3-compatible bucket that receives uploads.
type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	Bucket         string
	PublicBaseURL  string
	MaxUploadBytes int64
}

// ListingConfig bounds listing queries and their caching.
type ListingConfig struct {
	DefaultPerPage      int
	MaxPerPage          int
	AdminPageSize       int
	CacheTTLSeconds     int
	LocalCacheSize      int
	PublicMaxAgeSeconds int
}

// ShopifyConfig configures the storefront API used for product search.
type ShopifyConfig struct {
	StorefrontURL   string
	StorefrontToken string
	SearchLimit     int
}

// NotificationConfig holds the optional moderation webhook.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxUpload, err := strconv.ParseInt(getEnv("STORAGE_MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_MAX_UPLOAD_BYTES: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "project-gallery"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			APIKey:        os.Getenv("SHOPIFY_API_KEY"),
			APISecret:     os.Getenv("SHOPIFY_API_SECRET"),
			LeewaySeconds: getEnvAsInt("AUTH_LEEWAY_SECONDS", 5),
		},
		Storage: StorageConfig{
			Endpoint:       os.Getenv("STORAGE_ENDPOINT"),
			AccessKey:      os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:      os.Getenv("STORAGE_SECRET_KEY"),
			UseSSL:         getEnvAsBool("STORAGE_USE_SSL", true),
			Bucket:         getEnv("STORAGE_BUCKET", "project-gallery"),
			PublicBaseURL:  os.Getenv("STORAGE_PUBLIC_BASE_URL"),
			MaxUploadBytes: maxUpload,
		},
		Listing: ListingConfig{
			DefaultPerPage:      getEnvAsInt("LISTING_DEFAULT_PER_PAGE", 12),
			MaxPerPage:          getEnvAsInt("LISTING_MAX_PER_PAGE", 100),
			AdminPageSize:       getEnvAsInt("LISTING_ADMIN_PAGE_SIZE", 10),
			CacheTTLSeconds:     getEnvAsInt("LISTING_CACHE_TTL_SECONDS", 300),
			LocalCacheSize:      getEnvAsInt("LISTING_LOCAL_CACHE_SIZE", 256),
			PublicMaxAgeSeconds: getEnvAsInt("LISTING_PUBLIC_MAX_AGE_SECONDS", 300),
		},
		Shopify: ShopifyConfig{
			StorefrontURL:   os.Getenv("SHOPIFY_STOREFRONT_URL"),
			StorefrontToken: os.Getenv("SHOPIFY_STOREFRONT_TOKEN"),
			SearchLimit:     getEnvAsInt("SHOPIFY_SEARCH_LIMIT", 10),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns how long listing pages stay cached.
func (l ListingConfig) CacheTTL() time.Duration {
	if l.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(l.CacheTTLSeconds) * time.Second
}

// Leeway returns the clock skew tolerated on session tokens.
func (a AuthConfig) Leeway() time.Duration {
	return time.Duration(a.LeewaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
