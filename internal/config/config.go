package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Auth        AuthConfig      `yaml:"auth"`
	CORS        CORSConfig      `yaml:"cors"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	JWTExpiry  time.Duration `yaml:"jwt_expiry"`
	Issuer     string        `yaml:"issuer"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type CORSConfig struct {
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	PublicPerMinute   int      `yaml:"public_per_minute"`
	AuthPerMinute     int      `yaml:"auth_per_minute"`
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// DefaultTokenExpiry is the lifetime of an identity token. Expiry is the
// only way a token stops being accepted.
const DefaultTokenExpiry = 7 * 24 * time.Hour

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    5000,
			BaseURL: "http://localhost:5000",
		},
		Database: DatabaseConfig{
			MaxConnections: 25,
		},
		Auth: AuthConfig{
			JWTExpiry:  DefaultTokenExpiry,
			Issuer:     "fomo",
			BcryptCost: 10,
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: 120,
			AuthPerMinute:   10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			ServiceName: "fomo-api",
			SampleRate:  1.0,
		},
		Environment: "development",
	}
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads an optional YAML file and then applies environment
// variables on top of it. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	base := defaults()
	if path != "" {
		if err := applyFile(&base, path); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", base.Server.Host),
			Port:    getEnvInt("PORT", getEnvInt("SERVER_PORT", base.Server.Port)),
			BaseURL: getEnv("SERVER_BASE_URL", base.Server.BaseURL),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", base.Database.URL),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", base.Database.MaxConnections),
			MigrateOnStart: getEnvBool("DATABASE_MIGRATE_ON_START", base.Database.MigrateOnStart),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", base.Auth.JWTSecret),
			JWTExpiry:  getEnvHours("JWT_EXPIRY_HOURS", base.Auth.JWTExpiry),
			Issuer:     getEnv("JWT_ISSUER", base.Auth.Issuer),
			BcryptCost: getEnvInt("BCRYPT_COST", base.Auth.BcryptCost),
		},
		CORS: CORSConfig{
			AllowAllOrigins: getEnvBool("CORS_ALLOW_ALL", base.CORS.AllowAllOrigins),
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", base.CORS.AllowedOrigins),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute:   getEnvInt("RATE_LIMIT_PUBLIC", base.RateLimit.PublicPerMinute),
			AuthPerMinute:     getEnvInt("RATE_LIMIT_AUTH", base.RateLimit.AuthPerMinute),
			TrustedProxyCIDRs: getEnvList("TRUSTED_PROXY_CIDRS", base.RateLimit.TrustedProxyCIDRs),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", base.Logging.Level),
			Format: getEnv("LOG_FORMAT", base.Logging.Format),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", base.Tracing.Enabled),
			Exporter:     getEnv("TRACING_EXPORTER", base.Tracing.Exporter),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", base.Tracing.ServiceName),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", base.Tracing.OTLPEndpoint),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", base.Tracing.SampleRate),
		},
		Environment: getEnv("ENVIRONMENT", base.Environment),
	}

	// Development mode accepts any localhost origin unless told otherwise.
	if cfg.Environment == "development" && len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowAllOrigins = true
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.JWTExpiry <= 0 {
		return fmt.Errorf("JWT expiry must be positive")
	}
	if c.Environment == "production" && !c.CORS.AllowAllOrigins && len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvHours(key string, fallback time.Duration) time.Duration {
	hours := getEnvInt(key, 0)
	if hours <= 0 {
		return fallback
	}
	return time.Duration(hours) * time.Hour
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
