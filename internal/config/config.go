package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Booking    BookingConfig    `yaml:"booking"`
	Events     EventsConfig     `yaml:"events"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// APIConfig configures the core server's listeners.
type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// APIRateLimitConfig is a per-user token bucket. RPS 0 disables it.
type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type GatewayConfig struct {
	Port      int                    `yaml:"port"`
	ServerURL string                 `yaml:"server_url"`
	Timeout   time.Duration          `yaml:"timeout"`
	Retry     RetryConfig            `yaml:"retry"`
	RateLimit GatewayRateLimitConfig `yaml:"rate_limit"`
}

type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
}

// GatewayRateLimitConfig is a fixed window per caller. Requests 0 disables it.
type GatewayRateLimitConfig struct {
	Requests     int           `yaml:"requests"`
	Window       time.Duration `yaml:"window"`
	FallbackSize int           `yaml:"fallback_size"`
}

// BookingConfig holds the booking policies that are off in the reference behavior.
type BookingConfig struct {
	RequireFutureStart bool  `yaml:"require_future_start"`
	RejectOverlaps     bool  `yaml:"reject_overlaps"`
	AllowRedecision    *bool `yaml:"allow_redecision"`
}

// Redecision reports whether an already approved or rejected booking may be decided again.
func (b BookingConfig) Redecision() bool {
	return b.AllowRedecision == nil || *b.AllowRedecision
}

type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return errors.New("logging file_path is required when output is file")
	}

	if c.API.RateLimit.RPS < 0 || c.API.RateLimit.Burst < 0 {
		return errors.New("api rate limit must not be negative")
	}

	if c.Gateway.ServerURL != "" {
		u, err := url.Parse(c.Gateway.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("gateway server_url %q must be an absolute http(s) URL", c.Gateway.ServerURL)
		}
	}

	if c.Gateway.Retry.MaxRetries < 0 {
		return errors.New("gateway retry max_retries must not be negative")
	}
	if c.Gateway.Retry.BackoffFactor < 1 {
		return errors.New("gateway retry backoff_factor must be at least 1")
	}

	if c.Gateway.RateLimit.Requests < 0 {
		return errors.New("gateway rate limit requests must not be negative")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/shareit.db"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 9090
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 9091
	}
	if c.API.RateLimit.RPS > 0 && c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = int(c.API.RateLimit.RPS) + 1
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9100
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}

	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8080
	}
	if c.Gateway.ServerURL == "" {
		c.Gateway.ServerURL = fmt.Sprintf("http://localhost:%d", c.API.HTTP.Port)
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 10 * time.Second
	}
	if c.Gateway.Retry.InitialDelay == 0 {
		c.Gateway.Retry.InitialDelay = 100 * time.Millisecond
	}
	if c.Gateway.Retry.MaxDelay == 0 {
		c.Gateway.Retry.MaxDelay = 2 * time.Second
	}
	if c.Gateway.Retry.BackoffFactor == 0 {
		c.Gateway.Retry.BackoffFactor = 2
	}
	if c.Gateway.RateLimit.Window == 0 {
		c.Gateway.RateLimit.Window = time.Minute
	}
	if c.Gateway.RateLimit.FallbackSize == 0 {
		c.Gateway.RateLimit.FallbackSize = 10000
	}

	if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = "shareit.events"
	}
}
