// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App     AppConfig     `koanf:"app"`
	Server  ServerConfig  `koanf:"server"`
	Admin   AdminConfig   `koanf:"admin"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Cache   CacheConfig   `koanf:"cache"`

	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// ServerConfig - настройки TCP сервера k-shortest-paths
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	// MaxConnections ограничивает число одновременно обслуживаемых соединений.
	// 0 - без ограничения.
	MaxConnections int `koanf:"max_connections"`
	// IOTimeout - дедлайн на чтение запроса и запись ответа. 0 - без дедлайна.
	IOTimeout       time.Duration `koanf:"io_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Address возвращает адрес прослушивания
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AdminConfig - настройки административного gRPC сервера (health checks)
type AdminConfig struct {
	Enabled bool `koanf:"enabled"`
	Port    int  `koanf:"port"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig - настройки кэширования результатов ранжирования
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// RateLimitConfig - ограничение частоты соединений с одного IP
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Strategy        string        `koanf:"strategy"` // sliding_window, token_bucket
	Backend         string        `koanf:"backend"`  // memory, redis
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
	RedisPassword   string        `koanf:"redis_password"`
	RedisDB         int           `koanf:"redis_db"`
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if !validPort(c.Server.Port) {
		errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Server.MaxConnections < 0 {
		errs = append(errs, fmt.Sprintf("server.max_connections must be non-negative, got %d", c.Server.MaxConnections))
	}

	if c.Server.IOTimeout < 0 {
		errs = append(errs, "server.io_timeout must be non-negative")
	}

	if c.Admin.Enabled && !validPort(c.Admin.Port) {
		errs = append(errs, fmt.Sprintf("admin.port must be between 1 and 65535, got %d", c.Admin.Port))
	}

	if c.Metrics.Enabled && !validPort(c.Metrics.Port) {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	validDrivers := map[string]bool{"memory": true, "redis": true}
	if c.Cache.Enabled && !validDrivers[strings.ToLower(c.Cache.Driver)] {
		errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, got %s", c.Cache.Driver))
	}

	if c.RateLimit.Enabled {
		errs = append(errs, c.RateLimit.validate()...)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be in [0, 1], got %v", c.Tracing.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (r RateLimitConfig) validate() []string {
	var errs []string

	if r.Requests <= 0 {
		errs = append(errs, fmt.Sprintf("ratelimit.requests must be positive, got %d", r.Requests))
	}
	if r.Window <= 0 {
		errs = append(errs, "ratelimit.window must be positive")
	}
	if r.BurstSize < 0 {
		errs = append(errs, fmt.Sprintf("ratelimit.burst_size must be non-negative, got %d", r.BurstSize))
	}

	strategy := strings.ToLower(r.Strategy)
	backend := strings.ToLower(r.Backend)

	switch strategy {
	case "sliding_window", "token_bucket":
	default:
		errs = append(errs, fmt.Sprintf("ratelimit.strategy must be one of: sliding_window, token_bucket, got %s", r.Strategy))
	}

	switch backend {
	case "memory":
	case "redis":
		if strategy == "token_bucket" {
			errs = append(errs, "ratelimit.strategy token_bucket requires the memory backend")
		}
		if r.RedisAddr == "" {
			errs = append(errs, "ratelimit.redis_addr is required for the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("ratelimit.backend must be one of: memory, redis, got %s", r.Backend))
	}

	return errs
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
