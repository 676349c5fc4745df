package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"kpaths/pkg/config"
)

// Стандартные ошибки
var (
	ErrLimiterClosed = errors.New("limiter is closed")
)

// Стратегии
const (
	StrategySlidingWindow = "sliding_window"
	StrategyTokenBucket   = "token_bucket"
)

// Limiter ограничивает частоту соединений по ключу (адрес клиента)
type Limiter interface {
	// Allow проверяет, разрешено ли очередное соединение
	Allow(ctx context.Context, key string) (bool, error)

	// AllowN проверяет, разрешены ли n соединений
	AllowN(ctx context.Context, key string, n int) (bool, error)

	// Reset сбрасывает лимит для ключа
	Reset(ctx context.Context, key string) error

	// Close закрывает лимитер
	Close() error
}

// Config конфигурация rate limiter
type Config struct {
	// Requests количество соединений в окне
	Requests int

	// Window временное окно
	Window time.Duration

	// Strategy стратегия (sliding_window, token_bucket)
	Strategy string

	// Backend хранилище (memory, redis)
	Backend string

	// BurstSize размер burst для token bucket
	BurstSize int

	// CleanupInterval интервал очистки для in-memory
	CleanupInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Requests:        100,
		Window:          time.Minute,
		Strategy:        StrategySlidingWindow,
		Backend:         "memory",
		BurstSize:       10,
		CleanupInterval: 5 * time.Minute,
		KeyPrefix:       "kpaths:ratelimit:",
	}
}

// FromConfig строит конфигурацию лимитера из секции ratelimit
func FromConfig(cfg config.RateLimitConfig) *Config {
	c := DefaultConfig()
	if cfg.Requests > 0 {
		c.Requests = cfg.Requests
	}
	if cfg.Window > 0 {
		c.Window = cfg.Window
	}
	if cfg.Strategy != "" {
		c.Strategy = strings.ToLower(cfg.Strategy)
	}
	if cfg.Backend != "" {
		c.Backend = strings.ToLower(cfg.Backend)
	}
	if cfg.BurstSize >= 0 {
		c.BurstSize = cfg.BurstSize
	}
	if cfg.CleanupInterval > 0 {
		c.CleanupInterval = cfg.CleanupInterval
	}
	c.RedisAddr = cfg.RedisAddr
	c.RedisPassword = cfg.RedisPassword
	c.RedisDB = cfg.RedisDB
	return c
}

// New создаёт лимитер на основе конфигурации
func New(cfg *Config) (Limiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch cfg.Backend {
	case "redis":
		return NewRedisLimiter(cfg)
	case "memory", "":
		return NewMemoryLimiter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend: %s", cfg.Backend)
	}
}

// PeerKey возвращает ключ лимита для адреса клиента: IP без порта
func PeerKey(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
