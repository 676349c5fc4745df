package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:    AppConfig{Name: "test-service"},
		Server: ServerConfig{Port: 5555},
		Log:    LogConfig{Level: "info"},
	}
}

func validRateLimit() RateLimitConfig {
	return RateLimitConfig{
		Enabled:  true,
		Requests: 10,
		Window:   time.Second,
		Strategy: "sliding_window",
		Backend:  "memory",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing app name", func(c *Config) { c.App.Name = "" }, true},
		{"invalid port - zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"invalid port - too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative max connections", func(c *Config) { c.Server.MaxConnections = -1 }, true},
		{"limited connections", func(c *Config) { c.Server.MaxConnections = 16 }, false},
		{"negative io timeout", func(c *Config) { c.Server.IOTimeout = -time.Second }, true},
		{"invalid log level", func(c *Config) { c.Log.Level = "invalid" }, true},
		{"valid debug level", func(c *Config) { c.Log.Level = "debug" }, false},
		{"admin enabled without port", func(c *Config) { c.Admin.Enabled = true }, true},
		{"admin disabled without port", func(c *Config) { c.Admin.Enabled = false }, false},
		{"metrics enabled without port", func(c *Config) { c.Metrics.Enabled = true }, true},
		{"unknown cache driver", func(c *Config) { c.Cache = CacheConfig{Enabled: true, Driver: "memcached"} }, true},
		{"redis cache driver", func(c *Config) { c.Cache = CacheConfig{Enabled: true, Driver: "redis"} }, false},
		{"sample rate above one", func(c *Config) { c.Tracing.SampleRate = 1.5 }, true},
		{"rate limit disabled ignores fields", func(c *Config) { c.RateLimit = RateLimitConfig{Strategy: "leaky"} }, false},
		{"rate limit memory", func(c *Config) { c.RateLimit = validRateLimit() }, false},
		{"rate limit zero requests", func(c *Config) {
			c.RateLimit = validRateLimit()
			c.RateLimit.Requests = 0
		}, true},
		{"rate limit zero window", func(c *Config) {
			c.RateLimit = validRateLimit()
			c.RateLimit.Window = 0
		}, true},
		{"rate limit unknown strategy", func(c *Config) {
			c.RateLimit = validRateLimit()
			c.RateLimit.Strategy = "leaky"
		}, true},
		{"rate limit unknown backend", func(c *Config) {
			c.RateLimit = validRateLimit()
			c.RateLimit.Backend = "etcd"
		}, true},
		{"rate limit redis sliding window", func(c *Config) {
			c.RateLimit = validRateLimit()
			c.RateLimit.Backend = "redis"
			c.RateLimit.RedisAddr = "localhost:6379"
		}, false},
		{"rate limit redis token bucket", func(c *Config) {
			c.RateLimit = validRateLimit()
			c.RateLimit.Backend = "redis"
			c.RateLimit.RedisAddr = "localhost:6379"
			c.RateLimit.Strategy = "token_bucket"
		}, true},
		{"rate limit redis without address", func(c *Config) {
			c.RateLimit = validRateLimit()
			c.RateLimit.Backend = "redis"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_DefaultsLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level to default to 'info', got %s", cfg.Log.Level)
	}
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		cfg  ServerConfig
		want string
	}{
		{ServerConfig{Port: 5555}, ":5555"},
		{ServerConfig{Host: "127.0.0.1", Port: 6000}, "127.0.0.1:6000"},
	}

	for _, tt := range tests {
		if got := tt.cfg.Address(); got != tt.want {
			t.Errorf("Address() = %s, want %s", got, tt.want)
		}
	}
}

func TestCacheConfig_Address(t *testing.T) {
	cfg := CacheConfig{Host: "redis", Port: 6379}
	if got := cfg.Address(); got != "redis:6379" {
		t.Errorf("Address() = %s, want redis:6379", got)
	}
}

func TestConfig_Environment(t *testing.T) {
	tests := []struct {
		env    string
		isDev  bool
		isProd bool
	}{
		{"development", true, false},
		{"dev", true, false},
		{"production", false, true},
		{"prod", false, true},
		{"staging", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := Config{App: AppConfig{Environment: tt.env}}
			if cfg.IsDevelopment() != tt.isDev {
				t.Errorf("IsDevelopment() = %v, want %v", cfg.IsDevelopment(), tt.isDev)
			}
			if cfg.IsProduction() != tt.isProd {
				t.Errorf("IsProduction() = %v, want %v", cfg.IsProduction(), tt.isProd)
			}
		})
	}
}
