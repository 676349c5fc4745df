// Package main is the entry point for the kpath-svc service.
//
// kpath-svc ranks the k shortest loopless paths between two vertices of a
// small weighted directed graph and serves the result over a length-framed
// binary TCP protocol.
//
// # Usage
//
//	kpath-svc [port]
//
// The optional positional port overrides server.port. A port outside
// 1..65535 aborts start-up.
//
// # Wire Protocol
//
// One request and one response per connection, big-endian u32 throughout:
//
//	request:  n | m | k | s | t | (a, b, w) * m
//	response: byteLength | vertex * (byteLength / 4)
//
// The response concatenates every ranked path with no delimiter; a path ends
// at the vertex equal to t. A request that fails validation closes the
// connection without any response bytes. An unreachable target produces a
// response with byteLength = 0.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                      Transport Layer                        │
//	│  (pkg/server - Server)                                      │
//	│  - Accept loop, one goroutine per connection                │
//	│  - Optional admission limit (server.max_connections)        │
//	│  - Admin gRPC health server, metrics HTTP server            │
//	├─────────────────────────────────────────────────────────────┤
//	│                     Connection Layer                        │
//	│  (internal/handler - Handler)                               │
//	│  - Request decoding and validation (pkg/protocol)           │
//	│  - Response encoding                                        │
//	│  - Per-connection logging, metrics and tracing              │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Service Layer                          │
//	│  (internal/service - KPathService)                          │
//	│  - Graph construction, last edge wins on duplicates         │
//	│  - Optional result cache (memory or Redis)                  │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Algorithm Layer                        │
//	│  (internal/algorithms)                                      │
//	│  - Yen's k shortest loopless paths                          │
//	│  - Dense O(V^2) Dijkstra                                    │
//	│  - Ordered candidate set on a B-tree                        │
//	└─────────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Positional port argument (server.port only)
//  2. Environment variables (prefix: KPATHS_)
//  3. Config files (config.yaml, config/config.yaml, /etc/kpaths/config.yaml)
//  4. Default values
//
// Key configuration options (environment variable format):
//
//	# Server
//	KPATHS_SERVER_PORT             - TCP port (default: 5555)
//	KPATHS_SERVER_MAX_CONNECTIONS  - Concurrent connection limit, 0 = unlimited (default: 0)
//	KPATHS_SERVER_IO_TIMEOUT       - Per-connection deadline, 0 = none (default: 0)
//	KPATHS_SERVER_SHUTDOWN_TIMEOUT - Graceful shutdown bound (default: 30s)
//
//	# Admin
//	KPATHS_ADMIN_ENABLED - Enable gRPC health server (default: true)
//	KPATHS_ADMIN_PORT    - gRPC health port (default: 50070)
//
//	# Logging
//	KPATHS_LOG_LEVEL  - Log level: debug, info, warn, error (default: info)
//	KPATHS_LOG_FORMAT - Log format: json, text (default: json)
//	KPATHS_LOG_OUTPUT - Output: stdout, stderr, file (default: stdout)
//
//	# Caching
//	KPATHS_CACHE_ENABLED - Enable result caching (default: false)
//	KPATHS_CACHE_DRIVER  - Cache backend: memory, redis (default: memory)
//
//	# Rate limiting (per client IP)
//	KPATHS_RATELIMIT_ENABLED  - Enable per-peer connection limit (default: false)
//	KPATHS_RATELIMIT_REQUESTS - Connections allowed per window (default: 100)
//	KPATHS_RATELIMIT_WINDOW   - Window length (default: 1m)
//	KPATHS_RATELIMIT_BACKEND  - Limiter backend: memory, redis (default: memory)
//
//	# Tracing (OpenTelemetry)
//	KPATHS_TRACING_ENABLED  - Enable distributed tracing (default: false)
//	KPATHS_TRACING_ENDPOINT - OTLP endpoint (default: localhost:4317)
//
//	# Metrics (Prometheus)
//	KPATHS_METRICS_ENABLED - Enable Prometheus metrics (default: true)
//	KPATHS_METRICS_PORT    - Metrics HTTP port (default: 9090)
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM the service:
//  1. Sets health status to NOT_SERVING
//  2. Stops accepting connections
//  3. Waits for in-flight connections, bounded by server.shutdown_timeout
//  4. Flushes telemetry and closes the cache
//
// In-flight connections are never cancelled.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"kpaths/pkg/cache"
	"kpaths/pkg/config"
	"kpaths/pkg/logger"
	"kpaths/pkg/metrics"
	"kpaths/pkg/ratelimit"
	"kpaths/pkg/server"
	"kpaths/pkg/telemetry"
	"kpaths/services/kpath-svc/internal/handler"
	"kpaths/services/kpath-svc/internal/service"
)

func main() {
	flag.Parse()

	// =========================================================================
	// Configuration Loading
	// =========================================================================
	cfg, err := config.LoadWithServiceDefaults("kpath-svc", 0)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if flag.NArg() > 0 {
		port, err := config.ParsePort(flag.Arg(0))
		if err != nil {
			log.Fatalf("invalid port argument: %v", err)
		}
		cfg.Server.Port = port
	}

	// =========================================================================
	// Logger Initialization
	// =========================================================================
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	// =========================================================================
	// Telemetry Initialization (OpenTelemetry)
	// =========================================================================
	//
	// Without tracing the global no-op tracer is used and spans cost nothing.
	var tp *telemetry.Provider
	if cfg.Tracing.Enabled {
		tp, err = telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.Tracing.ServiceName,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
			tp = nil
		} else {
			logger.Log.Info("Telemetry initialized",
				"endpoint", cfg.Tracing.Endpoint,
				"sample_rate", cfg.Tracing.SampleRate,
			)
		}
	}

	// =========================================================================
	// Metrics Initialization (Prometheus)
	// =========================================================================
	//
	// The metrics HTTP server itself is started by server.Run.
	if cfg.Metrics.Enabled {
		metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		prometheus.MustRegister(metrics.NewRuntimeCollector(cfg.Metrics.Namespace, cfg.Metrics.Subsystem))
	}

	// =========================================================================
	// Cache Initialization
	// =========================================================================
	//
	// Rankings are deterministic, so a cached result is byte-for-byte the
	// response a fresh computation would produce. The cache is optional and
	// the service runs without it if the backend is unavailable.
	var rankCache *cache.RankCache
	if cfg.Cache.Enabled {
		baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		} else {
			rankCache = cache.NewRankCache(baseCache, cfg.Cache.DefaultTTL)
			logger.Log.Info("Rank cache initialized",
				"driver", cfg.Cache.Driver,
				"ttl", cfg.Cache.DefaultTTL,
			)
		}
	}

	// =========================================================================
	// Server Assembly
	// =========================================================================
	kpathService := service.NewKPathService(cfg.App.Version, rankCache)
	srv := server.New(cfg, handler.New(kpathService))

	if tp != nil {
		srv.RegisterOnShutdown(tp.Shutdown)
	}
	if rankCache != nil {
		srv.RegisterOnShutdown(func(context.Context) error {
			return rankCache.Close()
		})
	}

	// =========================================================================
	// Per-peer Rate Limiting
	// =========================================================================
	//
	// A limited connection is closed before its request is read.
	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.New(ratelimit.FromConfig(cfg.RateLimit))
		if err != nil {
			logger.Log.Warn("Failed to create rate limiter, continuing without it", "error", err)
		} else {
			srv.SetLimiter(limiter)
			srv.RegisterOnShutdown(func(context.Context) error {
				return limiter.Close()
			})
			logger.Log.Info("Rate limiting enabled",
				"requests", cfg.RateLimit.Requests,
				"window", cfg.RateLimit.Window,
				"strategy", cfg.RateLimit.Strategy,
				"backend", cfg.RateLimit.Backend,
			)
		}
	}

	logger.Info("Starting kpath service",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"cache_enabled", rankCache != nil,
	)

	// =========================================================================
	// Run Server (Blocking)
	// =========================================================================
	if err := srv.Run(); err != nil {
		logger.Fatal("server failed", "error", err)
	}
}
