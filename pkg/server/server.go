package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"kpaths/pkg/config"
	"kpaths/pkg/logger"
	"kpaths/pkg/metrics"
	"kpaths/pkg/ratelimit"
)

// OutcomeRateLimited итог соединения, отклонённого лимитером
const OutcomeRateLimited = "rate_limited"

// ConnHandler обслуживает одно принятое соединение.
// Сервер закрывает соединение после возврата из Serve.
type ConnHandler interface {
	Serve(ctx context.Context, conn net.Conn)
}

// HandlerFunc адаптер обычной функции к ConnHandler
type HandlerFunc func(ctx context.Context, conn net.Conn)

// Serve вызывает f(ctx, conn)
func (f HandlerFunc) Serve(ctx context.Context, conn net.Conn) {
	f(ctx, conn)
}

// ShutdownFunc вызывается при остановке сервера после завершения соединений
type ShutdownFunc func(ctx context.Context) error

// Server TCP сервер: одна горутина на соединение, опциональный лимит
// одновременно обслуживаемых соединений.
type Server struct {
	config  *config.Config
	handler ConnHandler
	admin   *AdminServer
	tracker *metrics.ConnTracker
	limiter ratelimit.Limiter

	// sem == nil означает отсутствие лимита
	sem *semaphore.Weighted

	mu         sync.Mutex
	listener   net.Listener
	closing    bool
	conns      sync.WaitGroup
	onShutdown []ShutdownFunc
}

// New создаёт сервер, который передаёт соединения в handler
func New(cfg *config.Config, handler ConnHandler) *Server {
	s := &Server{
		config:  cfg,
		handler: handler,
	}

	if cfg.Server.MaxConnections > 0 {
		s.sem = semaphore.NewWeighted(int64(cfg.Server.MaxConnections))
	}

	if m := metrics.Get(); m != nil {
		s.tracker = metrics.NewConnTracker(m.ConnectionsActive)
	}

	if cfg.Admin.Enabled {
		s.admin = NewAdminServer(cfg.App.Name, cfg.Admin.Port, cfg.IsDevelopment())
	}

	return s
}

// RegisterOnShutdown добавляет хук, выполняемый при остановке (telemetry, cache)
func (s *Server) RegisterOnShutdown(f ShutdownFunc) {
	s.mu.Lock()
	s.onShutdown = append(s.onShutdown, f)
	s.mu.Unlock()
}

// SetLimiter включает ограничение частоты соединений по IP клиента.
// Отклонённое соединение закрывается без ответа.
func (s *Server) SetLimiter(l ratelimit.Limiter) {
	s.limiter = l
}

// Admin возвращает административный gRPC сервер или nil
func (s *Server) Admin() *AdminServer {
	return s.admin
}

// Listen открывает TCP сокет на адресе из конфигурации
func (s *Server) Listen(ctx context.Context) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", s.config.Server.Address())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()

	logger.Log.Info("Listening for k-shortest-paths requests",
		"address", lis.Addr().String(),
		"max_connections", s.config.Server.MaxConnections,
	)
	if s.sem == nil {
		logger.Log.Warn("Connection admission is unbounded, set server.max_connections to cap concurrent connections")
	}

	return nil
}

// Addr возвращает адрес слушающего сокета
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve принимает соединения до Shutdown или отмены ctx.
//
// При заданном лимите цикл ждёт свободный слот до вызова Accept, так что
// лишние клиенты остаются в очереди ядра и ни одно соединение не отклоняется.
// Отмена ctx прекращает приём, но не прерывает обслуживаемые соединения.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	lis := s.listener
	s.mu.Unlock()
	if lis == nil {
		return errors.New("server is not listening")
	}

	stop := context.AfterFunc(ctx, s.closeListener)
	defer stop()

	connCtx := context.WithoutCancel(ctx)
	var tempDelay time.Duration

	for {
		if s.sem != nil {
			if err := s.sem.Acquire(ctx, 1); err != nil {
				return nil
			}
		}

		conn, err := lis.Accept()
		if err != nil {
			s.release()
			if errors.Is(err, net.ErrClosed) || s.isClosing() || ctx.Err() != nil {
				return nil
			}

			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay = min(tempDelay*2, time.Second)
			}
			logger.Log.Warn("Accept failed, retrying", "error", err, "delay", tempDelay)

			select {
			case <-time.After(tempDelay):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		tempDelay = 0

		if !s.track() {
			conn.Close()
			s.release()
			return nil
		}

		go s.serveConn(connCtx, conn)
	}
}

// track регистрирует соединение; false если сервер уже останавливается
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	s.conns.Add(1)
	return true
}

func (s *Server) release() {
	if s.sem != nil {
		s.sem.Release(1)
	}
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer s.conns.Done()
	defer s.release()
	defer conn.Close()

	if s.tracker != nil {
		s.tracker.Start()
		defer s.tracker.End()
	}

	logger.Log.Info("Accepted connection", "remote", conn.RemoteAddr().String())

	if !s.admit(ctx, conn) {
		return
	}

	if timeout := s.config.Server.IOTimeout; timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			logger.Log.Warn("Failed to set connection deadline", "error", err)
		}
	}

	s.handler.Serve(ctx, conn)
}

// admit проверяет лимит частоты для адреса клиента.
// Ошибка лимитера не отклоняет соединение.
func (s *Server) admit(ctx context.Context, conn net.Conn) bool {
	if s.limiter == nil {
		return true
	}

	key := ratelimit.PeerKey(conn.RemoteAddr())
	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		logger.Log.Warn("Rate limiter failed, admitting connection", "peer", key, "error", err)
		return true
	}
	if allowed {
		return true
	}

	logger.Log.Warn("Connection rate limited", "peer", key)
	if m := metrics.Get(); m != nil {
		m.RecordConnection(OutcomeRateLimited)
	}
	return false
}

// Shutdown закрывает сокет и ждёт завершения обслуживаемых соединений.
// Если ctx истекает раньше, возвращается ошибка ctx; соединения не прерываются.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	lis := s.listener
	hooks := s.onShutdown
	s.mu.Unlock()

	if lis != nil {
		if err := lis.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Log.Warn("Failed to close listener", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	var waitErr error
	select {
	case <-done:
		logger.Log.Info("All connections finished")
	case <-ctx.Done():
		waitErr = fmt.Errorf("waiting for connections: %w", ctx.Err())
		logger.Log.Warn("Shutdown timed out with connections in flight")
	}

	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			logger.Log.Warn("Shutdown hook failed", "error", err)
		}
	}

	return waitErr
}

// Run запускает сервер и ждёт SIGINT/SIGTERM
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return s.RunContext(ctx)
}

// RunContext запускает TCP, административный и metrics серверы и
// останавливает их все при отмене ctx или ошибке любого из них.
func (s *Server) RunContext(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Serve(gctx)
	})

	if s.admin != nil {
		if err := s.admin.Listen(ctx); err != nil {
			s.closeListener()
			return err
		}
		g.Go(s.admin.Serve)
	}

	var metricsServer *http.Server
	if s.config.Metrics.Enabled {
		metricsServer = metrics.NewServer(s.config.Metrics.Port, s.config.Metrics.Path)
		g.Go(func() error {
			logger.Log.Info("Starting metrics server",
				"port", s.config.Metrics.Port,
				"path", s.config.Metrics.Path,
			)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	if m := metrics.Get(); m != nil {
		m.SetServiceInfo(s.config.App.Version, s.config.App.Environment)
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down", "reason", context.Cause(gctx))

		timeout := s.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if s.admin != nil {
			s.admin.SetServing(false)
		}

		err := s.Shutdown(shutdownCtx)

		if metricsServer != nil {
			if mErr := metricsServer.Shutdown(shutdownCtx); mErr != nil {
				logger.Log.Warn("Failed to stop metrics server", "error", mErr)
			}
		}
		if s.admin != nil {
			s.admin.Stop(shutdownCtx)
		}

		if err != nil {
			return err
		}
		logger.Log.Info("Server stopped gracefully")
		return nil
	})

	return g.Wait()
}

func (s *Server) closeListener() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
}
