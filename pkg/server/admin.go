package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"kpaths/pkg/interceptors"
	"kpaths/pkg/logger"
)

// AdminServer административный gRPC сервер со стандартным health сервисом
type AdminServer struct {
	server      *grpc.Server
	health      *health.Server
	serviceName string
	port        int

	mu       sync.Mutex
	listener net.Listener
}

// NewAdminServer создаёт административный сервер. Статус NOT_SERVING до
// вызова Listen.
func NewAdminServer(serviceName string, port int, development bool) *AdminServer {
	s := grpc.NewServer(interceptors.ServerOptions(&interceptors.ServerConfig{
		ServiceName: serviceName,
	})...)

	h := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, h)
	h.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	if development {
		reflection.Register(s)
		logger.Log.Debug("gRPC reflection enabled")
	}

	return &AdminServer{
		server:      s,
		health:      h,
		serviceName: serviceName,
		port:        port,
	}
}

// Listen открывает сокет и переводит сервис в SERVING
func (a *AdminServer) Listen(ctx context.Context) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", a.port))
	if err != nil {
		return fmt.Errorf("admin: failed to listen: %w", err)
	}

	a.mu.Lock()
	a.listener = lis
	a.mu.Unlock()

	a.SetServing(true)
	return nil
}

// Addr возвращает адрес административного сокета
func (a *AdminServer) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Serve обслуживает gRPC запросы до Stop
func (a *AdminServer) Serve() error {
	a.mu.Lock()
	lis := a.listener
	a.mu.Unlock()
	if lis == nil {
		return fmt.Errorf("admin: server is not listening")
	}

	logger.Log.Info("Starting admin gRPC server", "address", lis.Addr().String())
	if err := a.server.Serve(lis); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	return nil
}

// SetServing переключает статус health сервиса
func (a *AdminServer) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	a.health.SetServingStatus(a.serviceName, status)
	a.health.SetServingStatus("", status)
}

// Stop останавливает сервер gracefully, принудительно по истечении ctx
func (a *AdminServer) Stop(ctx context.Context) {
	a.health.Shutdown()

	done := make(chan struct{})
	go func() {
		a.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Log.Warn("Forcing admin server stop")
		a.server.Stop()
	}
}
