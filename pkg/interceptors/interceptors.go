package interceptors

import (
	"google.golang.org/grpc"
)

// ServerConfig конфигурация серверных интерсепторов административного gRPC сервера
type ServerConfig struct {
	ServiceName string
	// QuietMethods логируются на уровне debug (частые health probes)
	QuietMethods map[string]bool
}

// DefaultQuietMethods методы health сервиса, которые опрашиваются постоянно
var DefaultQuietMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/List":  true,
}

// UnaryInterceptors возвращает unary интерсепторы в порядке применения: recovery внешний
func UnaryInterceptors(cfg *ServerConfig) []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
		LoggingInterceptor(cfg.quiet()),
	}
}

// StreamInterceptors возвращает stream интерсепторы (Health/Watch)
func StreamInterceptors() []grpc.StreamServerInterceptor {
	return []grpc.StreamServerInterceptor{
		StreamRecoveryInterceptor(),
		StreamLoggingInterceptor(),
	}
}

// ServerOptions возвращает опции grpc.NewServer с цепочками интерсепторов
func ServerOptions(cfg *ServerConfig) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryInterceptors(cfg)...),
		grpc.ChainStreamInterceptor(StreamInterceptors()...),
	}
}

func (c *ServerConfig) quiet() map[string]bool {
	if c == nil || c.QuietMethods == nil {
		return DefaultQuietMethods
	}
	return c.QuietMethods
}
