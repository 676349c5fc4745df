package interceptors

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"kpaths/pkg/logger"
)

// LoggingInterceptor логирует gRPC запросы. Успешные вызовы методов из quiet
// пишутся на уровне debug.
func LoggingInterceptor(quiet map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		code := status.Code(err).String()

		if err != nil {
			logger.Log.Warn("gRPC request failed",
				"method", info.FullMethod,
				"duration_ms", duration.Milliseconds(),
				"code", code,
				"error", err.Error(),
			)
			return resp, err
		}

		level := slog.LevelInfo
		if quiet[info.FullMethod] {
			level = slog.LevelDebug
		}
		logger.Log.Log(ctx, level, "gRPC request completed",
			"method", info.FullMethod,
			"duration_ms", duration.Milliseconds(),
			"code", code,
		)

		return resp, nil
	}
}

// StreamLoggingInterceptor логирует streaming запросы
func StreamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()

		err := handler(srv, ss)

		duration := time.Since(start)

		if err != nil {
			logger.Log.Warn("gRPC stream failed",
				"method", info.FullMethod,
				"duration_ms", duration.Milliseconds(),
				"code", status.Code(err).String(),
				"error", err.Error(),
			)
		} else {
			logger.Log.Debug("gRPC stream completed",
				"method", info.FullMethod,
				"duration_ms", duration.Milliseconds(),
			)
		}

		return err
	}
}
