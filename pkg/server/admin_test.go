package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func TestAdminServer_Health(t *testing.T) {
	admin := NewAdminServer("kpaths-test", 0, true)
	ctx := context.Background()

	require.NoError(t, admin.Listen(ctx))
	served := make(chan error, 1)
	go func() { served <- admin.Serve() }()

	conn, err := grpc.NewClient(admin.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := grpc_health_v1.NewHealthClient(conn)
	check := func(service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
		reqCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		resp, err := client.Check(reqCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, check("kpaths-test"))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, check(""))

	admin.SetServing(false)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check("kpaths-test"))

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	admin.Stop(stopCtx)
	assert.NoError(t, <-served)
}

func TestAdminServer_ServeWithoutListen(t *testing.T) {
	admin := NewAdminServer("kpaths-test", 0, false)
	assert.Nil(t, admin.Addr())
	assert.Error(t, admin.Serve())
}
