package ratelimit

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpaths/pkg/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Requests > 0)
	assert.True(t, cfg.Window > 0)
	assert.Equal(t, StrategySlidingWindow, cfg.Strategy)
	assert.Equal(t, "memory", cfg.Backend)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RateLimitConfig{
		Enabled:   true,
		Requests:  3,
		Window:    time.Second,
		Strategy:  "TOKEN_BUCKET",
		Backend:   "Memory",
		BurstSize: 0,
		RedisAddr: "redis:6379",
	})

	assert.Equal(t, 3, cfg.Requests)
	assert.Equal(t, time.Second, cfg.Window)
	assert.Equal(t, StrategyTokenBucket, cfg.Strategy)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, 0, cfg.BurstSize)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, DefaultConfig().CleanupInterval, cfg.CleanupInterval)
}

func TestNew(t *testing.T) {
	l, err := New(nil)
	require.NoError(t, err)
	require.IsType(t, &MemoryLimiter{}, l)
	require.NoError(t, l.Close())

	_, err = New(&Config{Backend: "etcd"})
	assert.Error(t, err)
}

func TestPeerKey(t *testing.T) {
	tests := []struct {
		name string
		addr net.Addr
		want string
	}{
		{"nil", nil, "unknown"},
		{"tcp v4", &net.TCPAddr{IP: net.IPv4(10, 0, 0, 7), Port: 40000}, "10.0.0.7"},
		{"tcp v6", &net.TCPAddr{IP: net.ParseIP("::1"), Port: 1}, "::1"},
		{"unix", &net.UnixAddr{Name: "/tmp/kpaths.sock", Net: "unix"}, "/tmp/kpaths.sock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeerKey(tt.addr))
		})
	}
}

func newMemory(t *testing.T, cfg *Config) *MemoryLimiter {
	t.Helper()
	l := NewMemoryLimiter(cfg)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	l := newMemory(t, &Config{Requests: 3, Window: time.Minute, Strategy: StrategySlidingWindow})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "connection %d should be allowed", i+1)
	}

	allowed, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed, "4th connection should be denied")

	allowed, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "other peers are counted separately")
}

func TestMemoryLimiter_WindowExpires(t *testing.T) {
	l := newMemory(t, &Config{Requests: 1, Window: 50 * time.Millisecond, Strategy: StrategySlidingWindow})
	ctx := context.Background()

	allowed, _ := l.Allow(ctx, "peer")
	require.True(t, allowed)
	allowed, _ = l.Allow(ctx, "peer")
	require.False(t, allowed)

	time.Sleep(80 * time.Millisecond)

	allowed, err := l.Allow(ctx, "peer")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiter_AllowN(t *testing.T) {
	l := newMemory(t, &Config{Requests: 10, Window: time.Minute, Strategy: StrategySlidingWindow})
	ctx := context.Background()

	allowed, err := l.AllowN(ctx, "peer", 6)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.AllowN(ctx, "peer", 5)
	require.NoError(t, err)
	assert.False(t, allowed, "6 + 5 exceeds 10")

	allowed, err = l.AllowN(ctx, "peer", 4)
	require.NoError(t, err)
	assert.True(t, allowed, "a denied batch consumes nothing")
}

func TestMemoryLimiter_TokenBucket(t *testing.T) {
	l := newMemory(t, &Config{
		Requests:  2,
		Window:    time.Hour,
		Strategy:  StrategyTokenBucket,
		BurstSize: 1,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(ctx, "peer")
		require.NoError(t, err)
		assert.True(t, allowed, "requests + burst tokens are available up front")
	}

	allowed, err := l.Allow(ctx, "peer")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestMemoryLimiter_Reset(t *testing.T) {
	l := newMemory(t, &Config{Requests: 1, Window: time.Minute})
	ctx := context.Background()

	allowed, _ := l.Allow(ctx, "peer")
	require.True(t, allowed)

	require.NoError(t, l.Reset(ctx, "peer"))

	allowed, err := l.Allow(ctx, "peer")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiter_Cleanup(t *testing.T) {
	l := newMemory(t, &Config{Requests: 5, Window: 10 * time.Millisecond})
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	require.Equal(t, 2, l.Len())

	l.doCleanup(time.Now().Add(time.Second))
	assert.Equal(t, 0, l.Len())
}

func TestMemoryLimiter_Close(t *testing.T) {
	l := NewMemoryLimiter(&Config{Requests: 1, Window: time.Minute, CleanupInterval: time.Millisecond})

	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "Close is idempotent")

	_, err := l.Allow(context.Background(), "peer")
	assert.ErrorIs(t, err, ErrLimiterClosed)
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	l := newMemory(t, &Config{Requests: 50, Window: time.Minute})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := l.Allow(ctx, "peer")
			if err == nil && allowed {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, granted)
}
