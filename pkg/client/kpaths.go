// pkg/client/kpaths.go
package client

import (
	"context"
	"net"
	"strconv"
	"time"

	"kpaths/pkg/apperror"
	"kpaths/pkg/domain"
	"kpaths/pkg/protocol"
)

// ClientConfig конфигурация клиента kpath-svc
type ClientConfig struct {
	// Address в виде host или host:port; без порта используется domain.DefaultPort
	Address string
	Timeout time.Duration
}

// DefaultClientConfig возвращает конфигурацию по умолчанию
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Address: "localhost",
		Timeout: 30 * time.Second,
	}
}

// Client клиент бинарного протокола k кратчайших путей.
// Каждый запрос выполняется в отдельном соединении: сервер отвечает один раз
// и закрывает его.
type Client struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

// NewClient создаёт клиента
func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = DefaultClientConfig()
	}

	return &Client{
		address: WithDefaultPort(cfg.Address),
		timeout: cfg.Timeout,
	}
}

// Address возвращает адрес сервера с портом
func (c *Client) Address() string {
	return c.address
}

// WithDefaultPort дописывает порт по умолчанию, если он не указан
func WithDefaultPort(address string) string {
	if address == "" {
		address = "localhost"
	}
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(address, strconv.Itoa(domain.DefaultPort))
}

// KShortestPaths отправляет запрос и возвращает пути в порядке ранга.
//
// Запрос проверяется теми же границами, что и на сервере, до установки
// соединения. Пустой ответ означает, что t недостижима из s.
func (c *Client) KShortestPaths(ctx context.Context, req *protocol.Request) ([]domain.Path, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTransport, "failed to connect to kpath service").
			WithDetails("address", c.address)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeTransport, "failed to set deadline")
		}
	}
	// Отмена ctx прерывает блокирующее чтение
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := protocol.WriteRequest(conn, req); err != nil {
		return nil, err
	}

	vertices, err := protocol.ReadResponse(conn)
	if err != nil {
		return nil, err
	}

	return protocol.SplitPaths(vertices, req.T)
}

// KShortestPathsWithTimeout выполняет запрос с отдельным таймаутом
func (c *Client) KShortestPathsWithTimeout(ctx context.Context, req *protocol.Request, timeout time.Duration) ([]domain.Path, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.KShortestPaths(ctx, req)
}
