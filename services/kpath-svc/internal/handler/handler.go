// Package handler serves one k-shortest-paths exchange per TCP connection.
//
// A connection carries exactly one request and at most one response. Any
// validation or transport failure closes the connection without a response;
// the failure is reported only to the local log, metrics and trace.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"kpaths/pkg/apperror"
	"kpaths/pkg/logger"
	"kpaths/pkg/metrics"
	"kpaths/pkg/protocol"
	"kpaths/pkg/telemetry"
	"kpaths/services/kpath-svc/internal/service"
)

// OutcomeOK итог успешно обслуженного соединения.
// Остальные итоги совпадают с apperror.Kind.String().
const OutcomeOK = "ok"

// Ranker ранжирует пути для декодированного запроса
type Ranker interface {
	Rank(ctx context.Context, req *protocol.Request) (*service.Ranking, error)
}

// Handler реализует server.ConnHandler
type Handler struct {
	ranker  Ranker
	metrics *metrics.Metrics
}

// New создаёт обработчик соединений
func New(ranker Ranker) *Handler {
	return &Handler{
		ranker:  ranker,
		metrics: metrics.Get(),
	}
}

// Serve читает запрос, ранжирует пути и пишет ответ.
// Соединение закрывает вызывающая сторона.
func (h *Handler) Serve(ctx context.Context, conn net.Conn) {
	connID := uuid.NewString()
	remote := conn.RemoteAddr().String()
	log := logger.WithConn(connID, remote)

	ctx, span := telemetry.StartConnSpan(ctx, "handler.Serve", connID, remote)

	var timer *metrics.Timer
	if h.metrics != nil {
		timer = metrics.NewTimer(h.metrics.ConnectionDuration)
	}

	err := h.serve(ctx, conn, log)
	outcome := Outcome(err)

	if h.metrics != nil {
		h.metrics.RecordConnection(outcome)
		timer.ObserveDuration()
	}
	telemetry.EndConnSpan(span, outcome, err)

	switch {
	case err == nil:
		log.Info("Connection served")
	case apperror.IsProtocol(err), apperror.IsTransport(err):
		log.Warn("Connection aborted", "outcome", outcome, "code", apperror.Code(err), "error", err)
	default:
		log.Error("Connection failed", "outcome", outcome, "error", err)
	}
}

func (h *Handler) serve(ctx context.Context, conn net.Conn, log *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperror.New(apperror.CodeInternal, fmt.Sprintf("panic while serving connection: %v", r)).
				WithSeverity(apperror.SeverityCritical)
		}
	}()

	req, err := protocol.ReadRequest(conn)
	if err != nil {
		return err
	}

	log.Debug("Request decoded",
		"n", req.N,
		"m", len(req.Edges),
		"k", req.K,
		"s", req.S,
		"t", req.T,
	)

	ranking, err := h.ranker.Rank(ctx, req)
	if err != nil {
		return err
	}

	if err := protocol.WriteResponse(conn, ranking.Vertices()); err != nil {
		return err
	}

	log.Debug("Response written",
		"paths", len(ranking.Paths),
		"cached", ranking.Cached,
	)
	return nil
}

// Outcome возвращает метку итога соединения для метрик и трассировки
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return apperror.KindOfError(err).String()
}
