package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// Метрики соединений
	ConnectionsTotal   *prometheus.CounterVec
	ConnectionsActive  prometheus.Gauge
	ConnectionDuration prometheus.Histogram

	// Бизнес-метрики
	RankOperationsTotal *prometheus.CounterVec
	RankDuration        prometheus.Histogram
	PathsReturned       prometheus.Histogram
	SpurSearches        prometheus.Histogram
	GraphVertices       prometheus.Histogram
	GraphEdges          prometheus.Histogram

	// Кэш
	CacheRequestsTotal *prometheus.CounterVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики в DefaultRegisterer
func InitMetrics(namespace, subsystem string) *Metrics {
	m := New(prometheus.DefaultRegisterer, namespace, subsystem)
	defaultMetrics = m
	return m
}

// New создаёт метрики в указанном реестре
func New(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "connections_total",
				Help:      "Total number of handled connections by outcome",
			},
			[]string{"outcome"},
		),

		ConnectionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "connections_active",
				Help:      "Current number of connections being served",
			},
		),

		ConnectionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "connection_duration_seconds",
				Help:      "Time from accept to close of a connection",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),

		RankOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rank_operations_total",
				Help:      "Total number of k-shortest-paths rankings",
			},
			[]string{"status"},
		),

		RankDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rank_duration_seconds",
				Help:      "Duration of k-shortest-paths rankings",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
		),

		PathsReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "paths_returned",
				Help:      "Number of paths in each response",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),

		SpurSearches: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "spur_searches",
				Help:      "Shortest-path searches run per ranking after the first",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),

		GraphVertices: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_vertices",
				Help:      "Number of vertices in requested graphs",
				Buckets:   []float64{2, 8, 32, 64, 128, 256, 512, 1024},
			},
		),

		GraphEdges: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges",
				Help:      "Number of distinct edges in requested graphs",
				Buckets:   []float64{0, 10, 100, 500, 1000, 4000, 8000, 16384},
			},
		),

		CacheRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_requests_total",
				Help:      "Ranking cache lookups by result",
			},
			[]string{"result"},
		),

		ServiceInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("kpaths", "")
	}
	return defaultMetrics
}

// RecordConnection записывает итог обработки соединения.
// Длительность соединения измеряется через NewTimer(m.ConnectionDuration).
func (m *Metrics) RecordConnection(outcome string) {
	m.ConnectionsTotal.WithLabelValues(outcome).Inc()
}

// RecordRank записывает метрики ранжирования
func (m *Metrics) RecordRank(success bool, duration time.Duration, paths, spurSearches int) {
	status := "success"
	if !success {
		status = "error"
	}

	m.RankOperationsTotal.WithLabelValues(status).Inc()
	m.RankDuration.Observe(duration.Seconds())
	if success {
		m.PathsReturned.Observe(float64(paths))
		m.SpurSearches.Observe(float64(spurSearches))
	}
}

// RecordGraphSize записывает размер графа
func (m *Metrics) RecordGraphSize(vertices, edges int) {
	m.GraphVertices.Observe(float64(vertices))
	m.GraphEdges.Observe(float64(edges))
}

// RecordCacheLookup записывает попадание или промах кэша
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer создаёт HTTP сервер метрик с эндпоинтами path и /health
func NewServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Игнорируем ошибку записи - response уже отправлен
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int) error {
	return NewServer(port, "/metrics").ListenAndServe()
}
