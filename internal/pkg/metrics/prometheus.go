package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Kargones/airflow-ack/internal/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector реализует Collector с Prometheus метриками.
// Метрики отдаются по pull-модели через Handler() на /metrics.
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry

	// Метрики
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
}

// NewPrometheusCollector создаёт PrometheusCollector с указанной конфигурацией.
// Регистрирует метрики:
//   - {ns}_http_request_duration_seconds (histogram)
//   - {ns}_http_requests_total (counter)
//   - {ns}_upstream_call_duration_seconds (histogram)
//   - {ns}_upstream_calls_total (counter)
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()

	// Histogram для длительности HTTP запросов.
	// Buckets покрывают диапазон от локальной обработки (1ms) до долгого upstream (10s).
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP request handling in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method", "status"},
	)

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of handled HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Histogram для вызовов Airflow API.
	upstreamDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "upstream_call_duration_seconds",
			Help:      "Duration of Airflow API calls in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "outcome"},
	)

	// Counter вызовов upstream по исходу; outcome=not_found отделён от error,
	// потому что для read-path это штатное состояние, а для write-path — триггер create.
	upstreamTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "upstream_calls_total",
			Help:      "Total number of Airflow API calls",
		},
		[]string{"operation", "outcome"},
	)

	// Регистрируем все метрики атомарно.
	// Используем Register вместо MustRegister для избежания panic.
	collectors := []prometheus.Collector{requestDuration, requestTotal, upstreamDuration, upstreamTotal}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}

	return &PrometheusCollector{
		config:           config,
		logger:           logger,
		registry:         registry,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		upstreamDuration: upstreamDuration,
		upstreamTotal:    upstreamTotal,
	}, nil
}

// maxLabelLength — максимальная длина значения label для защиты от cardinality explosion.
const maxLabelLength = 128

// sanitizeLabel обрезает значение label до допустимой длины и удаляет
// контрольные символы (\n, \r, \0), которые могут нарушить Prometheus text format.
// Обрезка выполняется по рунам (не по байтам) для корректной работы с UTF-8.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 { // контрольные символы: \n, \r, \t, \0 и др.
			return '_'
		}
		return r
	}, value)

	runes := []rune(clean)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

// RecordRequest записывает завершение обработки HTTP запроса.
func (c *PrometheusCollector) RecordRequest(route, method string, status int, duration time.Duration) {
	route = sanitizeLabel(route)
	statusLabel := strconv.Itoa(status)

	c.requestDuration.WithLabelValues(route, method, statusLabel).Observe(duration.Seconds())
	c.requestTotal.WithLabelValues(route, method, statusLabel).Inc()

	c.logger.Debug("metrics: request recorded",
		"route", route,
		"method", method,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
}

// RecordUpstreamCall записывает вызов Airflow API.
func (c *PrometheusCollector) RecordUpstreamCall(operation, outcome string, duration time.Duration) {
	operation = sanitizeLabel(operation)
	outcome = sanitizeLabel(outcome)

	c.upstreamDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
	c.upstreamTotal.WithLabelValues(operation, outcome).Inc()
}

// Handler возвращает promhttp handler над внутренним registry.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// GetRegistry возвращает внутренний registry для тестирования.
// Примечание: экспортируется только для unit-тестов.
func (c *PrometheusCollector) GetRegistry() *prometheus.Registry {
	return c.registry
}
