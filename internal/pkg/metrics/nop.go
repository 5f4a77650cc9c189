package metrics

import (
	"net/http"
	"time"
)

// NopCollector — no-op реализация Collector.
// Используется когда метрики отключены (Config.Enabled = false).
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

// RecordRequest — no-op, ничего не делает.
func (c *NopCollector) RecordRequest(route, method string, status int, duration time.Duration) {}

// RecordUpstreamCall — no-op, ничего не делает.
func (c *NopCollector) RecordUpstreamCall(operation, outcome string, duration time.Duration) {}

// Handler возвращает 404 handler — exposition endpoint отключён.
func (c *NopCollector) Handler() http.Handler {
	return http.NotFoundHandler()
}
