// Package metrics предоставляет интерфейсы и реализации для сбора Prometheus метрик
// HTTP relay сервиса.
//
// Пакет следует паттернам проекта:
//   - Interface Segregation: Collector interface для абстракции
//   - Factory pattern: NewCollector выбирает реализацию на основе конфигурации
//   - Graceful degradation: NopCollector при отключённых метриках
//
// В отличие от короткоживущих CLI инструментов, сервис отдаёт метрики
// по pull-модели через /metrics (promhttp), а не через Pushgateway.
package metrics

import (
	"net/http"
	"time"
)

// Значения метки outcome для метрик upstream вызовов.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Collector определяет интерфейс для сбора метрик.
// Реализации: PrometheusCollector (активный) и NopCollector (no-op).
type Collector interface {
	// RecordRequest записывает завершение обработки HTTP запроса.
	// route — шаблон маршрута (не сырой путь, чтобы не взрывать cardinality).
	// status — HTTP статус ответа.
	RecordRequest(route, method string, status int, duration time.Duration)

	// RecordUpstreamCall записывает вызов Airflow API.
	// operation — логическая операция (get_variable, update_variable, create_variable).
	// outcome — результат: "success", "not_found", "error".
	RecordUpstreamCall(operation, outcome string, duration time.Duration)

	// Handler возвращает http.Handler для exposition endpoint /metrics.
	// NopCollector возвращает 404 handler.
	Handler() http.Handler
}
