// Package alerting предоставляет интерфейс и реализации для отправки операционных алертов
// самого relay (например, при недоступности Airflow API).
// Поддерживает webhook канал с rate limiting по коду ошибки.
package alerting

import (
	"context"
	"time"
)

// Severity определяет уровень критичности алерта.
type Severity int

const (
	// SeverityInfo — информационный алерт.
	SeverityInfo Severity = iota
	// SeverityWarning — предупреждающий алерт.
	SeverityWarning
	// SeverityCritical — критический алерт.
	SeverityCritical
)

// String возвращает строковое представление Severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Alert представляет данные для отправки алерта.
type Alert struct {
	// ErrorCode — код ошибки для rate limiting и идентификации.
	ErrorCode string

	// Message — человекочитаемое сообщение об ошибке.
	Message string

	// TraceID — идентификатор трассировки для корреляции логов.
	TraceID string

	// Timestamp — время возникновения ошибки.
	Timestamp time.Time

	// Route — HTTP маршрут, на котором возникла ошибка.
	Route string

	// DagID — DAG, к которому относился запрос (если применимо).
	DagID string

	// Severity — уровень критичности алерта.
	Severity Severity
}

// Alerter определяет интерфейс для отправки алертов.
// Реализации: WebhookAlerter, NopAlerter.
//
// ВАЖНО: Alerter не должен прерывать обработку HTTP запроса при ошибках
// отправки. Все ошибки логируются, запрос отвечает caller-у как обычно.
//
// Send() всегда возвращает nil: ошибки доставки алерта логируются, но не
// возвращаются — недоступность alerting инфраструктуры не должна каскадно
// ломать сам relay.
type Alerter interface {
	// Send отправляет алерт через настроенный канал.
	// ВСЕГДА возвращает nil (ошибки логируются, не возвращаются).
	//
	// Rate limiting применяется по ErrorCode — если алерт с таким кодом
	// был отправлен недавно (в пределах RateLimitWindow), Send возвращает nil
	// без фактической отправки.
	Send(ctx context.Context, alert Alert) error
}
