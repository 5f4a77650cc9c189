// Package constants содержит все константы, используемые в проекте airflow-ack.
// Константы сгруппированы по их функциональному назначению для удобства использования и поддержки.
package constants

// Константы идентификации сервиса
const (
	// ServiceName - имя сервиса для логов, метрик и health-check ответа
	ServiceName = "airflow-ack"
	// ServiceDescription - человекочитаемое описание сервиса (health endpoint)
	ServiceDescription = "Airflow Alert Acknowledgment API"
	// Version - версия сервиса
	Version = "1.2.0"
)

// Константы предметной области
const (
	// AlertFlagPrefix - префикс ключа Airflow Variable, хранящей флаг алертинга.
	// Полный ключ: AlertFlagPrefix + dag_id.
	AlertFlagPrefix = "twilio_alert_enabled_"
	// FlagEnabled - текстовое значение флага "алерты включены"
	FlagEnabled = "true"
	// FlagDisabled - текстовое значение флага "алерты выключены" (подтверждено)
	FlagDisabled = "false"
	// DefaultTaskID - значение task_id когда вызывающая сторона его не передала
	DefaultTaskID = "unknown"
)

// Константы HTTP маршрутов
const (
	// RouteAcknowledge - маршрут подтверждения (POST JSON / GET HTML)
	RouteAcknowledge = "/api/acknowledge"
	// RouteStatus - маршрут проверки статуса флага
	RouteStatus = "/api/acknowledge/status/{dag_id}"
	// RouteReset - маршрут сброса подтверждения
	RouteReset = "/api/acknowledge/reset/{dag_id}"
	// RouteHealth - маршрут liveness-проверки самого relay
	RouteHealth = "/health"
	// RouteIndex - корневая страница со списком endpoint-ов
	RouteIndex = "/"
	// RouteMetrics - Prometheus exposition
	RouteMetrics = "/metrics"
)

// Коды завершения процесса
const (
	// ExitOK - успешное завершение
	ExitOK = 0
	// ExitServerError - сервер завершился с ошибкой
	ExitServerError = 1
	// ExitConfigError - не удалось загрузить конфигурацию
	ExitConfigError = 5
)
