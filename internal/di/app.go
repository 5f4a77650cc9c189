package di

import (
	"context"

	"github.com/Kargones/airflow-ack/internal/adapter/airflow"
	"github.com/Kargones/airflow-ack/internal/config"
	"github.com/Kargones/airflow-ack/internal/pkg/alerting"
	"github.com/Kargones/airflow-ack/internal/pkg/logging"
	"github.com/Kargones/airflow-ack/internal/pkg/metrics"
	"github.com/Kargones/airflow-ack/internal/server"
	"github.com/Kargones/airflow-ack/internal/service"
)

// App содержит инициализированные зависимости сервиса.
// Создаётся через Wire DI в InitializeApp().
//
// При добавлении новых зависимостей:
// 1. Добавить поле в App struct
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config содержит конфигурацию сервиса.
	// Передаётся извне через InitializeApp().
	Config *config.Config

	// Logger предоставляет структурированное логирование.
	Logger logging.Logger

	// Collector собирает Prometheus метрики и отдаёт их через /metrics.
	// Если метрики отключены — NopCollector.
	Collector metrics.Collector

	// Alerter отправляет ops-алерты при ошибках Airflow API.
	// Если алертинг отключён — NopAlerter.
	Alerter alerting.Alerter

	// AirflowAPI — клиент REST API переменных Airflow.
	AirflowAPI airflow.VariableAPI

	// AckService — бизнес-логика подтверждения алертов.
	AckService *service.AckService

	// Server — HTTP сервер со всеми endpoint-ами.
	Server *server.Server

	// TracerShutdown завершает OTel TracerProvider и отправляет буферизированные span-ы.
	// Если трейсинг отключён — nop function.
	TracerShutdown func(context.Context) error
}
