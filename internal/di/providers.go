package di

import (
	"context"

	"github.com/Kargones/airflow-ack/internal/adapter/airflow"
	"github.com/Kargones/airflow-ack/internal/config"
	"github.com/Kargones/airflow-ack/internal/pkg/alerting"
	"github.com/Kargones/airflow-ack/internal/pkg/logging"
	"github.com/Kargones/airflow-ack/internal/pkg/metrics"
	"github.com/Kargones/airflow-ack/internal/pkg/tracing"
	"github.com/Kargones/airflow-ack/internal/server"
	"github.com/Kargones/airflow-ack/internal/service"
)

// ProvideLogger создаёт Logger на основе секции logging конфигурации.
func ProvideLogger(cfg *config.Config) logging.Logger {
	if cfg == nil {
		return logging.NewLogger(logging.DefaultConfig())
	}
	return logging.NewLogger(cfg.ToLoggingConfig())
}

// ProvideCollector создаёт Collector на основе секции metrics.
// При ошибке создания возвращает NopCollector и логирует ошибку.
func ProvideCollector(cfg *config.Config, logger logging.Logger) metrics.Collector {
	if cfg == nil {
		return metrics.NewNopCollector()
	}

	collector, err := metrics.NewCollector(cfg.ToMetricsConfig(), logger)
	if err != nil {
		logger.Error("ошибка создания MetricsCollector, используется NopCollector",
			"error", err)
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideAlerter создаёт Alerter на основе секции alerting.
// При ошибке создания возвращает NopAlerter и логирует ошибку.
func ProvideAlerter(cfg *config.Config, logger logging.Logger) alerting.Alerter {
	if cfg == nil {
		return alerting.NewNopAlerter()
	}

	alerter, err := alerting.NewAlerter(cfg.ToAlertingConfig(), logger)
	if err != nil {
		logger.Error("ошибка создания Alerter, используется NopAlerter",
			"error", err)
		return alerting.NewNopAlerter()
	}
	return alerter
}

// ProvideTracerShutdown инициализирует OTel TracerProvider.
// Возвращает shutdown function. При ошибке или отключённом трейсинге —
// nop shutdown.
func ProvideTracerShutdown(cfg *config.Config, logger logging.Logger) func(context.Context) error {
	if cfg == nil {
		return tracing.NewNopTracerProvider()
	}

	shutdown, err := tracing.NewTracerProvider(cfg.ToTracingConfig(), logger)
	if err != nil {
		logger.Error("ошибка инициализации трейсинга, трейсинг отключён",
			"error", err)
		return tracing.NewNopTracerProvider()
	}
	return shutdown
}

// ProvideVariableAPI создаёт клиент REST API переменных Airflow.
func ProvideVariableAPI(cfg *config.Config, logger logging.Logger, collector metrics.Collector) airflow.VariableAPI {
	return airflow.NewClient(
		cfg.Airflow.BaseURL,
		cfg.Airflow.Username,
		cfg.Airflow.Password,
		cfg.Airflow.Timeout,
		logger,
		collector,
	)
}

// ProvideAckService создаёт бизнес-слой подтверждения алертов.
func ProvideAckService(api airflow.VariableAPI, logger logging.Logger, alerter alerting.Alerter) *service.AckService {
	return service.NewAckService(api, logger, alerter)
}

// ProvideServer создаёт HTTP сервер.
func ProvideServer(cfg *config.Config, svc *service.AckService, logger logging.Logger, collector metrics.Collector) *server.Server {
	return server.NewServer(cfg.Server, svc, logger, collector)
}
