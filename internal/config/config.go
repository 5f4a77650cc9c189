// Package config содержит конфигурацию сервиса подтверждения алертов.
//
// Конфигурация загружается из опционального YAML файла (путь задаётся
// переменной AA_CONFIG_PATH) с переопределением переменными окружения.
// Учётные данные Airflow задаются переменными AIRFLOW_* — они совместимы
// с окружением самого Airflow деплоймента.
package config

import (
	"fmt"
	"time"

	"github.com/Kargones/airflow-ack/internal/constants"
	"github.com/Kargones/airflow-ack/internal/pkg/alerting"
	"github.com/Kargones/airflow-ack/internal/pkg/apperrors"
	"github.com/Kargones/airflow-ack/internal/pkg/logging"
	"github.com/Kargones/airflow-ack/internal/pkg/metrics"
	"github.com/Kargones/airflow-ack/internal/pkg/tracing"
)

// ServerConfig содержит настройки HTTP сервера.
type ServerConfig struct {
	// Addr — адрес прослушивания, например ":8080".
	Addr string `yaml:"addr" env:"AA_SERVER_ADDR" env-default:":8080"`

	// ReadTimeout — таймаут чтения запроса.
	ReadTimeout time.Duration `yaml:"readTimeout" env:"AA_SERVER_READ_TIMEOUT" env-default:"10s"`

	// WriteTimeout — таймаут записи ответа.
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"AA_SERVER_WRITE_TIMEOUT" env-default:"30s"`

	// ShutdownTimeout — сколько ждать завершения активных запросов
	// при graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"AA_SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// AirflowConfig содержит настройки подключения к Airflow REST API.
type AirflowConfig struct {
	// BaseURL — корень API переменных, например "http://airflow:8080/api/v1".
	BaseURL string `yaml:"baseUrl" env:"AIRFLOW_BASE_URL"`

	// Username — имя пользователя для basic auth.
	Username string `yaml:"username" env:"AIRFLOW_USERNAME"`

	// Password — пароль для basic auth.
	Password string `yaml:"password" env:"AIRFLOW_PASSWORD"`

	// Timeout — таймаут HTTP запросов к Airflow.
	Timeout time.Duration `yaml:"timeout" env:"AIRFLOW_TIMEOUT" env-default:"10s"`
}

// LoggingConfig содержит настройки логирования с env/yaml тегами.
// Преобразуется в logging.Config через ToLoggingConfig.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"AA_LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"AA_LOG_FORMAT" env-default:"json"`
	Output     string `yaml:"output" env:"AA_LOG_OUTPUT" env-default:"stderr"`
	FilePath   string `yaml:"filePath" env:"AA_LOG_FILE_PATH" env-default:"/var/log/airflow-ack.log"`
	MaxSize    int    `yaml:"maxSize" env:"AA_LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int    `yaml:"maxBackups" env:"AA_LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `yaml:"maxAge" env:"AA_LOG_MAX_AGE" env-default:"7"`
	Compress   bool   `yaml:"compress" env:"AA_LOG_COMPRESS" env-default:"true"`
}

// MetricsConfig содержит настройки Prometheus метрик.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"AA_METRICS_ENABLED" env-default:"true"`
	Namespace string `yaml:"namespace" env:"AA_METRICS_NAMESPACE" env-default:"airflow_ack"`
}

// TracingConfig содержит настройки OpenTelemetry трейсинга.
type TracingConfig struct {
	Enabled      bool          `yaml:"enabled" env:"AA_TRACING_ENABLED" env-default:"false"`
	Endpoint     string        `yaml:"endpoint" env:"AA_TRACING_ENDPOINT"`
	Environment  string        `yaml:"environment" env:"AA_TRACING_ENVIRONMENT" env-default:"production"`
	Insecure     bool          `yaml:"insecure" env:"AA_TRACING_INSECURE" env-default:"false"`
	Timeout      time.Duration `yaml:"timeout" env:"AA_TRACING_TIMEOUT" env-default:"10s"`
	SamplingRate float64       `yaml:"samplingRate" env:"AA_TRACING_SAMPLING_RATE" env-default:"1.0"`
}

// AlertingConfig содержит настройки ops-алертинга об ошибках Airflow.
type AlertingConfig struct {
	Enabled         bool          `yaml:"enabled" env:"AA_ALERTING_ENABLED" env-default:"false"`
	RateLimitWindow time.Duration `yaml:"rateLimitWindow" env:"AA_ALERTING_RATE_LIMIT_WINDOW" env-default:"5m"`

	Webhook struct {
		Enabled    bool          `yaml:"enabled" env:"AA_ALERTING_WEBHOOK_ENABLED" env-default:"false"`
		URLs       []string      `yaml:"urls" env:"AA_ALERTING_WEBHOOK_URLS"`
		Timeout    time.Duration `yaml:"timeout" env:"AA_ALERTING_WEBHOOK_TIMEOUT" env-default:"10s"`
		MaxRetries int           `yaml:"maxRetries" env:"AA_ALERTING_WEBHOOK_MAX_RETRIES" env-default:"3"`
	} `yaml:"webhook"`
}

// Config — корневая конфигурация сервиса.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Airflow  AirflowConfig  `yaml:"airflow"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Alerting AlertingConfig `yaml:"alerting"`
}

// Validate проверяет обязательные параметры конфигурации.
// Возвращает AppError с кодом CONFIG.VALIDATION_FAILED.
func (c *Config) Validate() error {
	var missing []string
	if c.Airflow.BaseURL == "" {
		missing = append(missing, "AIRFLOW_BASE_URL")
	}
	if c.Airflow.Username == "" {
		missing = append(missing, "AIRFLOW_USERNAME")
	}
	if c.Airflow.Password == "" {
		missing = append(missing, "AIRFLOW_PASSWORD")
	}
	if len(missing) > 0 {
		return apperrors.NewAppError(apperrors.ErrConfigValidate,
			fmt.Sprintf("отсутствуют обязательные параметры: %v", missing), nil)
	}

	if c.Airflow.Timeout <= 0 {
		return apperrors.NewAppError(apperrors.ErrConfigValidate,
			"таймаут Airflow должен быть положительным", nil)
	}

	mc := c.ToMetricsConfig()
	if err := mc.Validate(); err != nil {
		return apperrors.NewAppError(apperrors.ErrConfigValidate,
			"невалидная конфигурация метрик", err)
	}

	tc := c.ToTracingConfig()
	if err := tc.Validate(); err != nil {
		return apperrors.NewAppError(apperrors.ErrConfigValidate,
			"невалидная конфигурация трейсинга", err)
	}

	wc := c.ToAlertingConfig().Webhook
	if err := wc.Validate(); err != nil {
		return apperrors.NewAppError(apperrors.ErrConfigValidate,
			"невалидная конфигурация webhook алертинга", err)
	}

	return nil
}

// ToLoggingConfig преобразует секцию logging в logging.Config.
func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		Output:     c.Logging.Output,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
		Compress:   c.Logging.Compress,
	}
}

// ToMetricsConfig преобразует секцию metrics в metrics.Config.
func (c *Config) ToMetricsConfig() metrics.Config {
	return metrics.Config{
		Enabled:   c.Metrics.Enabled,
		Namespace: c.Metrics.Namespace,
	}
}

// ToTracingConfig преобразует секцию tracing в tracing.Config.
func (c *Config) ToTracingConfig() tracing.Config {
	return tracing.Config{
		Enabled:      c.Tracing.Enabled,
		Endpoint:     c.Tracing.Endpoint,
		ServiceName:  constants.ServiceName,
		Version:      constants.Version,
		Environment:  c.Tracing.Environment,
		Insecure:     c.Tracing.Insecure,
		Timeout:      c.Tracing.Timeout,
		SamplingRate: c.Tracing.SamplingRate,
	}
}

// ToAlertingConfig преобразует секцию alerting в alerting.Config.
func (c *Config) ToAlertingConfig() alerting.Config {
	return alerting.Config{
		Enabled:         c.Alerting.Enabled,
		RateLimitWindow: c.Alerting.RateLimitWindow,
		Webhook: alerting.WebhookConfig{
			Enabled:    c.Alerting.Webhook.Enabled,
			URLs:       c.Alerting.Webhook.URLs,
			Timeout:    c.Alerting.Webhook.Timeout,
			MaxRetries: c.Alerting.Webhook.MaxRetries,
		},
	}
}
