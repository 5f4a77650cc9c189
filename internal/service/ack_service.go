// Package service содержит бизнес-логику подтверждения алертов Airflow.
//
// Подтверждение (acknowledge) выключает Twilio-алерты для DAG-а путём
// установки переменной Airflow twilio_alert_enabled_{dag_id} в "false".
// Сброс (reset) возвращает флаг в "true". Статус читает текущее значение
// флага; отсутствующая переменная трактуется как "алерты включены".
package service

import (
	"context"
	"strings"
	"time"

	"github.com/Kargones/airflow-ack/internal/adapter/airflow"
	"github.com/Kargones/airflow-ack/internal/constants"
	"github.com/Kargones/airflow-ack/internal/pkg/alerting"
	"github.com/Kargones/airflow-ack/internal/pkg/apperrors"
	"github.com/Kargones/airflow-ack/internal/pkg/logging"
	"github.com/Kargones/airflow-ack/internal/pkg/tracing"
)

// AckResult содержит результат операции подтверждения или сброса.
type AckResult struct {
	// DagID — идентификатор DAG-а.
	DagID string
	// TaskID — идентификатор задачи (constants.DefaultTaskID если не передан).
	TaskID string
	// FlagKey — полный ключ переменной Airflow.
	FlagKey string
	// FlagValue — установленное значение флага.
	FlagValue string
	// Created — true, если переменная была создана, а не обновлена.
	Created bool
}

// StatusResult содержит текущее состояние флага алертинга DAG-а.
type StatusResult struct {
	// DagID — идентификатор DAG-а.
	DagID string
	// FlagKey — полный ключ переменной Airflow.
	FlagKey string
	// FlagValue — текущее текстовое значение флага.
	FlagValue string
	// AlertsEnabled — true, если алерты включены (флаг не "false").
	AlertsEnabled bool
	// Acknowledged — true, если алерт подтверждён (алерты выключены).
	Acknowledged bool
	// FlagExists — false, если переменной в Airflow нет (неявный default).
	FlagExists bool
}

// AckService реализует операции подтверждения алертов поверх Airflow Variables API.
type AckService struct {
	api     airflow.VariableAPI
	logger  logging.Logger
	alerter alerting.Alerter
}

// NewAckService создаёт сервис подтверждения алертов.
// nil-зависимости заменяются на Nop реализации.
func NewAckService(api airflow.VariableAPI, logger logging.Logger, alerter alerting.Alerter) *AckService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if alerter == nil {
		alerter = alerting.NewNopAlerter()
	}
	return &AckService{
		api:     api,
		logger:  logger,
		alerter: alerter,
	}
}

// FlagKey возвращает полный ключ переменной Airflow для DAG-а.
func FlagKey(dagID string) string {
	return constants.AlertFlagPrefix + dagID
}

// Acknowledge подтверждает алерт DAG-а: выключает алерты, устанавливая
// флаг в "false". Пустой taskID заменяется на constants.DefaultTaskID.
// Пустой dagID — ошибка REQUEST.DAG_ID_MISSING, Airflow не вызывается.
func (s *AckService) Acknowledge(ctx context.Context, dagID, taskID string) (*AckResult, error) {
	if dagID == "" {
		return nil, apperrors.NewAppError(apperrors.ErrRequestDagIDMissing,
			"dag_id обязателен", nil)
	}
	if taskID == "" {
		taskID = constants.DefaultTaskID
	}

	key := FlagKey(dagID)
	created, err := s.setFlag(ctx, key, constants.FlagDisabled)
	if err != nil {
		s.reportUpstreamFailure(ctx, dagID, "acknowledge", err)
		return nil, s.wrapUpstreamError(err, "не удалось выключить алерты для DAG")
	}

	s.logger.Info("алерт подтверждён, алерты выключены",
		"dag_id", dagID,
		"task_id", taskID,
		"flag_key", key,
		"created", created)

	return &AckResult{
		DagID:     dagID,
		TaskID:    taskID,
		FlagKey:   key,
		FlagValue: constants.FlagDisabled,
		Created:   created,
	}, nil
}

// Reset снимает подтверждение: возвращает флаг DAG-а в "true".
func (s *AckService) Reset(ctx context.Context, dagID string) (*AckResult, error) {
	if dagID == "" {
		return nil, apperrors.NewAppError(apperrors.ErrRequestDagIDMissing,
			"dag_id обязателен", nil)
	}

	key := FlagKey(dagID)
	created, err := s.setFlag(ctx, key, constants.FlagEnabled)
	if err != nil {
		s.reportUpstreamFailure(ctx, dagID, "reset", err)
		return nil, s.wrapUpstreamError(err, "не удалось включить алерты для DAG")
	}

	s.logger.Info("подтверждение снято, алерты включены",
		"dag_id", dagID,
		"flag_key", key,
		"created", created)

	return &AckResult{
		DagID:     dagID,
		FlagKey:   key,
		FlagValue: constants.FlagEnabled,
		Created:   created,
	}, nil
}

// Status возвращает текущее состояние флага алертинга DAG-а.
// Отсутствующая переменная — не ошибка: алерты считаются включёнными
// (default Airflow-колбеков), FlagExists = false.
func (s *AckService) Status(ctx context.Context, dagID string) (*StatusResult, error) {
	if dagID == "" {
		return nil, apperrors.NewAppError(apperrors.ErrRequestDagIDMissing,
			"dag_id обязателен", nil)
	}

	key := FlagKey(dagID)
	v, err := s.api.GetVariable(ctx, key)
	if err != nil {
		if airflow.IsNotFound(err) {
			s.logger.Debug("переменная флага не найдена, алерты включены по умолчанию",
				"dag_id", dagID, "flag_key", key)
			return &StatusResult{
				DagID:         dagID,
				FlagKey:       key,
				FlagValue:     constants.FlagEnabled,
				AlertsEnabled: true,
				Acknowledged:  false,
				FlagExists:    false,
			}, nil
		}
		s.reportUpstreamFailure(ctx, dagID, "status", err)
		return nil, s.wrapUpstreamError(err, "не удалось получить состояние флага")
	}

	// Включённым считается только "true" (без учёта регистра),
	// любое другое значение — алерты выключены.
	enabled := strings.EqualFold(v.Value, constants.FlagEnabled)
	return &StatusResult{
		DagID:         dagID,
		FlagKey:       key,
		FlagValue:     v.Value,
		AlertsEnabled: enabled,
		Acknowledged:  !enabled,
		FlagExists:    true,
	}, nil
}

// setFlag записывает значение флага: сначала PATCH существующей переменной,
// при 404 — POST создания. Возвращает true, если переменная была создана.
func (s *AckService) setFlag(ctx context.Context, key, value string) (bool, error) {
	err := s.api.UpdateVariable(ctx, key, value)
	if err == nil {
		return false, nil
	}
	if !airflow.IsNotFound(err) {
		return false, err
	}

	s.logger.Debug("переменная не найдена, создаю новую", "flag_key", key)
	if err := s.api.CreateVariable(ctx, key, value); err != nil {
		return false, err
	}
	return true, nil
}

// wrapUpstreamError преобразует ошибку адаптера в AppError для HTTP слоя.
func (s *AckService) wrapUpstreamError(err error, message string) error {
	return apperrors.NewAppError(apperrors.ErrAirflowUnavailable, message, err)
}

// reportUpstreamFailure логирует ошибку Airflow и отправляет ops-алерт.
// Ошибки доставки алерта не влияют на результат операции.
func (s *AckService) reportUpstreamFailure(ctx context.Context, dagID, operation string, err error) {
	s.logger.Error("ошибка вызова Airflow API",
		"dag_id", dagID,
		"operation", operation,
		"error", err)

	_ = s.alerter.Send(ctx, alerting.Alert{
		ErrorCode: apperrors.ErrAirflowUnavailable,
		Message:   err.Error(),
		TraceID:   tracing.TraceIDFromContext(ctx),
		Timestamp: time.Now(),
		Route:     operation,
		DagID:     dagID,
		Severity:  alerting.SeverityCritical,
	})
}
