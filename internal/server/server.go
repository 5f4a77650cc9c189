// Package server реализует HTTP поверхность сервиса подтверждения алертов.
//
// Маршрутизация построена на chi. Все JSON ошибки имеют единую форму
// {status, error, code}; паника в обработчике конвертируется в ту же
// форму с HTTP 500. Метрики и логирование навешиваются middleware-ами.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kargones/airflow-ack/internal/config"
	"github.com/Kargones/airflow-ack/internal/constants"
	"github.com/Kargones/airflow-ack/internal/pkg/apperrors"
	"github.com/Kargones/airflow-ack/internal/pkg/logging"
	"github.com/Kargones/airflow-ack/internal/pkg/metrics"
	"github.com/Kargones/airflow-ack/internal/service"
)

// AckOperations — операции бизнес-слоя, необходимые HTTP обработчикам.
// Реализуется service.AckService; в тестах подменяется фейком.
type AckOperations interface {
	Acknowledge(ctx context.Context, dagID, taskID string) (*service.AckResult, error)
	Reset(ctx context.Context, dagID string) (*service.AckResult, error)
	Status(ctx context.Context, dagID string) (*service.StatusResult, error)
}

// Compile-time проверка реализации интерфейса.
var _ AckOperations = (*service.AckService)(nil)

// Server оборачивает http.Server с маршрутизацией и graceful shutdown.
type Server struct {
	cfg       config.ServerConfig
	svc       AckOperations
	logger    logging.Logger
	collector metrics.Collector

	// nowFunc подменяется в тестах для детерминированного timestamp.
	nowFunc func() time.Time
}

// NewServer создаёт HTTP сервер сервиса подтверждения.
// nil-зависимости заменяются на Nop реализации.
func NewServer(cfg config.ServerConfig, svc AckOperations, logger logging.Logger, collector metrics.Collector) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if collector == nil {
		collector = metrics.NewNopCollector()
	}
	return &Server{
		cfg:       cfg,
		svc:       svc,
		logger:    logger,
		collector: collector,
		nowFunc:   time.Now,
	}
}

// Router собирает chi маршрутизатор со всеми endpoint-ами и middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(traceMiddleware)
	r.Use(observeMiddleware(s.logger, s.collector))
	r.Use(recoveryMiddleware(s.logger))

	r.Get(constants.RouteIndex, s.handleIndex)
	r.Get(constants.RouteHealth, s.handleHealth)
	r.Handle(constants.RouteMetrics, s.collector.Handler())

	r.Post(constants.RouteAcknowledge, s.handleAcknowledgeJSON)
	r.Get(constants.RouteAcknowledge, s.handleAcknowledgePage)
	r.Get(constants.RouteStatus, s.handleStatus)
	r.Post(constants.RouteReset, s.handleReset)

	return r
}

// Run запускает сервер и блокируется до отмены контекста или ошибки.
// При отмене контекста выполняется graceful shutdown с таймаутом
// cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP сервер запущен", "addr", s.cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("получен сигнал остановки, завершаю активные запросы")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// ackRequest — тело POST /api/acknowledge.
type ackRequest struct {
	DagID  string `json:"dag_id"`
	TaskID string `json:"task_id"`
}

// handleAcknowledgeJSON обрабатывает машинное подтверждение (POST, JSON).
func (s *Server) handleAcknowledgeJSON(w http.ResponseWriter, r *http.Request) {
	var req ackRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest,
			apperrors.ErrRequestBodyInvalid, "invalid JSON body")
		return
	}

	res, err := s.svc.Acknowledge(r.Context(), req.DagID, req.TaskID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, ackResponse{
		Status:  "success",
		Message: "Alerts disabled for DAG " + res.DagID,
		DagID:   res.DagID,
		TaskID:  res.TaskID,
	})
}

// handleAcknowledgePage обрабатывает подтверждение по ссылке (GET, HTML).
// Идентификаторы берутся из query параметров, ответ — HTML страница.
func (s *Server) handleAcknowledgePage(w http.ResponseWriter, r *http.Request) {
	dagID := r.URL.Query().Get("dag_id")
	taskID := r.URL.Query().Get("task_id")

	res, err := s.svc.Acknowledge(r.Context(), dagID, taskID)
	if err != nil {
		status, _, message := httpStatusForError(err)
		renderAckPage(w, s.logger, status, ackPageData{
			Success: false,
			Error:   message,
		})
		return
	}

	renderAckPage(w, s.logger, http.StatusOK, ackPageData{
		Success:   true,
		DagID:     res.DagID,
		TaskID:    res.TaskID,
		Timestamp: ackTimestamp(s.nowFunc()),
	})
}

// handleStatus возвращает текущее состояние флага алертинга DAG-а.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dagID := chi.URLParam(r, "dag_id")

	st, err := s.svc.Status(r.Context(), dagID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, statusResponse{
		DagID:         st.DagID,
		AlertsEnabled: st.AlertsEnabled,
		Acknowledged:  st.Acknowledged,
	})
}

// handleReset снимает подтверждение и включает алерты обратно.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	dagID := chi.URLParam(r, "dag_id")

	res, err := s.svc.Reset(r.Context(), dagID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, resetResponse{
		Success: true,
		Message: "Alerts re-enabled for DAG " + res.DagID,
	})
}

// handleHealth — liveness самого relay, upstream не проверяется.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: constants.ServiceName,
	})
}

// handleIndex отдаёт страницу со списком endpoint-ов.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	err := indexPageTemplate.Execute(w, indexPageData{
		Service:     constants.ServiceName,
		Description: constants.ServiceDescription,
		Version:     constants.Version,
	})
	if err != nil {
		s.logger.Warn("не удалось отрендерить индексную страницу", "error", err)
	}
}

// writeServiceError преобразует ошибку бизнес-слоя в HTTP ответ.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status, code, message := httpStatusForError(err)
	writeError(w, s.logger, status, code, message)
}

// httpStatusForError определяет HTTP статус, код и сообщение по ошибке.
// Ошибки клиентского ввода — 400, всё остальное — 500.
func httpStatusForError(err error) (int, string, string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.ErrRequestDagIDMissing, apperrors.ErrRequestBodyInvalid:
			return http.StatusBadRequest, appErr.Code, appErr.Message
		default:
			return http.StatusInternalServerError, appErr.Code, appErr.Error()
		}
	}
	return http.StatusInternalServerError, apperrors.ErrServerInternal, err.Error()
}
