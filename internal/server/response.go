package server

import (
	"encoding/json"
	"net/http"

	"github.com/Kargones/airflow-ack/internal/pkg/logging"
)

// ackResponse — тело успешного ответа POST /api/acknowledge.
type ackResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	DagID   string `json:"dag_id"`
	TaskID  string `json:"task_id"`
}

// statusResponse — тело ответа GET /api/acknowledge/status/{dag_id}.
type statusResponse struct {
	DagID         string `json:"dag_id"`
	AlertsEnabled bool   `json:"alerts_enabled"`
	Acknowledged  bool   `json:"acknowledged"`
}

// resetResponse — тело успешного ответа POST /api/acknowledge/reset/{dag_id}.
type resetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// healthResponse — тело ответа GET /health.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// errorResponse — единое тело ошибки для всех JSON endpoint-ов.
type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
}

// writeJSON сериализует v в тело ответа с заданным статусом.
func writeJSON(w http.ResponseWriter, logger logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("не удалось записать JSON ответ", "error", err)
	}
}

// writeError отправляет стандартное тело ошибки.
func writeError(w http.ResponseWriter, logger logging.Logger, status int, code, message string) {
	writeJSON(w, logger, status, errorResponse{
		Status: "error",
		Error:  message,
		Code:   code,
	})
}
