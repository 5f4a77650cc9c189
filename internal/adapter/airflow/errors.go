package airflow

import (
	"errors"
	"fmt"
)

// Коды ошибок для операций с Airflow API.
const (
	// ErrAirflowConnect — сетевая ошибка при обращении к Airflow (timeout, connection refused)
	ErrAirflowConnect = "AIRFLOW.CONNECT_FAILED"
	// ErrAirflowAPI — upstream вернул HTTP ошибку
	ErrAirflowAPI = "AIRFLOW.API_FAILED"
	// ErrAirflowAuth — ошибка аутентификации (401/403)
	ErrAirflowAuth = "AIRFLOW.AUTH_FAILED"
	// ErrAirflowNotFound — переменная не найдена (404)
	ErrAirflowNotFound = "AIRFLOW.NOT_FOUND"
	// ErrAirflowDecode — ответ upstream не распарсился
	ErrAirflowDecode = "AIRFLOW.DECODE_FAILED"
)

// AirflowError представляет ошибку при работе с Airflow API.
type AirflowError struct {
	// Code — код ошибки (одна из констант ErrAirflow*)
	Code string
	// Message — человекочитаемое описание ошибки
	Message string
	// Cause — оригинальная ошибка (если есть)
	Cause error
	// StatusCode — HTTP статус код ответа (если применимо)
	StatusCode int
}

// Error реализует интерфейс error.
func (e *AirflowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает оригинальную ошибку для использования с errors.Is/As.
func (e *AirflowError) Unwrap() error {
	return e.Cause
}

// NewAirflowError создаёт новую ошибку Airflow.
func NewAirflowError(code, message string, cause error) *AirflowError {
	return &AirflowError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAirflowErrorWithStatus создаёт новую ошибку Airflow с HTTP статус кодом.
func NewAirflowErrorWithStatus(code, message string, statusCode int, cause error) *AirflowError {
	return &AirflowError{
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: statusCode,
	}
}

// IsNotFound проверяет, является ли ошибка отсутствием переменной (404).
func IsNotFound(err error) bool {
	var airflowErr *AirflowError
	if !errors.As(err, &airflowErr) {
		return false
	}
	return airflowErr.Code == ErrAirflowNotFound
}
