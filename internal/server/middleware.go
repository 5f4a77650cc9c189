package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/airflow-ack/internal/constants"
	"github.com/Kargones/airflow-ack/internal/pkg/apperrors"
	"github.com/Kargones/airflow-ack/internal/pkg/logging"
	"github.com/Kargones/airflow-ack/internal/pkg/metrics"
	"github.com/Kargones/airflow-ack/internal/pkg/tracing"
)

// headerTraceID — заголовок для передачи и возврата идентификатора трассировки.
const headerTraceID = "X-Trace-Id"

// traceMiddleware кладёт trace ID в контекст запроса и заголовок ответа.
// Если вызывающая сторона передала свой X-Trace-Id, он переиспользуется.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(headerTraceID)
		if traceID == "" {
			traceID = tracing.GenerateTraceID()
		}
		w.Header().Set(headerTraceID, traceID)

		ctx := tracing.WithTraceID(r.Context(), traceID)
		ctx, span := otel.Tracer(constants.ServiceName).Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("trace_id", traceID),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoveryMiddleware перехватывает панику в обработчике и отвечает
// стандартным JSON телом ошибки с HTTP 500.
func recoveryMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("паника в обработчике запроса",
						"path", r.URL.Path,
						"method", r.Method,
						"panic", rec,
						"trace_id", tracing.TraceIDFromContext(r.Context()))
					writeError(w, logger, http.StatusInternalServerError,
						apperrors.ErrServerInternal, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// observeMiddleware логирует завершение запроса и записывает метрики.
// В метки метрик идёт шаблон маршрута chi, а не сырой путь.
func observeMiddleware(logger logging.Logger, collector metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}

			collector.RecordRequest(route, r.Method, ww.Status(), duration)
			logger.Info("запрос обработан",
				"method", r.Method,
				"route", route,
				"status", ww.Status(),
				"duration_ms", duration.Milliseconds(),
				"trace_id", tracing.TraceIDFromContext(r.Context()))
		})
	}
}
