package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/airflow-ack/internal/adapter/airflow"
	"github.com/Kargones/airflow-ack/internal/config"
	"github.com/Kargones/airflow-ack/internal/pkg/logging"
	"github.com/Kargones/airflow-ack/internal/service"
)

// fakeVariableStore — in-memory Airflow Variables API для сквозных тестов.
type fakeVariableStore struct {
	vars  map[string]string
	calls int

	// failWith — если не nil, все вызовы возвращают эту ошибку.
	failWith error
}

func newFakeVariableStore() *fakeVariableStore {
	return &fakeVariableStore{vars: map[string]string{}}
}

func (f *fakeVariableStore) GetVariable(_ context.Context, key string) (*airflow.Variable, error) {
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	v, ok := f.vars[key]
	if !ok {
		return nil, airflow.NewAirflowErrorWithStatus(airflow.ErrAirflowNotFound,
			"переменная не найдена", http.StatusNotFound, nil)
	}
	return &airflow.Variable{Key: key, Value: v}, nil
}

func (f *fakeVariableStore) UpdateVariable(_ context.Context, key, value string) error {
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.vars[key]; !ok {
		return airflow.NewAirflowErrorWithStatus(airflow.ErrAirflowNotFound,
			"переменная не найдена", http.StatusNotFound, nil)
	}
	f.vars[key] = value
	return nil
}

func (f *fakeVariableStore) CreateVariable(_ context.Context, key, value string) error {
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	f.vars[key] = value
	return nil
}

// newTestServer собирает сервер поверх реального бизнес-слоя и фейкового API.
func newTestServer(store *fakeVariableStore) *Server {
	svc := service.NewAckService(store, logging.NewNopLogger(), nil)
	srv := NewServer(config.ServerConfig{}, svc, logging.NewNopLogger(), nil)
	srv.nowFunc = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	return srv
}

// loadSchema компилирует JSON Schema из testdata.
func loadSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(filepath.Join("testdata", "schema", name))
	require.NoError(t, err, "не удалось загрузить JSON Schema")
	return schema
}

// validateSchema проверяет тело ответа против схемы.
func validateSchema(t *testing.T, schema *jsonschema.Schema, body []byte) {
	t.Helper()
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	require.NoError(t, err)
	assert.NoError(t, schema.Validate(inst), "тело ответа не соответствует схеме: %s", body)
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestAcknowledgeJSON_Success(t *testing.T) {
	store := newFakeVariableStore()
	store.vars["twilio_alert_enabled_orders_pipeline"] = "true"
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodPost, "/api/acknowledge",
		`{"dag_id":"orders_pipeline","task_id":"load_step"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	validateSchema(t, loadSchema(t, "ack.schema.json"), rec.Body.Bytes())
	assert.Contains(t, rec.Body.String(), "orders_pipeline")
	assert.Contains(t, rec.Body.String(), "load_step")
	assert.Equal(t, "false", store.vars["twilio_alert_enabled_orders_pipeline"])
}

func TestAcknowledgeJSON_DefaultTaskID(t *testing.T) {
	store := newFakeVariableStore()
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodPost, "/api/acknowledge",
		`{"dag_id":"orders_pipeline"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"task_id":"unknown"`)
}

func TestAcknowledgeJSON_MissingDagID_NoUpstreamCalls(t *testing.T) {
	store := newFakeVariableStore()
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodPost, "/api/acknowledge",
		`{"task_id":"load_step"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	validateSchema(t, loadSchema(t, "error.schema.json"), rec.Body.Bytes())
	assert.Equal(t, 0, store.calls, "при ошибке ввода Airflow не должен вызываться")
}

func TestAcknowledgeJSON_InvalidBody(t *testing.T) {
	store := newFakeVariableStore()
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodPost, "/api/acknowledge", `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	validateSchema(t, loadSchema(t, "error.schema.json"), rec.Body.Bytes())
	assert.Equal(t, 0, store.calls)
}

func TestAcknowledgeJSON_UpstreamFailure(t *testing.T) {
	store := newFakeVariableStore()
	store.failWith = airflow.NewAirflowError(airflow.ErrAirflowConnect, "connection refused", nil)
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodPost, "/api/acknowledge",
		`{"dag_id":"orders_pipeline"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	validateSchema(t, loadSchema(t, "error.schema.json"), rec.Body.Bytes())
}

func TestAcknowledgePage_Success(t *testing.T) {
	store := newFakeVariableStore()
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodGet,
		"/api/acknowledge?dag_id=orders_pipeline&task_id=load_step", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	page := rec.Body.String()
	assert.Contains(t, page, "orders_pipeline")
	assert.Contains(t, page, "load_step")
	assert.Contains(t, page, "2025-03-14 09:26:53")
	assert.Contains(t, page, "Alert acknowledged")
}

func TestAcknowledgePage_MissingDagID(t *testing.T) {
	store := newFakeVariableStore()
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodGet, "/api/acknowledge", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Acknowledgment failed")
	assert.Equal(t, 0, store.calls)
}

func TestAcknowledgePage_UpstreamFailure(t *testing.T) {
	store := newFakeVariableStore()
	store.failWith = airflow.NewAirflowErrorWithStatus(airflow.ErrAirflowAPI,
		"internal error", http.StatusInternalServerError, nil)
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodGet, "/api/acknowledge?dag_id=orders_pipeline", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acknowledgment failed")
}

func TestAcknowledgePage_EscapesUserInput(t *testing.T) {
	store := newFakeVariableStore()
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodGet,
		"/api/acknowledge?dag_id=%3Cscript%3Ealert(1)%3C%2Fscript%3E", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
}

func TestStatus_NeverAcknowledged(t *testing.T) {
	store := newFakeVariableStore()
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodGet, "/api/acknowledge/status/orders_pipeline", "")

	require.Equal(t, http.StatusOK, rec.Code)
	validateSchema(t, loadSchema(t, "status.schema.json"), rec.Body.Bytes())
	assert.Contains(t, rec.Body.String(), `"alerts_enabled":true`)
	assert.Contains(t, rec.Body.String(), `"acknowledged":false`)
}

func TestStatus_UpstreamFailure(t *testing.T) {
	store := newFakeVariableStore()
	store.failWith = airflow.NewAirflowError(airflow.ErrAirflowConnect, "timeout", nil)
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodGet, "/api/acknowledge/status/orders_pipeline", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	validateSchema(t, loadSchema(t, "error.schema.json"), rec.Body.Bytes())
}

func TestAcknowledgeThenStatusThenReset(t *testing.T) {
	store := newFakeVariableStore()
	srv := newTestServer(store)

	// Подтверждение выключает алерты.
	rec := doRequest(t, srv, http.MethodPost, "/api/acknowledge", `{"dag_id":"etl"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/acknowledge/status/etl", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alerts_enabled":false`)
	assert.Contains(t, rec.Body.String(), `"acknowledged":true`)

	// Сброс включает алерты обратно.
	rec = doRequest(t, srv, http.MethodPost, "/api/acknowledge/reset/etl", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = doRequest(t, srv, http.MethodGet, "/api/acknowledge/status/etl", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alerts_enabled":true`)
}

func TestReset_UpstreamFailure(t *testing.T) {
	store := newFakeVariableStore()
	store.failWith = airflow.NewAirflowError(airflow.ErrAirflowConnect, "connection refused", nil)
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodPost, "/api/acknowledge/reset/etl", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	validateSchema(t, loadSchema(t, "error.schema.json"), rec.Body.Bytes())
}

func TestHealth_AlwaysHealthy(t *testing.T) {
	// Upstream лежит — health всё равно отвечает 200.
	store := newFakeVariableStore()
	store.failWith = airflow.NewAirflowError(airflow.ErrAirflowConnect, "down", nil)
	srv := newTestServer(store)

	rec := doRequest(t, srv, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"service":"airflow-ack"`)
	assert.Equal(t, 0, store.calls)
}

func TestIndex_ListsEndpoints(t *testing.T) {
	srv := newTestServer(newFakeVariableStore())

	rec := doRequest(t, srv, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/acknowledge")
	assert.Contains(t, rec.Body.String(), "/health")
}

func TestTraceIDHeader(t *testing.T) {
	srv := newTestServer(newFakeVariableStore())

	// Сгенерированный trace ID возвращается в заголовке.
	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))

	// Переданный trace ID переиспользуется.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-Id", "abc123")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Trace-Id"))
}

// panicOps — реализация AckOperations, паникующая на каждом вызове.
type panicOps struct{}

func (panicOps) Acknowledge(context.Context, string, string) (*service.AckResult, error) {
	panic("boom")
}
func (panicOps) Reset(context.Context, string) (*service.AckResult, error) { panic("boom") }
func (panicOps) Status(context.Context, string) (*service.StatusResult, error) {
	panic("boom")
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	srv := NewServer(config.ServerConfig{}, panicOps{}, logging.NewNopLogger(), nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/acknowledge/status/etl", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	validateSchema(t, loadSchema(t, "error.schema.json"), rec.Body.Bytes())
}
