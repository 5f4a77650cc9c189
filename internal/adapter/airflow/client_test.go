package airflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/airflow-ack/internal/pkg/logging"
	"github.com/Kargones/airflow-ack/internal/pkg/metrics"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(baseURL, "airflow", "secret", 5*time.Second,
		logging.NewNopLogger(), metrics.NewNopCollector())
}

func TestClient_GetVariable_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/variables/twilio_alert_enabled_my_dag", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "ожидается basic auth")
		assert.Equal(t, "airflow", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":"twilio_alert_enabled_my_dag","value":"false"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	v, err := client.GetVariable(context.Background(), "twilio_alert_enabled_my_dag")
	require.NoError(t, err)
	assert.Equal(t, "twilio_alert_enabled_my_dag", v.Key)
	assert.Equal(t, "false", v.Value)
}

func TestClient_GetVariable_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Variable does not exist"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	v, err := client.GetVariable(context.Background(), "twilio_alert_enabled_missing")
	require.Error(t, err)
	assert.Nil(t, v)
	assert.True(t, IsNotFound(err))

	var airflowErr *AirflowError
	require.True(t, errors.As(err, &airflowErr))
	assert.Equal(t, http.StatusNotFound, airflowErr.StatusCode)
}

func TestClient_GetVariable_AuthFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	_, err := client.GetVariable(context.Background(), "some_key")
	require.Error(t, err)

	var airflowErr *AirflowError
	require.True(t, errors.As(err, &airflowErr))
	assert.Equal(t, ErrAirflowAuth, airflowErr.Code)
	assert.False(t, IsNotFound(err))
}

func TestClient_GetVariable_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	_, err := client.GetVariable(context.Background(), "some_key")
	require.Error(t, err)

	var airflowErr *AirflowError
	require.True(t, errors.As(err, &airflowErr))
	assert.Equal(t, ErrAirflowDecode, airflowErr.Code)
}

func TestClient_GetVariable_NetworkError(t *testing.T) {
	// Сервер сразу закрывается, порт перестаёт отвечать.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	_, err := client.GetVariable(context.Background(), "some_key")
	require.Error(t, err)

	var airflowErr *AirflowError
	require.True(t, errors.As(err, &airflowErr))
	assert.Equal(t, ErrAirflowConnect, airflowErr.Code)
}

func TestClient_UpdateVariable_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/variables/twilio_alert_enabled_my_dag", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var v Variable
		require.NoError(t, json.NewDecoder(r.Body).Decode(&v))
		assert.Equal(t, "twilio_alert_enabled_my_dag", v.Key)
		assert.Equal(t, "false", v.Value)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":"twilio_alert_enabled_my_dag","value":"false"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	err := client.UpdateVariable(context.Background(), "twilio_alert_enabled_my_dag", "false")
	require.NoError(t, err)
}

func TestClient_UpdateVariable_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	err := client.UpdateVariable(context.Background(), "twilio_alert_enabled_missing", "false")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClient_CreateVariable_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/variables", r.URL.Path)

		var v Variable
		require.NoError(t, json.NewDecoder(r.Body).Decode(&v))
		assert.Equal(t, "twilio_alert_enabled_new_dag", v.Key)
		assert.Equal(t, "false", v.Value)

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	err := client.CreateVariable(context.Background(), "twilio_alert_enabled_new_dag", "false")
	require.NoError(t, err)
}

func TestClient_CreateVariable_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"database is on fire"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	err := client.CreateVariable(context.Background(), "some_key", "true")
	require.Error(t, err)

	var airflowErr *AirflowError
	require.True(t, errors.As(err, &airflowErr))
	assert.Equal(t, ErrAirflowAPI, airflowErr.Code)
	assert.Contains(t, airflowErr.Message, "database is on fire")
}

func TestClient_TrailingSlashTrimmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/variables/k", r.URL.Path)
		_, _ = w.Write([]byte(`{"key":"k","value":"true"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1/")

	_, err := client.GetVariable(context.Background(), "k")
	require.NoError(t, err)
}

func TestClient_KeyIsPathEscaped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/variables/weird%2Fkey", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"key":"weird/key","value":"true"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")

	_, err := client.GetVariable(context.Background(), "weird/key")
	require.NoError(t, err)
}

func TestIsNotFound_PlainError(t *testing.T) {
	assert.False(t, IsNotFound(errors.New("обычная ошибка")))
	assert.False(t, IsNotFound(nil))
}
