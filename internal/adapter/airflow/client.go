package airflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Kargones/airflow-ack/internal/pkg/logging"
	"github.com/Kargones/airflow-ack/internal/pkg/metrics"
	"github.com/Kargones/airflow-ack/internal/pkg/urlutil"
)

// Compile-time проверка реализации интерфейса.
var _ VariableAPI = (*Client)(nil)

// maxResponseBodySize ограничивает размер читаемого тела ответа Airflow (1 MB).
const maxResponseBodySize = 1 << 20

// Имена операций для метрик upstream вызовов.
const (
	opGetVariable    = "get_variable"
	opUpdateVariable = "update_variable"
	opCreateVariable = "create_variable"
)

// HTTPClient — интерфейс HTTP клиента для тестирования.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client реализует VariableAPI поверх REST API Airflow.
// Все запросы выполняются с basic auth и Content-Type application/json.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient HTTPClient
	logger     logging.Logger
	collector  metrics.Collector
}

// NewClient создаёт клиент Airflow API.
// baseURL — корень API переменных (например http://airflow:8080/api/v1).
// Завершающий слэш отбрасывается.
func NewClient(baseURL, username, password string, timeout time.Duration, logger logging.Logger, collector metrics.Collector) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if collector == nil {
		collector = metrics.NewNopCollector()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		collector:  collector,
	}
}

// NewClientWithHTTPClient создаёт клиент с пользовательским HTTP клиентом (для тестов).
func NewClientWithHTTPClient(baseURL, username, password string, httpClient HTTPClient, logger logging.Logger, collector metrics.Collector) *Client {
	c := NewClient(baseURL, username, password, 0, logger, collector)
	c.httpClient = httpClient
	return c
}

// GetVariable возвращает переменную Airflow по ключу.
// Отсутствующая переменная возвращается как типизированная ошибка AIRFLOW.NOT_FOUND.
func (c *Client) GetVariable(ctx context.Context, key string) (*Variable, error) {
	start := time.Now()
	reqURL := c.variableURL(key)

	status, body, err := c.sendReq(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.collector.RecordUpstreamCall(opGetVariable, metrics.OutcomeError, time.Since(start))
		return nil, NewAirflowError(ErrAirflowConnect, "не удалось выполнить запрос к Airflow", err)
	}

	if err := c.checkStatus(status, body, fmt.Sprintf("переменная %q не найдена", key)); err != nil {
		c.collector.RecordUpstreamCall(opGetVariable, outcomeForError(err), time.Since(start))
		return nil, err
	}

	var v Variable
	if err := json.Unmarshal(body, &v); err != nil {
		c.collector.RecordUpstreamCall(opGetVariable, metrics.OutcomeError, time.Since(start))
		return nil, NewAirflowErrorWithStatus(ErrAirflowDecode, "не удалось распарсить ответ Airflow", status, err)
	}

	c.collector.RecordUpstreamCall(opGetVariable, metrics.OutcomeSuccess, time.Since(start))
	c.logger.Debug("переменная получена", "key", key, "value", v.Value)
	return &v, nil
}

// UpdateVariable обновляет значение существующей переменной (PATCH).
// Если переменной нет, возвращается ошибка AIRFLOW.NOT_FOUND —
// вызывающий код решает, создавать ли её через CreateVariable.
func (c *Client) UpdateVariable(ctx context.Context, key, value string) error {
	start := time.Now()
	reqURL := c.variableURL(key)

	payload, err := json.Marshal(Variable{Key: key, Value: value})
	if err != nil {
		return NewAirflowError(ErrAirflowAPI, "не удалось сериализовать переменную", err)
	}

	status, body, err := c.sendReq(ctx, http.MethodPatch, reqURL, payload)
	if err != nil {
		c.collector.RecordUpstreamCall(opUpdateVariable, metrics.OutcomeError, time.Since(start))
		return NewAirflowError(ErrAirflowConnect, "не удалось выполнить запрос к Airflow", err)
	}

	if err := c.checkStatus(status, body, fmt.Sprintf("переменная %q не найдена", key)); err != nil {
		c.collector.RecordUpstreamCall(opUpdateVariable, outcomeForError(err), time.Since(start))
		return err
	}

	c.collector.RecordUpstreamCall(opUpdateVariable, metrics.OutcomeSuccess, time.Since(start))
	c.logger.Debug("переменная обновлена", "key", key, "value", value)
	return nil
}

// CreateVariable создаёт новую переменную (POST).
func (c *Client) CreateVariable(ctx context.Context, key, value string) error {
	start := time.Now()
	reqURL := c.baseURL + "/variables"

	payload, err := json.Marshal(Variable{Key: key, Value: value})
	if err != nil {
		return NewAirflowError(ErrAirflowAPI, "не удалось сериализовать переменную", err)
	}

	status, body, err := c.sendReq(ctx, http.MethodPost, reqURL, payload)
	if err != nil {
		c.collector.RecordUpstreamCall(opCreateVariable, metrics.OutcomeError, time.Since(start))
		return NewAirflowError(ErrAirflowConnect, "не удалось выполнить запрос к Airflow", err)
	}

	if err := c.checkStatus(status, body, fmt.Sprintf("endpoint создания переменной %q не найден", key)); err != nil {
		c.collector.RecordUpstreamCall(opCreateVariable, outcomeForError(err), time.Since(start))
		return err
	}

	c.collector.RecordUpstreamCall(opCreateVariable, metrics.OutcomeSuccess, time.Since(start))
	c.logger.Debug("переменная создана", "key", key, "value", value)
	return nil
}

// variableURL строит URL переменной с экранированием ключа.
func (c *Client) variableURL(key string) string {
	return c.baseURL + "/variables/" + url.PathEscape(key)
}

// sendReq выполняет HTTP запрос с basic auth и возвращает статус и тело ответа.
func (c *Client) sendReq(ctx context.Context, method, reqURL string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("запрос к Airflow не выполнен",
			"method", method,
			"url", urlutil.MaskURL(reqURL),
			"error", err)
		return 0, nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("не удалось закрыть тело ответа", "error", closeErr)
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// checkStatus преобразует неуспешный HTTP статус в типизированную ошибку.
func (c *Client) checkStatus(status int, body []byte, notFoundMsg string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return NewAirflowErrorWithStatus(ErrAirflowNotFound, notFoundMsg, status, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewAirflowErrorWithStatus(ErrAirflowAuth,
			"ошибка аутентификации в Airflow, проверьте учётные данные", status, nil)
	default:
		return NewAirflowErrorWithStatus(ErrAirflowAPI,
			fmt.Sprintf("Airflow API вернул статус %d: %s", status, truncateBody(body)), status, nil)
	}
}

// outcomeForError возвращает метку outcome для метрик по типу ошибки.
func outcomeForError(err error) string {
	if IsNotFound(err) {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}

// truncateBody обрезает тело ответа для включения в сообщение об ошибке.
func truncateBody(body []byte) string {
	const maxLen = 256
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
