package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{Level: LevelInfo, Format: FormatJSON}, &buf)

	logger.Info("алерт подтверждён", "dag_id", "orders_pipeline", "task_id", "load_step")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "алерт подтверждён", record["msg"])
	assert.Equal(t, "orders_pipeline", record["dag_id"])
	assert.Equal(t, "load_step", record["task_id"])
}

func TestNewLoggerWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{Level: LevelInfo, Format: FormatText}, &buf)

	logger.Info("сервер запущен", "addr", ":5000")

	out := buf.String()
	assert.Contains(t, out, "сервер запущен")
	assert.Contains(t, out, "addr=:5000")
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{Level: LevelWarn, Format: FormatText}, &buf)

	logger.Debug("не должно попасть")
	logger.Info("не должно попасть")
	logger.Warn("должно попасть")

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "должно попасть")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{Level: LevelInfo, Format: FormatJSON}, &buf)

	logger.With("trace_id", "abc123").Info("запрос обработан")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "abc123", record["trace_id"])
}

func TestNewLogger_UnknownOutputFallsBackToStderr(t *testing.T) {
	// Неизвестный output не должен паниковать — логгер создаётся с fallback
	logger := NewLogger(Config{Level: LevelInfo, Format: FormatText, Output: "syslog"})
	require.NotNil(t, logger)
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	// Не должно паниковать и не должно ничего писать
	logger.Debug("x")
	logger.Info("x")
	logger.Warn("x")
	logger.Error("x")
	assert.Same(t, Logger(logger), logger.With("k", "v"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, OutputStderr, cfg.Output)
	assert.True(t, strings.HasSuffix(cfg.FilePath, "airflow-ack.log"))
}
