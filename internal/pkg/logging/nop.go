package logging

// NopLogger — no-op реализация Logger.
// Используется в тестах где логи не проверяются.
type NopLogger struct{}

// NewNopLogger создаёт NopLogger.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug — no-op, ничего не делает.
func (n *NopLogger) Debug(msg string, args ...any) {}

// Info — no-op, ничего не делает.
func (n *NopLogger) Info(msg string, args ...any) {}

// Warn — no-op, ничего не делает.
func (n *NopLogger) Warn(msg string, args ...any) {}

// Error — no-op, ничего не делает.
func (n *NopLogger) Error(msg string, args ...any) {}

// With возвращает тот же NopLogger.
func (n *NopLogger) With(args ...any) Logger { return n }
