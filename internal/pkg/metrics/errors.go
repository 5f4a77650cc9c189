package metrics

import "errors"

// Ошибки валидации конфигурации метрик.
var (
	// ErrNamespaceRequired — namespace обязателен при включённых метриках.
	ErrNamespaceRequired = errors.New("metrics: namespace обязателен когда метрики включены")
)
