package metrics

// Config содержит настройки для сбора Prometheus метрик.
type Config struct {
	// Enabled — включены ли метрики (по умолчанию false).
	Enabled bool

	// Namespace — префикс имён метрик.
	// По умолчанию: "airflow_ack".
	Namespace string
}

// Validate проверяет корректность конфигурации.
// Возвращает ошибку если конфигурация невалидна.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil // отключённые метрики валидны
	}

	if c.Namespace == "" {
		return ErrNamespaceRequired
	}

	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		Enabled:   false,
		Namespace: "airflow_ack",
	}
}
