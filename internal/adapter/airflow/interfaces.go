package airflow

import "context"

// Variable представляет переменную в хранилище Airflow.
type Variable struct {
	// Key — ключ переменной
	Key string `json:"key"`
	// Value — текстовое значение переменной
	Value string `json:"value"`
}

// VariableAPI определяет операции над Variables API Airflow.
// Реализация: Client. Интерфейс позволяет подменять upstream в тестах сервиса.
type VariableAPI interface {
	// GetVariable читает переменную по ключу.
	// Отсутствующая переменная возвращается как типизированная not-found ошибка
	// (проверяется через IsNotFound) — интерпретация отсутствия остаётся за caller-ом.
	GetVariable(ctx context.Context, key string) (*Variable, error)

	// UpdateVariable обновляет существующую переменную (PATCH).
	// Если переменной нет — возвращает not-found ошибку; создание
	// остаётся решением caller-а (у Variables API нет upsert примитива).
	UpdateVariable(ctx context.Context, key, value string) error

	// CreateVariable создаёт новую переменную (POST).
	CreateVariable(ctx context.Context, key, value string) error
}
