//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Kargones/airflow-ack/internal/config"
)

//go:generate wire

// ProviderSet объединяет все провайдеры сервиса.
//
// При добавлении новых провайдеров:
// 1. Создать функцию провайдера в providers.go
// 2. Добавить её в ProviderSet
// 3. Перегенерировать: go generate ./internal/di/...
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideCollector,
	ProvideAlerter,
	ProvideTracerShutdown,
	ProvideVariableAPI,
	ProvideAckService,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

// InitializeApp создаёт и инициализирует App через Wire DI.
// Принимает внешний Config (загруженный через config.Load()).
//
// Wire генерирует реализацию этой функции в wire_gen.go.
func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil // Wire заменит это на реальную реализацию
}
