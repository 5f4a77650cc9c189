package alerting

import (
	"fmt"

	"github.com/Kargones/airflow-ack/internal/pkg/logging"
)

// NewAlerter создаёт Alerter на основе конфигурации.
// Если alerting отключён (enabled=false) — возвращает NopAlerter.
// Если webhook канал не настроен — возвращает NopAlerter с предупреждением.
//
// Пример использования:
//
//	config := alerting.Config{
//	    Enabled: true,
//	    Webhook: alerting.WebhookConfig{
//	        Enabled: true,
//	        URLs:    []string{"https://hooks.example.com/ops"},
//	    },
//	}
//	alerter, err := alerting.NewAlerter(config, logger)
func NewAlerter(config Config, logger logging.Logger) (Alerter, error) {
	// Если alerting отключён — возвращаем NopAlerter
	if !config.Enabled {
		return NewNopAlerter(), nil
	}

	// Валидируем конфигурацию
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if !config.Webhook.Enabled {
		logger.Warn("alerting включён, но webhook канал не настроен — используется NopAlerter")
		return NewNopAlerter(), nil
	}

	rateLimitWindow := config.RateLimitWindow
	if rateLimitWindow == 0 {
		rateLimitWindow = DefaultRateLimitWindow
	}
	rateLimiter := NewRateLimiter(rateLimitWindow)

	alerter, err := NewWebhookAlerter(config.Webhook, rateLimiter, logger)
	if err != nil {
		return nil, fmt.Errorf("создание webhook alerter: %w", err)
	}

	return alerter, nil
}
