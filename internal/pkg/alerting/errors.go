package alerting

import "errors"

// Ошибки валидации конфигурации.
var (
	// ErrWebhookURLRequired — URL для webhook не указан.
	ErrWebhookURLRequired = errors.New("alerting: at least one url is required when webhook channel is enabled")

	// ErrWebhookURLInvalid — URL имеет невалидный формат.
	ErrWebhookURLInvalid = errors.New("alerting: webhook url has invalid format (must have scheme and host)")

	// ErrWebhookHeaderInvalid — HTTP заголовок содержит недопустимые символы.
	ErrWebhookHeaderInvalid = errors.New("alerting: webhook header contains invalid characters (\\r or \\n)")
)
