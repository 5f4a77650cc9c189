package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/airflow-ack/internal/pkg/apperrors"
)

// EnvConfigPath — переменная окружения с путём к YAML файлу конфигурации.
const EnvConfigPath = "AA_CONFIG_PATH"

// Load загружает конфигурацию из YAML файла (если задан AA_CONFIG_PATH)
// и переменных окружения. Переменные окружения переопределяют файл.
// После загрузки конфигурация валидируется.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
				"не удалось прочитать файл конфигурации "+path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
				"не удалось загрузить конфигурацию из переменных окружения", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
