// Package main содержит точку входа HTTP сервиса подтверждения алертов Airflow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kargones/airflow-ack/internal/config"
	"github.com/Kargones/airflow-ack/internal/constants"
	"github.com/Kargones/airflow-ack/internal/di"
	"github.com/Kargones/airflow-ack/internal/pkg/urlutil"
)

func main() {
	os.Exit(run())
}

// run содержит основную логику сервиса и возвращает exit code.
// Вынесена из main() чтобы os.Exit() вызывался ПОСЛЕ отработки
// всех defer-ов (tracerShutdown, остановка сервера).
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Не удалось загрузить конфигурацию сервиса: %v\n", err)
		return constants.ExitConfigError
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Не удалось инициализировать сервис: %v\n", err)
		return constants.ExitServerError
	}

	l := app.Logger
	l.Info("сервис запускается",
		"service", constants.ServiceName,
		"version", constants.Version,
		"addr", cfg.Server.Addr,
		"airflow_url", urlutil.MaskURL(cfg.Airflow.BaseURL))

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.TracerShutdown(shutdownCtx); err != nil {
			l.Error("ошибка завершения трейсинга", "error", err)
		}
	}()

	// SIGINT/SIGTERM инициируют graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Server.Run(ctx); err != nil {
		l.Error("сервер завершился с ошибкой", "error", err)
		return constants.ExitServerError
	}

	l.Info("сервис остановлен")
	return constants.ExitOK
}
