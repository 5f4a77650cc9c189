// Package airflow предоставляет клиент для работы с Variables API Airflow.
//
// Пакет скрывает детали REST API оркестратора за интерфейсом VariableAPI:
//
//	client := airflow.NewClient(baseURL, username, password, timeout, logger, collector)
//	v, err := client.GetVariable(ctx, "twilio_alert_enabled_orders_pipeline")
//	if airflow.IsNotFound(err) {
//	    // переменная ещё не создана
//	}
//
// Все ошибки типизированы (AirflowError) и различают сетевые сбои,
// HTTP ошибки upstream и отсутствие переменной (404). Различие важно:
// для чтения 404 — штатное состояние, для записи — триггер создания.
package airflow
