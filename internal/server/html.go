package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/Kargones/airflow-ack/internal/pkg/logging"
)

// ackPageData — данные страницы подтверждения.
// Ветки успеха и ошибки взаимоисключающие: при Success=false
// шаблон не обращается к полям DagID/TaskID/Timestamp.
type ackPageData struct {
	Success   bool
	DagID     string
	TaskID    string
	Timestamp string
	Error     string
}

// ackPageTemplate — страница подтверждения для перехода по ссылке из алерта.
var ackPageTemplate = template.Must(template.New("ack").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Alert Acknowledgment</title>
<style>
body { font-family: sans-serif; max-width: 600px; margin: 40px auto; padding: 0 20px; }
.ok { color: #2e7d32; }
.err { color: #c62828; }
dl { margin: 16px 0; }
dt { font-weight: bold; }
dd { margin: 0 0 8px 0; }
</style>
</head>
<body>
{{if .Success}}
<h1 class="ok">Alert acknowledged</h1>
<p>Twilio alerts have been disabled for this DAG.</p>
<dl>
<dt>DAG</dt><dd>{{.DagID}}</dd>
<dt>Task</dt><dd>{{.TaskID}}</dd>
<dt>Acknowledged at</dt><dd>{{.Timestamp}}</dd>
</dl>
{{else}}
<h1 class="err">Acknowledgment failed</h1>
<p>{{.Error}}</p>
{{end}}
</body>
</html>
`))

// indexPageTemplate — корневая страница со списком endpoint-ов.
var indexPageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Service}}</title>
<style>
body { font-family: sans-serif; max-width: 700px; margin: 40px auto; padding: 0 20px; }
code { background: #f0f0f0; padding: 2px 4px; }
li { margin: 6px 0; }
</style>
</head>
<body>
<h1>{{.Service}}</h1>
<p>{{.Description}} (v{{.Version}})</p>
<ul>
<li><code>POST /api/acknowledge</code> — acknowledge an alert (JSON body: dag_id, task_id)</li>
<li><code>GET /api/acknowledge?dag_id=...&amp;task_id=...</code> — acknowledge via link, HTML confirmation</li>
<li><code>GET /api/acknowledge/status/{dag_id}</code> — current alert flag state</li>
<li><code>POST /api/acknowledge/reset/{dag_id}</code> — re-enable alerts</li>
<li><code>GET /health</code> — service liveness</li>
<li><code>GET /metrics</code> — Prometheus metrics</li>
</ul>
</body>
</html>
`))

// indexPageData — данные корневой страницы.
type indexPageData struct {
	Service     string
	Description string
	Version     string
}

// ackTimestampFormat — формат server-side времени на странице подтверждения.
const ackTimestampFormat = "2006-01-02 15:04:05 MST"

// renderAckPage рендерит страницу подтверждения с заданным статусом.
func renderAckPage(w http.ResponseWriter, logger logging.Logger, status int, data ackPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := ackPageTemplate.Execute(w, data); err != nil {
		logger.Warn("не удалось отрендерить страницу подтверждения", "error", err)
	}
}

// ackTimestamp возвращает текущее время для страницы подтверждения.
func ackTimestamp(now time.Time) string {
	return now.Format(ackTimestampFormat)
}
