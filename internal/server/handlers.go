package server

import (
	"encoding/json"
	"html/template"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/vvka-141/hellodb/internal/logging"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Hello-DB App</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: #333; }
.container { background: rgba(255, 255, 255, 0.95); border-radius: 15px; padding: 30px; box-shadow: 0 10px 30px rgba(0,0,0,0.3); text-align: center; max-width: 600px; }
.db-message { font-size: 1.2em; margin: 20px 0; padding: 15px; background-color: #e2e8f0; border-radius: 8px; border-left: 4px solid {{if .OK}}#4299e1{{else}}#e53e3e{{end}}; }
.info { color: #718096; font-size: 0.9em; line-height: 1.6; }
</style>
</head>
<body>
<div class="container">
<h1>Hello World!</h1>
<p class="info">A message from your database:</p>
<div class="db-message"><strong>{{.Text}}</strong></div>
<p class="info">Database credentials are fetched from AWS SSM Parameter Store on every request.</p>
<p class="info"><small>Timestamp: {{.Timestamp}}</small></p>
</div>
</body>
</html>
`))

var errorTemplate = template.Must(template.New("error").Parse(`<h1>Internal Server Error</h1>
<p>Sorry, something went wrong: {{.}}</p>
`))

type indexData struct {
	OK        bool
	Text      string
	Timestamp string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), s.logger)
	result := s.greeter.GetGreeting(r.Context())
	if !result.OK() {
		logger.Error("Greeting unavailable: %s", result.Text)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, indexData{
		OK:        result.OK(),
		Text:      result.Text,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("Failed to render page: %v", err)
	}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    float64           `json:"uptime"`
	Runtime   healthEnvironment `json:"environment"`
}

type healthEnvironment struct {
	GoVersion  string `json:"goVersion"`
	Platform   string `json:"platform"`
	Goroutines int    `json:"goroutines"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Uptime:    s.uptime(),
		Runtime: healthEnvironment{
			GoVersion:  runtime.Version(),
			Platform:   runtime.GOOS + "/" + runtime.GOARCH,
			Goroutines: runtime.NumGoroutine(),
		},
	})
}

type debugResponse struct {
	Environment map[string]string `json:"environment"`
	Server      debugServer       `json:"server"`
}

type debugServer struct {
	Port      int     `json:"port"`
	Uptime    float64 `json:"uptime"`
	GoVersion string  `json:"version"`
}

func (s *Server) handleDebug(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, debugResponse{
		Environment: map[string]string{
			"APP_ENV":               s.info.Environment,
			"AWS_REGION":            s.info.AWSRegion,
			"DB_HOST":               s.info.DBHost,
			"DB_PORT":               strconv.Itoa(s.info.DBPort),
			"DB_NAME":               s.info.DBName,
			"DB_USERNAME_SSM_PARAM": s.info.UsernameParameter,
			"DB_PASSWORD_SSM_PARAM": s.info.PasswordParameter,
			"AWS_ACCESS_KEY_ID":     s.presence("AWS_ACCESS_KEY_ID"),
			"AWS_SECRET_ACCESS_KEY": s.presence("AWS_SECRET_ACCESS_KEY"),
		},
		Server: debugServer{
			Port:      s.info.HTTPPort,
			Uptime:    s.uptime(),
			GoVersion: runtime.Version(),
		},
	})
}

func (s *Server) presence(key string) string {
	if v, ok := s.lookupEnv(key); ok && v != "" {
		return "SET"
	}
	return "NOT SET"
}

func (s *Server) uptime() float64 {
	return s.now().Sub(s.started).Seconds()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
