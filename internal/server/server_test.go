package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/hellodb/internal/greeting"
	"github.com/vvka-141/hellodb/internal/logging"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

type stubGreeter struct {
	result hellodb.GreetingResult
	panics any
	calls  int
}

func (s *stubGreeter) GetGreeting(ctx context.Context) hellodb.GreetingResult {
	s.calls++
	logging.FromContext(ctx, logging.NewNullLogger()).Info("Fetching database credentials")
	if s.panics != nil {
		panic(s.panics)
	}
	return s.result
}

func testInfo() Info {
	return Info{
		Environment:       "test",
		AWSRegion:         "us-east-1",
		DBHost:            "test-host",
		DBPort:            5432,
		DBName:            "test-db",
		UsernameParameter: "/test/username",
		PasswordParameter: "/test/password",
		HTTPPort:          80,
	}
}

func newTestServer(g *stubGreeter, rec *logging.Recorder) *Server {
	s := New(g, testInfo(), rec)
	s.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	s.started = s.now().Add(-90 * time.Second)
	s.newID = func() string { return "req-123" }
	s.lookupEnv = func(key string) (string, bool) {
		if key == "AWS_ACCESS_KEY_ID" {
			return "AKIDEXAMPLE", true
		}
		return "", false
	}
	return s
}

func TestIndex_RendersGreeting(t *testing.T) {
	g := &stubGreeter{result: hellodb.Success("Hello from DB!")}
	srv := newTestServer(g, logging.NewRecorder())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Hello World!")
	assert.Contains(t, rr.Body.String(), "<strong>Hello from DB!</strong>")
	assert.Contains(t, rr.Body.String(), "2026-10-19T12:00:00Z")
	assert.Equal(t, 1, g.calls)
}

func TestIndex_RendersFailureText(t *testing.T) {
	g := &stubGreeter{result: hellodb.Failure(hellodb.MessageUnreachable)}
	rec := logging.NewRecorder()
	srv := newTestServer(g, rec)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Cannot reach the database server")
	assert.True(t, rec.Contains("Greeting unavailable"))
}

func TestIndex_EscapesMessage(t *testing.T) {
	g := &stubGreeter{result: hellodb.Success("<script>alert(1)</script>")}
	srv := newTestServer(g, logging.NewRecorder())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotContains(t, rr.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rr.Body.String(), "&lt;script&gt;")
}

func TestIndex_PanicReturns500(t *testing.T) {
	g := &stubGreeter{panics: "kaboom"}
	rec := logging.NewRecorder()
	srv := newTestServer(g, rec)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Internal Server Error")
	assert.Contains(t, rr.Body.String(), "kaboom")
	assert.True(t, rec.Contains("Error processing request GET /"))
}

func TestRequestLog(t *testing.T) {
	rec := logging.NewRecorder()
	srv := newTestServer(&stubGreeter{}, rec)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, "req-123", rr.Header().Get(RequestIDHeader))
	assert.True(t, rec.Contains("2026-10-19T12:00:00Z - GET /health - 10.0.0.7:51234 [req-123]"))
}

func TestRequestLog_KeepsIncomingID(t *testing.T) {
	srv := newTestServer(&stubGreeter{}, logging.NewRecorder())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, "upstream-id", rr.Header().Get(RequestIDHeader))
}

func TestRequestLog_IDReachesGreeterLogs(t *testing.T) {
	rec := logging.NewRecorder()
	g := &stubGreeter{result: hellodb.Failure(hellodb.MessageUnreachable)}
	srv := newTestServer(g, rec)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
	assert.True(t, rec.Contains("INFO [abc] Fetching database credentials"))
	assert.True(t, rec.Contains("ERROR [abc] Greeting unavailable"))
}

func TestIndex_FlowLogsCarryRequestID(t *testing.T) {
	rec := logging.NewRecorder()
	resolver := secretsFunc(func(context.Context, hellodb.SecretReference) (string, error) {
		return "", hellodb.NewSecretError(hellodb.SecretNotFound, "/test/username", nil)
	})
	flow := greeting.NewFlow(hellodb.FlowConfig{UsernameSecret: "/test/username"}, resolver, noSource{}, rec)
	srv := New(flow, testInfo(), rec)
	srv.newID = func() string { return "gen-7" }

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, rec.Contains("INFO [gen-7] Fetching database credentials"))
	assert.True(t, rec.Contains("ERROR [gen-7] Greeting unavailable: Secret '/test/username' does not exist"))
}

type secretsFunc func(context.Context, hellodb.SecretReference) (string, error)

func (f secretsFunc) Resolve(ctx context.Context, ref hellodb.SecretReference) (string, error) {
	return f(ctx, ref)
}

type noSource struct{}

func (noSource) WithGreeting(context.Context, hellodb.ConnectionConfig) hellodb.GreetingResult {
	return hellodb.Failure("unexpected")
}

func TestHealth(t *testing.T) {
	g := &stubGreeter{}
	srv := newTestServer(g, logging.NewRecorder())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "2026-10-19T12:00:00Z", body.Timestamp)
	assert.InDelta(t, 90, body.Uptime, 0.001)
	assert.NotEmpty(t, body.Runtime.GoVersion)
	assert.Equal(t, 0, g.calls, "health check must not touch the database")
}

func TestDebug_HidesSecrets(t *testing.T) {
	srv := newTestServer(&stubGreeter{}, logging.NewRecorder())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body debugResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, "test-host", body.Environment["DB_HOST"])
	assert.Equal(t, "5432", body.Environment["DB_PORT"])
	assert.Equal(t, "/test/password", body.Environment["DB_PASSWORD_SSM_PARAM"])
	assert.Equal(t, "SET", body.Environment["AWS_ACCESS_KEY_ID"])
	assert.Equal(t, "NOT SET", body.Environment["AWS_SECRET_ACCESS_KEY"])
	assert.NotContains(t, rr.Body.String(), "AKIDEXAMPLE")
	assert.Equal(t, 80, body.Server.Port)
}

func TestDebug_ZeroPortIsReported(t *testing.T) {
	info := testInfo()
	info.DBPort = 0
	srv := New(&stubGreeter{}, info, logging.NewNullLogger())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body debugResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "0", body.Environment["DB_PORT"])
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(&stubGreeter{}, logging.NewRecorder())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestServe_GracefulShutdown(t *testing.T) {
	g := &stubGreeter{result: hellodb.Success("hi")}
	rec := logging.NewRecorder()
	srv := New(g, testInfo(), rec)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, rec.Contains("Shutting down HTTP server"))
}

func TestNew_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { New(nil, Info{}, logging.NewNullLogger()) })
	assert.Panics(t, func() { New(&stubGreeter{}, Info{}, nil) })
}
