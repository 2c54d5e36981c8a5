// Package server exposes the greeting flow over HTTP: an HTML page at /,
// a JSON health check at /health and a JSON configuration dump at /debug.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/hellodb/internal/logging"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

// RequestIDHeader carries the per-request id on responses.
const RequestIDHeader = "X-Request-Id"

// Info is the non-sensitive configuration shown on /debug.
type Info struct {
	Environment       string
	AWSRegion         string
	DBHost            string
	DBPort            int
	DBName            string
	UsernameParameter string
	PasswordParameter string
	HTTPPort          int
}

// Server serves the greeting page. It holds no per-request state.
type Server struct {
	greeter   hellodb.GreetingProvider
	info      Info
	logger    hellodb.Logger
	started   time.Time
	now       func() time.Time
	lookupEnv func(string) (string, bool)
	newID     func() string
}

// New creates a Server. Panics if greeter or logger is nil.
func New(greeter hellodb.GreetingProvider, info Info, logger hellodb.Logger) *Server {
	if greeter == nil {
		panic("greeter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Server{
		greeter:   greeter,
		info:      info,
		logger:    logger,
		started:   time.Now(),
		now:       time.Now,
		lookupEnv: os.LookupEnv,
		newID:     uuid.NewString,
	}
}

// Handler returns the routed handler with request logging and panic recovery.
// Each request's context carries a logger prefixed with its request id.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /debug", s.handleDebug)
	return s.withRequestLog(s.withRecover(mux))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is Run with a caller-provided listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = s.newID()
		}
		w.Header().Set(RequestIDHeader, id)
		s.logger.Info("%s - %s %s - %s [%s]", s.now().UTC().Format(time.RFC3339), r.Method, r.URL.Path, r.RemoteAddr, id)

		ctx := logging.NewContext(r.Context(), logging.WithPrefix(s.logger, id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(r.Context(), s.logger).Error("Error processing request %s %s: %v", r.Method, r.URL.Path, rec)
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = errorTemplate.Execute(w, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
