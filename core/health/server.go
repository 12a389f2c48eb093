// Package health exposes a minimal liveness endpoint for process
// supervisors and uptime probes.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdfgram/pdfgram/core/buildinfo"
	"github.com/pdfgram/pdfgram/core/logger"
)

// Server serves GET /healthz on its own listener, separate from the
// webhook ingress so probes keep working in long-poll mode too.
type Server struct {
	listen    string
	startedAt time.Time
	sessions  func() int
	srv       *http.Server
}

// NewServer builds a health server. sessions reports the number of
// currently active user sessions; nil is treated as zero.
func NewServer(listen string, sessions func() int) *Server {
	return &Server{
		listen:    listen,
		startedAt: time.Now(),
		sessions:  sessions,
	}
}

type healthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	ActiveSessions int    `json:"active_sessions"`
}

// Start begins serving in a background goroutine. Listener errors other
// than graceful shutdown are logged, not fatal.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.srv = &http.Server{
		Addr:              s.listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.HTTP.Info("health endpoint up",
			slog.String("event", "health.start"),
			slog.String("listen", s.listen),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.HTTP.Error("health endpoint failed",
				slog.String("event", "health.fail"),
				slog.String("listen", s.listen),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// Shutdown stops the listener, waiting for in-flight probes.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	active := 0
	if s.sessions != nil {
		active = s.sessions()
	}

	resp := healthResponse{
		Status:         "ok",
		Version:        buildinfo.Version,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		ActiveSessions: active,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
