package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/amishk599/internradar/internal/model"
)

const aliveMessage = "Internship radar is running!"

// Status is the JSON body served on /status.
type Status struct {
	Phase     string       `json:"phase"`
	LastCycle *CycleStatus `json:"last_cycle,omitempty"`
}

// CycleStatus summarises the most recent completed cycle.
type CycleStatus struct {
	Started         time.Time `json:"started"`
	Finished        time.Time `json:"finished"`
	Found           int       `json:"found"`
	Matched         int       `json:"matched"`
	New             int       `json:"new"`
	FailedPlatforms []string  `json:"failed_platforms,omitempty"`
	PersistError    string    `json:"persist_error,omitempty"`
}

// NewStatus builds a Status from the poller's phase and last report.
func NewStatus(phase string, last model.Report, ok bool) Status {
	s := Status{Phase: phase}
	if !ok {
		return s
	}
	cs := &CycleStatus{
		Started:  last.Started,
		Finished: last.Finished,
		Found:    last.TotalFound(),
		Matched:  last.TotalMatched(),
		New:      last.TotalNew(),
	}
	for _, p := range last.FailedPlatforms() {
		cs.FailedPlatforms = append(cs.FailedPlatforms, string(p))
	}
	if last.PersistErr != nil {
		cs.PersistError = last.PersistErr.Error()
	}
	s.LastCycle = cs
	return s
}

// Server is a small liveness and status endpoint for hosted deployments.
// It answers independently of cycle state.
type Server struct {
	port   int
	status func() Status
	logger *slog.Logger
}

// NewServer creates a health server on port. status is called per /status request.
func NewServer(port int, status func() Status, logger *slog.Logger) *Server {
	return &Server{port: port, status: status, logger: logger}
}

// Handler returns the routes served by the health server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.alive)
	mux.HandleFunc("GET /healthz", s.alive)
	mux.HandleFunc("GET /status", s.statusHandler)
	return mux
}

func (s *Server) alive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, aliveMessage)
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status()); err != nil {
		s.logger.Warn("failed to encode status", "error", err)
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("health listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("health server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("health serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("health shutdown: %w", err)
	}
	s.logger.Info("health server stopped")
	return nil
}
