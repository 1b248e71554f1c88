package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"tasktimer/internal/app"
	"tasktimer/internal/config"
	appLog "tasktimer/internal/log"
	"tasktimer/internal/model"
	"tasktimer/internal/selector"
)

// Publisher holds the latest application snapshot. The UI goroutine
// publishes after every frame; HTTP handlers only read.
type Publisher struct {
	mu        sync.RWMutex
	status    *app.Status
	updatedAt time.Time
}

func (p *Publisher) Publish(s app.Status) {
	p.mu.Lock()
	p.status = &s
	p.updatedAt = time.Now()
	p.mu.Unlock()
}

// Latest returns the last published snapshot, if any.
func (p *Publisher) Latest() (app.Status, time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.status == nil {
		return app.Status{}, time.Time{}, false
	}
	return *p.status, p.updatedAt, true
}

// Server provides a read-only HTTP view of the timer and the task list.
type Server struct {
	listen string
	auth   *config.BasicAuthConfig
	pub    *Publisher
	mux    *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(listen string, auth *config.BasicAuthConfig, pub *Publisher) *Server {
	s := &Server{
		listen: listen,
		auth:   auth,
		pub:    pub,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. An empty
// username or password disables it.
func (s *Server) basicAuthEnabled() bool {
	if s.auth == nil {
		return false
	}
	return s.auth.Username != "" && s.auth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.auth.Username
	password := s.auth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="tasktimer", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/tasks", s.handleTasks)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// taskDTO is a JSON-friendly view of a task. Weight and Overdue are
// evaluated at the snapshot's timer time.
type taskDTO struct {
	UID      string     `json:"uid"`
	Summary  string     `json:"summary"`
	Stamp    time.Time  `json:"stamp"`
	Starts   *time.Time `json:"starts,omitempty"`
	Due      *time.Time `json:"due,omitempty"`
	Priority int        `json:"priority"`
	Weight   int        `json:"weight"`
	Overdue  bool       `json:"overdue"`
}

// statusResponse is the JSON response shape for /api/status.
type statusResponse struct {
	Phase            string    `json:"phase"`
	RemainingSeconds float64   `json:"remaining_seconds"`
	Paused           bool      `json:"paused"`
	Syncing          bool      `json:"syncing"`
	Task             *taskDTO  `json:"task,omitempty"`
	TaskCount        int       `json:"task_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// tasksResponse is the JSON response shape for /api/tasks.
type tasksResponse struct {
	Tasks     []taskDTO `json:"tasks"`
	Syncing   bool      `json:"syncing"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toDTO(t model.Task, now time.Time) taskDTO {
	return taskDTO{
		UID:      t.UID,
		Summary:  t.Summary,
		Stamp:    t.Stamp,
		Starts:   t.Starts,
		Due:      t.Due,
		Priority: int(t.Priority),
		Weight:   selector.Weight(t, now),
		Overdue:  t.Overdue(now),
	}
}

// handleStatus returns the current phase, time remaining and shown task.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	st, updatedAt, ok := s.pub.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no status yet")
		return
	}

	resp := statusResponse{
		Phase:            string(st.Phase),
		RemainingSeconds: st.Remaining.Seconds(),
		Paused:           st.Paused,
		Syncing:          st.Syncing,
		TaskCount:        len(st.Tasks),
		UpdatedAt:        updatedAt,
	}
	if st.Task != nil {
		dto := toDTO(*st.Task, st.Now)
		resp.Task = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTasks returns the last complete task list.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	st, updatedAt, ok := s.pub.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no status yet")
		return
	}

	dtos := make([]taskDTO, 0, len(st.Tasks))
	for _, t := range st.Tasks {
		dtos = append(dtos, toDTO(t, st.Now))
	}
	writeJSON(w, http.StatusOK, tasksResponse{
		Tasks:     dtos,
		Syncing:   st.Syncing,
		UpdatedAt: updatedAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
