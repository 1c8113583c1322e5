// Package http exposes a dialogue engine over HTTP: runs are started and
// answered with small JSON requests and lifecycle events stream over a
// websocket.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Engine is the part of the dialogue engine the server drives.
type Engine interface {
	Run(ctx context.Context, chain *domain.Chain) (int, error)
	Continue() bool
	Skip() bool
	Choose(index int) error
	Snapshot() domain.Session
	Chains(ctx context.Context) ([]string, error)
	Subscribe(hooks domain.LifecycleHooks) func()
	Loader() ports.ChainLoader
}

// Server serves one engine. Only one run is active at a time.
type Server struct {
	engine  Engine
	logger  *slog.Logger
	stream  *broadcaster
	metrics http.Handler
	replay  int

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	active      atomic.Bool
	unsubscribe func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrNop(logger)
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithReplay sets how many recent events a new stream client receives.
func WithReplay(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.replay = n
		}
	}
}

// NewServer subscribes to engine and returns the server. Close releases it.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
		replay: 64,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stream = newBroadcaster(s.replay)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.unsubscribe = engine.Subscribe(s.hooks())
	return s
}

// hooks forwards every lifecycle event to the stream. Choices are answered
// later through POST /choice, so the presenter returns at once.
func (s *Server) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStarted: func(_ context.Context, ev *domain.StartedEvent) error {
			s.publish(domain.EventStarted, ev.RunID, map[string]any{"chain": ev.Chain.Name()})
			return nil
		},
		OnEnded: func(_ context.Context, ev *domain.EndedEvent) error {
			s.publish(domain.EventEnded, ev.RunID, map[string]any{"chain": ev.Chain.Name(), "exit_code": ev.ExitCode})
			return nil
		},
		OnLineDisplayed: func(_ context.Context, ev *domain.LineEvent) error {
			s.publish(domain.EventLineDisplayed, ev.RunID, ev)
			return nil
		},
		OnChoicesDisplayed: func(_ context.Context, ev *domain.ChoicesEvent) error {
			s.publish(domain.EventChoicesDisplayed, ev.RunID, ev)
			return nil
		},
		OnChoicesCleared: func(context.Context) error {
			s.publish(domain.EventChoicesCleared, s.engine.Snapshot().RunID, nil)
			return nil
		},
		OnContinueRequested: func(context.Context) error {
			s.publish(domain.EventContinueRequested, s.engine.Snapshot().RunID, nil)
			return nil
		},
	}
}

func (s *Server) publish(t domain.EventType, runID string, data any) {
	s.stream.publish(Message{Type: string(t), RunID: runID, Time: time.Now().UTC(), Data: data})
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.health)
	r.Get("/state", s.state)
	r.Get("/chains", s.chains)
	r.Get("/events", s.events)
	r.Post("/runs", s.startRun)
	r.Post("/continue", s.continueRun)
	r.Post("/skip", s.skip)
	r.Post("/choice", s.choose)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

// Close stops the active run, disconnects stream clients and waits for the
// run to end.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
	s.unsubscribe()
	s.stream.closeAll()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type runRequest struct {
	Chain string `json:"chain"`
}

type choiceRequest struct {
	Index *int `json:"index"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": s.stream.count()})
}

func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) chains(w http.ResponseWriter, r *http.Request) {
	names, err := s.engine.Chains(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chains": names})
}

func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Chain == "" {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body: chain is required"))
		return
	}

	loader := s.engine.Loader()
	if loader == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no chain loader configured"))
		return
	}
	chain, err := loader.Load(r.Context(), req.Chain)
	if errors.Is(err, domain.ErrChainNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if !s.active.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, domain.ErrAlreadyRunning)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.active.Store(false)
		code, err := s.engine.Run(s.ctx, chain)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("run failed", "chain", chain.Name(), "err", err)
			return
		}
		s.logger.Info("run finished", "chain", chain.Name(), "exit_code", code)
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{"chain": chain.Name()})
}

func (s *Server) continueRun(w http.ResponseWriter, _ *http.Request) {
	if !s.engine.Continue() {
		writeError(w, http.StatusConflict, errors.New("not waiting for continue"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) skip(w http.ResponseWriter, _ *http.Request) {
	if !s.engine.Skip() {
		writeError(w, http.StatusConflict, errors.New("no line is being revealed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) choose(w http.ResponseWriter, r *http.Request) {
	var req choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body: index is required"))
		return
	}

	err := s.engine.Choose(*req.Index)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrChoiceOutOfRange):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrNothingPending), errors.Is(err, domain.ErrChoiceLocked):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
