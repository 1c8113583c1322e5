// Package mcp exposes a dialogue engine as Model Context Protocol tools, so
// an assistant can play a chain: start it, read what was said, continue and
// pick options.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Engine is the part of the dialogue engine the MCP server drives.
type Engine interface {
	Run(ctx context.Context, chain *domain.Chain) (int, error)
	Continue() bool
	Choose(index int) error
	Snapshot() domain.Session
	Chains(ctx context.Context) ([]string, error)
	Subscribe(hooks domain.LifecycleHooks) func()
	Loader() ports.ChainLoader
}

// Event is one entry of the transcript returned by every tool.
type Event struct {
	Type     string   `json:"type"`
	Speaker  string   `json:"speaker,omitempty"`
	Text     string   `json:"text,omitempty"`
	Options  []string `json:"options,omitempty"`
	ExitCode *int     `json:"exit_code,omitempty"`
}

// Response is the JSON body of every tool result.
type Response struct {
	State  domain.Session `json:"state"`
	Events []Event        `json:"events"`
}

// Server wraps the engine in an MCP server. Tools return once the run is
// waiting for input again, has ended, or the settle timeout passes.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
	settle    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	active atomic.Bool

	mu      sync.Mutex
	pending []Event
	idle    chan struct{}

	unsubscribe func()
	closeOnce   sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrNop(logger)
	}
}

// WithSettleTimeout bounds how long a tool waits for the run to need input.
func WithSettleTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.settle = d
		}
	}
}

// NewServer creates the MCP server and subscribes it to engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
		logger:    logging.NewNop(),
		settle:    5 * time.Second,
		idle:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.unsubscribe = engine.Subscribe(s.hooks())
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on Stdin/Stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	defer s.Close()
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	defer s.Close()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/message", sse.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// Close cancels the active run, waits for it and detaches from the engine.
// Later calls do nothing.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.unsubscribe()
	})
}

// hooks record the transcript and wake tools whenever the run stops to wait.
// Choice locking is left to the choose tool.
func (s *Server) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLineDisplayed: func(_ context.Context, e *domain.LineEvent) error {
			speaker := e.Speaker
			if !e.SpeakerKnown {
				speaker = "???"
			}
			s.record(Event{Type: string(domain.EventLineDisplayed), Speaker: speaker, Text: e.Text}, false)
			return nil
		},
		OnContinueRequested: func(context.Context) error {
			s.record(Event{Type: string(domain.EventContinueRequested)}, true)
			return nil
		},
		OnChoicesDisplayed: func(_ context.Context, e *domain.ChoicesEvent) error {
			s.record(Event{Type: string(domain.EventChoicesDisplayed), Options: e.Options}, true)
			return nil
		},
		OnEnded: func(_ context.Context, e *domain.EndedEvent) error {
			code := e.ExitCode
			s.record(Event{Type: string(domain.EventEnded), ExitCode: &code}, true)
			return nil
		},
	}
}

func (s *Server) record(ev Event, settled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, ev)
	if settled {
		close(s.idle)
		s.idle = make(chan struct{})
	}
}

// act runs action and waits for the run to settle. It returns the transcript
// gathered since the previous tool call.
func (s *Server) act(ctx context.Context, action func() error) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	if err := action(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	timer := time.NewTimer(s.settle)
	defer timer.Stop()
	select {
	case <-idle:
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.respond()
}

func (s *Server) respond() (*mcp.CallToolResult, error) {
	s.mu.Lock()
	events := s.pending
	s.pending = nil
	s.mu.Unlock()
	if events == nil {
		events = []Event{}
	}

	body, err := json.Marshal(Response{State: s.engine.Snapshot(), Events: events})
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_chains",
		mcp.WithDescription("List the dialogue chains that can be started."),
	), s.handleListChains)

	s.mcpServer.AddTool(mcp.NewTool("start_run",
		mcp.WithDescription("Start playing a chain. Returns what was said until the dialogue needs input."),
		mcp.WithString("chain", mcp.Required(), mcp.Description("Name of the chain to play")),
	), s.handleStartRun)

	s.mcpServer.AddTool(mcp.NewTool("continue",
		mcp.WithDescription("Advance past the line being shown."),
	), s.handleContinue)

	s.mcpServer.AddTool(mcp.NewTool("choose",
		mcp.WithDescription("Pick one of the options being presented."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based option index")),
	), s.handleChoose)

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the current session state and any transcript not yet returned."),
	), func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.respond()
	})
}

func (s *Server) handleListChains(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.engine.Chains(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	body, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) handleStartRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("chain")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	loader := s.engine.Loader()
	if loader == nil {
		return mcp.NewToolResultError("no chain loader configured"), nil
	}
	chain, err := loader.Load(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.act(ctx, func() error {
		if !s.active.CompareAndSwap(false, true) {
			return domain.ErrAlreadyRunning
		}
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.active.Store(false)
			if _, err := s.engine.Run(s.ctx, chain); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("run failed", "chain", chain.Name(), "err", err)
			}
		}()
		return nil
	})
}

func (s *Server) handleContinue(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.act(ctx, func() error {
		if !s.engine.Continue() {
			return errors.New("not waiting for continue")
		}
		return nil
	})
}

func (s *Server) handleChoose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.act(ctx, func() error {
		return s.engine.Choose(index)
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("parley://chains", "Available chains",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.engine.Chains(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list chains: %w", err)
		}
		body, _ := json.Marshal(names)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "parley://chains",
				MIMEType: "application/json",
				Text:     string(body),
			},
		}, nil
	})
}
