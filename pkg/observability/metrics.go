package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
)

// Metrics holds the parley collectors.
type Metrics struct {
	RunsStarted      prometheus.Counter
	RunsEnded        *prometheus.CounterVec
	LinesDisplayed   prometheus.Counter
	ChoicesPresented prometheus.Counter
	FunctionCalls    *prometheus.CounterVec
	FunctionDuration *prometheus.HistogramVec
	RunDuration      prometheus.Histogram

	mu      sync.Mutex
	started map[string]time.Time
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_runs_started_total",
			Help: "Dialogue runs started.",
		}),
		RunsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_runs_ended_total",
			Help: "Dialogue runs ended, by exit code.",
		}, []string{"exit_code"}),
		LinesDisplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_lines_displayed_total",
			Help: "Lines handed to the text reveal.",
		}),
		ChoicesPresented: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_choices_presented_total",
			Help: "Choices handed to the presenter.",
		}),
		FunctionCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_function_calls_total",
			Help: "Dialogue function invocations, by function and outcome.",
		}, []string{"function", "outcome"}),
		FunctionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parley_function_duration_seconds",
			Help:    "Duration of dialogue function invocations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"function"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "parley_run_duration_seconds",
			Help:    "Wall time from Started to Ended.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		started: make(map[string]time.Time),
	}
	if reg != nil {
		reg.MustRegister(
			m.RunsStarted,
			m.RunsEnded,
			m.LinesDisplayed,
			m.ChoicesPresented,
			m.FunctionCalls,
			m.FunctionDuration,
			m.RunDuration,
		)
	}
	return m
}

// Hooks returns a subscriber recording run, line and choice metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStarted: func(_ context.Context, e *domain.StartedEvent) error {
			m.RunsStarted.Inc()
			m.mu.Lock()
			m.started[e.RunID] = e.Timestamp
			m.mu.Unlock()
			return nil
		},
		OnEnded: func(_ context.Context, e *domain.EndedEvent) error {
			m.RunsEnded.WithLabelValues(strconv.Itoa(e.ExitCode)).Inc()
			m.mu.Lock()
			start, ok := m.started[e.RunID]
			delete(m.started, e.RunID)
			m.mu.Unlock()
			if ok {
				m.RunDuration.Observe(e.Timestamp.Sub(start).Seconds())
			}
			return nil
		},
		OnLineDisplayed: func(context.Context, *domain.LineEvent) error {
			m.LinesDisplayed.Inc()
			return nil
		},
		OnChoicesDisplayed: func(context.Context, *domain.ChoicesEvent) error {
			m.ChoicesPresented.Inc()
			return nil
		},
	}
}

// ObserveInvoke is a registry.InvokeObserver.
func (m *Metrics) ObserveInvoke(name string, outcome registry.Outcome, elapsed time.Duration) {
	m.FunctionCalls.WithLabelValues(name, string(outcome)).Inc()
	if outcome == registry.OutcomeOK {
		m.FunctionDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	}
}
