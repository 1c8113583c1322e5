package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/parley/pkg/domain"
)

// debugHooks traces a run. It leaves OnChoicesDisplayed unset: a subscriber
// with that hook counts as a presenter.
func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStarted: func(_ context.Context, e *domain.StartedEvent) error {
			logger.Debug("run started", "run_id", e.RunID, "chain", e.Chain.Name(), "nodes", e.Chain.Len())
			return nil
		},
		OnEnded: func(_ context.Context, e *domain.EndedEvent) error {
			logger.Debug("run ended", "run_id", e.RunID, "chain", e.Chain.Name(), "exit_code", e.ExitCode)
			return nil
		},
		OnLineDisplayed: func(_ context.Context, e *domain.LineEvent) error {
			logger.Debug("line", "run_id", e.RunID, "node", e.Index, "speaker", e.SpeakerKey, "line", e.LineIndex)
			return nil
		},
		OnChoicesCleared: func(context.Context) error {
			logger.Debug("choice made")
			return nil
		},
	}
}
