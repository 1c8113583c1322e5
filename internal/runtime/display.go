package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/parley/pkg/domain"
)

// display shows one node and returns how the cursor should move.
func (e *Engine) display(ctx context.Context, logger *slog.Logger, runID string, chain *domain.Chain, index int, node domain.Node) (domain.Instruction, error) {
	switch n := node.(type) {
	case *domain.SpokenLine:
		return e.displayLine(ctx, logger, runID, index, n)
	case *domain.Label:
		return domain.Next(), nil
	case *domain.Jump:
		return resolve(logger, chain, n.Label, "jump target not found"), nil
	case *domain.Exit:
		return domain.ExitWith(n.Code), nil
	case *domain.MethodCall:
		result := e.invoker.Invoke(n.Method, n.Args)
		if target, ok := chain.LabelIndex(result); ok {
			return domain.JumpTo(target), nil
		}
		if result != "" {
			logger.Warn("dialogue function result is not a label, ignoring", "method", n.Method, "result", result)
		}
		return domain.Next(), nil
	case *domain.JumpMethodCall:
		result := e.invoker.Invoke(n.Method, n.Args)
		return resolve(logger.With("method", n.Method), chain, result, "jump function returned unknown label"), nil
	case *domain.Choice:
		return e.displayChoice(ctx, logger, runID, chain, index, n)
	default:
		return domain.Instruction{}, fmt.Errorf("%w: %T at %d", domain.ErrUnknownNode, node, index)
	}
}

func resolve(logger *slog.Logger, chain *domain.Chain, label, msg string) domain.Instruction {
	if target, ok := chain.LabelIndex(label); ok {
		return domain.JumpTo(target)
	}
	logger.Warn(msg, "label", label)
	return domain.Next()
}

func (e *Engine) displayLine(ctx context.Context, logger *slog.Logger, runID string, index int, n *domain.SpokenLine) (domain.Instruction, error) {
	if len(n.Lines) == 0 {
		logger.Warn("spoken line has no text", "node", n.ID)
		return domain.Next(), nil
	}

	name, voice := n.Speaker, ""
	if e.speakers != nil {
		if s, ok := e.speakers.Lookup(n.Speaker); ok {
			if s.Name != "" {
				name = s.Name
			}
			voice = s.Voice
		}
	}
	e.setSpeaker(n.Speaker)

	last := len(n.Lines) - 1
	for i, text := range n.Lines {
		err := e.reveal(ctx, &domain.LineEvent{
			RunID:        runID,
			Index:        index,
			Node:         n,
			LineIndex:    i,
			SpeakerKey:   n.Speaker,
			Speaker:      name,
			SpeakerKnown: n.SpeakerKnown,
			Voice:        voice,
			Text:         text,
		})
		if err != nil {
			return domain.Instruction{}, err
		}
		if i < last {
			if err := e.waitForContinue(ctx); err != nil {
				return domain.Instruction{}, err
			}
		}
	}
	return domain.NextAfterInput(), nil
}

func (e *Engine) displayChoice(ctx context.Context, logger *slog.Logger, runID string, chain *domain.Chain, index int, n *domain.Choice) (domain.Instruction, error) {
	if len(n.Options) == 0 {
		logger.Warn("choice has no options", "index", index)
		return domain.Next(), nil
	}

	texts := make([]string, len(n.Options))
	for i, opt := range n.Options {
		texts[i] = opt.Text
	}

	selected, err := e.waitForChoice(ctx, &domain.ChoicesEvent{
		RunID:   runID,
		Index:   index,
		Node:    n,
		Options: texts,
	})
	if err != nil {
		return domain.Instruction{}, err
	}

	label := n.Options[selected].Label
	return resolve(logger.With("option", selected), chain, label, "choice target not found"), nil
}
