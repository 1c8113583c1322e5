package domain

import (
	"context"
	"time"
)

// EventType names a lifecycle event.
type EventType string

const (
	EventStarted           EventType = "started"
	EventEnded             EventType = "ended"
	EventLineDisplayed     EventType = "line_displayed"
	EventChoicesDisplayed  EventType = "choices_displayed"
	EventChoicesCleared    EventType = "choices_cleared"
	EventContinueRequested EventType = "continue_requested"
)

// StartedEvent is fired once before the first node of a run.
type StartedEvent struct {
	RunID     string    `json:"run_id"`
	Chain     *Chain    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// EndedEvent is fired once after the last node of a run.
type EndedEvent struct {
	RunID     string    `json:"run_id"`
	Chain     *Chain    `json:"-"`
	ExitCode  int       `json:"exit_code"`
	Timestamp time.Time `json:"timestamp"`
}

// LineEvent asks subscribers to reveal one line, replacing any text shown before.
// The context handed to OnLineDisplayed is cancelled when the reveal is skipped.
type LineEvent struct {
	RunID        string      `json:"run_id"`
	Index        int         `json:"index"`
	Node         *SpokenLine `json:"-"`
	LineIndex    int         `json:"line_index"`
	SpeakerKey   string      `json:"speaker_key"`
	Speaker      string      `json:"speaker"`
	SpeakerKnown bool        `json:"speaker_known"`
	Voice        string      `json:"voice,omitempty"`
	Text         string      `json:"text"`
}

// ChoicesEvent hands the option texts to the presenter, which must lock Slot exactly once.
type ChoicesEvent struct {
	RunID   string      `json:"run_id"`
	Index   int         `json:"index"`
	Node    *Choice     `json:"-"`
	Options []string    `json:"options"`
	Slot    *ChoiceSlot `json:"-"`
}

// LifecycleHooks is one subscriber. Every non-nil callback of every subscriber
// for a given event runs concurrently, and the driver waits for all of them.
// Returned errors are logged and do not stop the run.
type LifecycleHooks struct {
	OnStarted           func(context.Context, *StartedEvent) error
	OnEnded             func(context.Context, *EndedEvent) error
	OnLineDisplayed     func(context.Context, *LineEvent) error
	OnChoicesDisplayed  func(context.Context, *ChoicesEvent) error
	OnChoicesCleared    func(context.Context) error
	OnContinueRequested func(context.Context) error
}
