package domain

import "errors"

// ErrAlreadyRunning is returned when a run is started while another one is active.
var ErrAlreadyRunning = errors.New("dialogue already running")

// ErrWaitPending is returned when a second continue or choice wait is requested
// while the first one is still outstanding.
var ErrWaitPending = errors.New("wait already pending")

// ErrNothingPending is returned when a choice is submitted but no choice is being presented.
var ErrNothingPending = errors.New("no choice pending")

// ErrChoiceLocked is returned when a choice slot is locked a second time.
var ErrChoiceLocked = errors.New("choice already locked")

// ErrChoiceOutOfRange is returned when a choice slot is locked with an invalid index.
var ErrChoiceOutOfRange = errors.New("choice index out of range")

// ErrNoChoicePresenter is returned when a choice node is displayed with nobody subscribed to present it.
var ErrNoChoicePresenter = errors.New("no choice presenter subscribed")

// ErrDuplicateMethod is returned when a dialogue function name is registered twice.
var ErrDuplicateMethod = errors.New("dialogue function already registered")

// ErrUnknownNode is returned when the driver meets a node variant it cannot display.
var ErrUnknownNode = errors.New("unknown node variant")

// ErrChainNotFound is returned when a chain name cannot be found by a loader.
var ErrChainNotFound = errors.New("chain not found")
