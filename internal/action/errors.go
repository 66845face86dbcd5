package action

import "errors"

var (
	// ErrBusy rejects a request while another goal is executing.
	ErrBusy = errors.New("action: another goal is executing")

	// ErrGoalFinished is returned when canceling a goal that already has a result.
	ErrGoalFinished = errors.New("action: goal already finished")

	// ErrCanceled is attached to CANCELED results.
	ErrCanceled = errors.New("action: goal canceled")
)
