package task

import "errors"

var (
	// ErrTaskNotFound is returned when no task has the correlation id.
	ErrTaskNotFound = errors.New("task: not found")

	// ErrTaskExists is returned when a correlation id is reused.
	ErrTaskExists = errors.New("task: correlation id already in use")

	// ErrTaskTerminal is returned when a state transition targets a task
	// that is already success or failed.
	ErrTaskTerminal = errors.New("task: already in a terminal state")

	// ErrInvalidTask is returned for tasks missing required fields.
	ErrInvalidTask = errors.New("task: invalid")
)
