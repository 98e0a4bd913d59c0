package command

import "errors"

var (
	// ErrUnsupportedCommand is returned for a command kind the cameras do
	// not understand. Nothing is published.
	ErrUnsupportedCommand = errors.New("command: unsupported command")

	// ErrInvalidParams is returned when a kind's required parameters are
	// missing.
	ErrInvalidParams = errors.New("command: invalid parameters")

	// ErrCircuitOpen is returned while the publisher is refusing to dial
	// after repeated connection failures.
	ErrCircuitOpen = errors.New("command: circuit breaker open")
)
