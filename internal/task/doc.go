// Package task tracks the lifecycle of issued commands.
//
// Every command gets a Task in state "calling" just before it is
// published, keyed by its correlation (request) id; a command that fails
// to publish has its task discarded. A matching device response moves it
// once to "success" or "failed":
//
//	calling ──► success
//	   │
//	   └──────► failed
//
// Terminal tasks reject further transitions with ErrTaskTerminal; only the
// description may change afterwards. Tasks that never get a response stay
// calling; Tracker.Pending lists them for inspection.
package task
