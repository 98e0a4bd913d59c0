package task

import "time"

// Lifecycle states. StateCalling is the only non-terminal state.
const (
	StateCalling = "calling"
	StateSuccess = "success"
	StateFailed  = "failed"
)

// Task is the lifecycle record of one issued command.
type Task struct {
	ID            int64     `json:"id"`
	ClientID      string    `json:"client_id"`
	CorrelationID string    `json:"request_id"`
	Kind          string    `json:"kind"`
	State         string    `json:"state"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Terminal reports whether the task has left StateCalling.
func (t Task) Terminal() bool {
	return t.State == StateSuccess || t.State == StateFailed
}

// Filter narrows List results. Zero-value fields match everything.
type Filter struct {
	ClientID string
	State    string
	Kind     string
	// CreatedBefore, when set, keeps tasks created strictly earlier.
	CreatedBefore time.Time
	Limit         int
}

// ValidState reports whether s is a known lifecycle state.
func ValidState(s string) bool {
	switch s {
	case StateCalling, StateSuccess, StateFailed:
		return true
	}
	return false
}
