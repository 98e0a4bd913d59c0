package device

import (
	"math"
	"time"
)

// Connection status values.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Run state values.
const (
	RunStateRecording = "recording"
	RunStateStopped   = "stopped"
)

// Device is a registered camera.
//
// HardwareID is the stable identity used everywhere inside CamLink.
// ClientID is the transport identity the camera uses in its MQTT topics.
type Device struct {
	ID              int64      `json:"-"`
	HardwareID      string     `json:"hardware_id"`
	ClientID        string     `json:"client_id"`
	Hotel           string     `json:"hotel,omitempty"`
	Location        string     `json:"location,omitempty"`
	WiFiName        string     `json:"wifi_name,omitempty"`
	FirmwareVersion string     `json:"firmware_version,omitempty"`
	Status          string     `json:"status"`
	RunState        string     `json:"run_state,omitempty"`
	LeftStorage     *int64     `json:"left_storage,omitempty"`
	BatteryPercent  *int       `json:"electric_percent,omitempty"`
	SignalStrength  *int64     `json:"network_signal_strength,omitempty"`
	LastOnline      *time.Time `json:"last_online,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StatusFields is a partial status update. Nil fields are left unchanged.
type StatusFields struct {
	Status      *string
	RunState    *string
	LeftStorage *int64
	// Battery is a fraction in [0, 1].
	Battery *float64
	Signal  *int64
}

// IsEmpty reports whether no field is set.
func (f StatusFields) IsEmpty() bool {
	return f.Status == nil && f.RunState == nil && f.LeftStorage == nil && f.Battery == nil && f.Signal == nil
}

// Merge returns f with every field set in other applied on top.
func (f StatusFields) Merge(other StatusFields) StatusFields {
	if other.Status != nil {
		f.Status = other.Status
	}
	if other.RunState != nil {
		f.RunState = other.RunState
	}
	if other.LeftStorage != nil {
		f.LeftStorage = other.LeftStorage
	}
	if other.Battery != nil {
		f.Battery = other.Battery
	}
	if other.Signal != nil {
		f.Signal = other.Signal
	}
	return f
}

// Status is the latest known state of one device held in the StatusCache.
type Status struct {
	DeviceID    string    `json:"device_id"`
	Status      string    `json:"status,omitempty"`
	RunState    string    `json:"run_state,omitempty"`
	LeftStorage *int64    `json:"left_storage,omitempty"`
	Battery     *float64  `json:"battery,omitempty"`
	Signal      *int64    `json:"signal_strength,omitempty"`
	LastUpdate  time.Time `json:"last_update"`
}

// Clone returns a copy that shares no pointers with s.
func (s Status) Clone() Status {
	out := s
	out.LeftStorage = clonePtr(s.LeftStorage)
	out.Battery = clonePtr(s.Battery)
	out.Signal = clonePtr(s.Signal)
	return out
}

// apply replaces the fields set in f.
func (s *Status) apply(f StatusFields) {
	if f.Status != nil {
		s.Status = *f.Status
	}
	if f.RunState != nil {
		s.RunState = *f.RunState
	}
	if f.LeftStorage != nil {
		s.LeftStorage = clonePtr(f.LeftStorage)
	}
	if f.Battery != nil {
		s.Battery = clonePtr(f.Battery)
	}
	if f.Signal != nil {
		s.Signal = clonePtr(f.Signal)
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v. Handy for building StatusFields.
func Ptr[T any](v T) *T {
	return &v
}

// BatteryPercent converts a 0–1 battery fraction to the integer percent
// stored in the devices table, clamped to [0, 100]. NaN maps to 0.
func BatteryPercent(fraction float64) int {
	switch {
	case math.IsNaN(fraction) || fraction <= 0:
		return 0
	case fraction >= 1:
		return 100
	default:
		return int(fraction*100 + 0.5)
	}
}

// NormaliseStatus maps the values cameras report onto StatusOnline or
// StatusOffline. Unknown values are returned unchanged.
func NormaliseStatus(s string) string {
	switch s {
	case "online", "Online", "ONLINE", "1", "true":
		return StatusOnline
	case "offline", "Offline", "OFFLINE", "0", "false":
		return StatusOffline
	default:
		return s
	}
}
