package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/borncrazy123/CamLink/internal/command"
	"github.com/borncrazy123/CamLink/internal/device"
)

// Measurement names.
const (
	MeasurementStatus        = "camera_status"
	MeasurementCommandResult = "camera_command"
)

// RecordStatus writes the device's merged status after an update.
func (c *Client) RecordStatus(deviceID string, s device.Status) {
	if !c.IsConnected() {
		return
	}
	if p := statusPoint(deviceID, s); p != nil {
		c.writeAPI.WritePoint(p)
	}
}

// RecordCommandResult writes one command result. kind may be empty when the
// result belongs to a command this instance did not issue.
func (c *Client) RecordCommandResult(deviceID, kind string, r command.Response) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(commandPoint(deviceID, kind, r))
}

// statusPoint returns nil when s carries no field worth recording.
func statusPoint(deviceID string, s device.Status) *write.Point {
	fields := make(map[string]any, 6)
	if s.Status != "" {
		fields["online"] = s.Status == device.StatusOnline
	}
	if s.RunState != "" {
		fields["recording"] = s.RunState == device.RunStateRecording
	}
	if s.LeftStorage != nil {
		fields["left_storage"] = *s.LeftStorage
	}
	if s.Battery != nil {
		fields["battery_percent"] = device.BatteryPercent(*s.Battery)
	}
	if s.Signal != nil {
		fields["signal_strength"] = *s.Signal
	}
	if len(fields) == 0 {
		return nil
	}

	tags := map[string]string{"device_id": deviceID}
	if s.RunState != "" {
		tags["run_state"] = s.RunState
	}
	return write.NewPoint(MeasurementStatus, tags, fields, timestampOr(s.LastUpdate))
}

func commandPoint(deviceID, kind string, r command.Response) *write.Point {
	if kind == "" {
		kind = "unknown"
	}
	result := r.Result
	if result == "" {
		result = "unknown"
	}
	return write.NewPoint(MeasurementCommandResult,
		map[string]string{
			"device_id": deviceID,
			"kind":      kind,
			"result":    result,
		},
		map[string]any{
			"error_code": r.ErrorCode,
			"request_id": r.CorrelationID,
			"succeeded":  r.Succeeded(),
		},
		timestampOr(r.Timestamp),
	)
}

func timestampOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
