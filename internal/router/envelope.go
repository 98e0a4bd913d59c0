package router

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/borncrazy123/CamLink/internal/device"
	"github.com/borncrazy123/CamLink/internal/media"
)

// Payload keys that decide a message's kind, plus the fields read from it.
const (
	keyVideos         = "videos"
	keyUploadQuery    = "file_list_upload_progress"
	keyUploadReport   = "file_upload_progress"
	keyResult         = "result"
	keyRequestID      = "request_id"
	keyErrorCode      = "error_code"
	keyErrorMsg       = "error_msg"
	keyStatus         = "status"
	keyRunState       = "run_state"
	keyLeftStorage    = "left_storage"
	keyBattery        = "electric_percent"
	keySignalStrength = "network_signal_strength"
)

// document is a decoded inbound payload. Field values stay raw until the
// dispatch path that needs them decodes them.
type document map[string]json.RawMessage

func decode(payload []byte) (document, error) {
	var doc document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedMessage)
	}
	return doc, nil
}

func (d document) has(key string) bool {
	_, ok := d[key]
	return ok
}

// str returns a string field. Non-string scalars are rendered as text.
func (d document) str(key string) (string, bool) {
	raw, ok := d[key]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return strings.TrimSpace(string(raw)), true
}

// number returns a numeric field. Cameras send some numbers as strings.
func (d document) number(key string) (float64, bool) {
	raw, ok := d[key]
	if !ok || isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// integer returns a whole-number field, truncating any fraction. A value
// that is not finite or does not fit in an int64 is malformed.
func (d document) integer(key string) (int64, bool, error) {
	n, ok := d.number(key)
	if !ok {
		return 0, false, nil
	}
	if math.IsNaN(n) || n < math.MinInt64 || n >= 1<<63 {
		return 0, false, fmt.Errorf("%w: %s out of range", ErrMalformedMessage, key)
	}
	return int64(n), true, nil
}

// fraction returns a field that must lie in [0, 1].
func (d document) fraction(key string) (float64, bool, error) {
	n, ok := d.number(key)
	if !ok {
		return 0, false, nil
	}
	if !validFraction(n) {
		return 0, false, fmt.Errorf("%w: %s must be between 0 and 1", ErrMalformedMessage, key)
	}
	return n, true, nil
}

func validFraction(n float64) bool {
	return !math.IsNaN(n) && n >= 0 && n <= 1
}

func (d document) requestID() string {
	id, _ := d.str(keyRequestID)
	return id
}

// statusFields extracts the status fields present in the document.
func (d document) statusFields() (device.StatusFields, error) {
	var f device.StatusFields
	if s, ok := d.str(keyStatus); ok && s != "" {
		f.Status = device.Ptr(device.NormaliseStatus(s))
	}
	if s, ok := d.str(keyRunState); ok && s != "" {
		f.RunState = device.Ptr(s)
	}
	if n, ok, err := d.integer(keyLeftStorage); err != nil {
		return device.StatusFields{}, err
	} else if ok {
		f.LeftStorage = device.Ptr(n)
	}
	if n, ok, err := d.fraction(keyBattery); err != nil {
		return device.StatusFields{}, err
	} else if ok {
		f.Battery = device.Ptr(n)
	}
	if n, ok, err := d.integer(keySignalStrength); err != nil {
		return device.StatusFields{}, err
	} else if ok {
		f.Signal = device.Ptr(n)
	}
	return f, nil
}

func (d document) videos() ([]media.Video, error) {
	var videos []media.Video
	if raw := d[keyVideos]; !isNull(raw) {
		if err := json.Unmarshal(raw, &videos); err != nil {
			return nil, fmt.Errorf("%w: videos: %w", ErrMalformedMessage, err)
		}
	}
	return videos, nil
}

// progress decodes a {file: fraction} map. Fractions may arrive as strings
// and must lie in [0, 1].
func (d document) progress(key string) (map[string]float64, error) {
	raw, ok := d[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedMessage, key)
	}
	var files document
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, key, err)
	}
	out := make(map[string]float64, len(files))
	for name := range files {
		v, ok := files.number(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%q] is not a number", ErrMalformedMessage, key, name)
		}
		if !validFraction(v) {
			return nil, fmt.Errorf("%w: %s[%q] must be between 0 and 1", ErrMalformedMessage, key, name)
		}
		out[name] = v
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
