package device

import "errors"

// Domain errors for the device package.
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // drop the message
//	}
var (
	// ErrDeviceNotFound is returned when an identifier does not resolve to a
	// registered device.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when registering a hardware or client ID
	// that is already taken.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")
)
