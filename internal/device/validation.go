package device

import (
	"fmt"
	"strings"
)

const maxIDLength = 128

// ValidateDevice checks a device before registration.
func ValidateDevice(d *Device) error {
	if err := validateID("hardware_id", d.HardwareID); err != nil {
		return err
	}
	if err := validateID("client_id", d.ClientID); err != nil {
		return err
	}
	if d.Status != "" && d.Status != StatusOnline && d.Status != StatusOffline {
		return fmt.Errorf("%w: status %q", ErrInvalidDevice, d.Status)
	}
	return nil
}

// validateID rejects IDs that cannot appear as a single MQTT topic level.
func validateID(field, id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: %s is required", ErrInvalidDevice, field)
	case len(id) > maxIDLength:
		return fmt.Errorf("%w: %s longer than %d characters", ErrInvalidDevice, field, maxIDLength)
	case strings.ContainsAny(id, "/+#"):
		return fmt.Errorf("%w: %s must not contain '/', '+' or '#'", ErrInvalidDevice, field)
	}
	return nil
}
