package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist or was deleted.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when an owner already has a device with the same name.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned when a device cannot be built from its fields.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidArgument is returned when a transition argument is out of range.
	// The device is left untouched.
	ErrInvalidArgument = errors.New("device: invalid argument")

	// ErrInvalidKind is returned for a kind other than light or gate.
	ErrInvalidKind = errors.New("device: invalid kind")

	// ErrInvalidStatus is returned when a status does not belong to the device kind.
	ErrInvalidStatus = errors.New("device: invalid status")
)
