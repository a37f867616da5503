package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/homeguard-core/internal/device"
)

// Action names a device transition.
type Action string

const (
	ActionTurnOn        Action = "turn_on"
	ActionTurnOff       Action = "turn_off"
	ActionAdjustSetting Action = "adjust_setting"
)

// Command is a request to change one device.
type Command struct {
	Action Action `json:"action"`
	// Value is required for adjust_setting and ignored otherwise.
	Value *int `json:"value,omitempty"`
}

// Result is what a caller sees after a command.
type Result struct {
	CommandID   string    `json:"command_id"`
	DeviceID    int64     `json:"device_id"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	Setting     int       `json:"setting"`
	Changed     bool      `json:"changed"`
	Supported   bool      `json:"supported"`
	LastUpdated time.Time `json:"last_updated"`

	// Device is the device as the command left it, captured under the
	// device lock. Nil when the command failed before the transition.
	Device *device.Record `json:"device,omitempty"`
}

// Outcome is delivered on the channel returned by Submit.
type Outcome struct {
	Result Result
	Err    error
}

var (
	// ErrUnknownAction is returned for an action other than the three above.
	ErrUnknownAction = errors.New("command: unknown action")

	// ErrMissingValue is returned when adjust_setting has no value.
	ErrMissingValue = errors.New("command: value required")

	// ErrForbidden is returned when the actor neither owns the device nor is an admin.
	ErrForbidden = errors.New("command: forbidden")

	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("command: state not persisted")
)

// PersistenceError reports that a transition was applied but the store did
// not accept it. The device state is unconfirmed until the next read.
type PersistenceError struct {
	DeviceID int64
	Op       string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("command: %s device %d: state not persisted: %v", e.Op, e.DeviceID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPersistence) hold.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Validate checks the command shape. Range checks belong to the device.
func (c Command) Validate() error {
	switch c.Action {
	case ActionTurnOn, ActionTurnOff:
		return nil
	case ActionAdjustSetting:
		if c.Value == nil {
			return ErrMissingValue
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, c.Action)
	}
}
