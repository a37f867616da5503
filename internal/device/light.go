package device

import (
	"fmt"

	"github.com/nerrad567/homeguard-core/internal/validation"
)

// Light is a dimmable light. Brightness survives being switched off.
type Light struct {
	base
	brightness int
}

// NewLight builds an unsaved light. status must be StatusOn or StatusOff.
// A light created ON at 0% is raised to DefaultOnBrightness.
func NewLight(ownerID, name string, brightness int, status string) (*Light, error) {
	if err := validateIdentity(ownerID, name); err != nil {
		return nil, err
	}
	if err := validation.ValidateBrightness(brightness); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if status != StatusOn && status != StatusOff {
		return nil, fmt.Errorf("%w: light status %q", ErrInvalidStatus, status)
	}
	if status == StatusOn && brightness == 0 {
		brightness = DefaultOnBrightness
	}
	return &Light{base: newBase(ownerID, name, status), brightness: brightness}, nil
}

func (l *Light) Kind() Kind   { return KindLight }
func (l *Light) Setting() int { return l.brightness }
func (l *Light) IsOn() bool   { return l.status == StatusOn }

// Brightness returns the brightness percentage.
func (l *Light) Brightness() int { return l.brightness }

func (l *Light) TurnOn() Outcome {
	if l.status == StatusOn {
		return Outcome{Message: l.name + " is already ON.", Supported: true}
	}
	if l.brightness == 0 {
		l.brightness = DefaultOnBrightness
	}
	l.status = StatusOn
	l.touch()
	return Outcome{
		Message:   fmt.Sprintf("%s switched ON. Brightness: %d%%.", l.name, l.brightness),
		Changed:   true,
		Supported: true,
	}
}

func (l *Light) TurnOff() Outcome {
	l.status = StatusOff
	l.touch()
	return Outcome{Message: l.name + " switched OFF.", Changed: true, Supported: true}
}

// AdjustSetting sets the brightness; 0 switches the light off, anything
// above switches it on.
func (l *Light) AdjustSetting(value int) (Outcome, error) {
	if err := validation.ValidateBrightness(value); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	l.brightness = value
	if value > 0 {
		l.status = StatusOn
	} else {
		l.status = StatusOff
	}
	l.touch()

	return Outcome{
		Message:   fmt.Sprintf("%s brightness set to %d%%.", l.name, value),
		Changed:   true,
		Supported: true,
	}, nil
}

func (l *Light) Record() Record { return l.record(KindLight, l.brightness) }

func (l *Light) Clone() Device {
	cpy := *l
	return &cpy
}

func (*Light) sealed() {}
