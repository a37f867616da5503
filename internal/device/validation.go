package device

import (
	"fmt"
	"strings"

	"github.com/nerrad567/homeguard-core/internal/validation"
)

var validKinds map[Kind]struct{}

func init() {
	validKinds = make(map[Kind]struct{}, len(AllKinds()))
	for _, k := range AllKinds() {
		validKinds[k] = struct{}{}
	}
}

// ValidateKind reports whether k is a supported kind.
func ValidateKind(k Kind) error {
	if _, ok := validKinds[k]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKind, k)
	}
	return nil
}

func validateIdentity(ownerID, name string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidDevice)
	}
	if err := validation.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDevice, err)
	}
	return nil
}

// New builds an unsaved device of the given kind in its default off state.
// Lights start at brightness 0.
func New(kind Kind, ownerID, name string) (Device, error) {
	switch kind {
	case KindLight:
		return NewLight(ownerID, name, 0, StatusOff)
	case KindGate:
		return NewGate(ownerID, name, StatusClosed)
	default:
		return nil, ValidateKind(kind)
	}
}

// Hydrate rebuilds a device from a stored record. The record must be
// internally consistent; names are not re-validated so legacy rows still load.
func Hydrate(rec Record) (Device, error) {
	if rec.OwnerID == "" || rec.Name == "" {
		return nil, fmt.Errorf("%w: record %d missing owner or name", ErrInvalidDevice, rec.ID)
	}

	b := base{
		id:          rec.ID,
		ownerID:     rec.OwnerID,
		name:        rec.Name,
		status:      rec.Status,
		createdAt:   rec.CreatedAt.UTC(),
		lastUpdated: rec.LastUpdated.UTC(),
	}

	switch rec.Kind {
	case KindLight:
		if rec.Status != StatusOn && rec.Status != StatusOff {
			return nil, fmt.Errorf("%w: light %d has status %q", ErrInvalidStatus, rec.ID, rec.Status)
		}
		if err := validation.ValidateBrightness(rec.SettingValue); err != nil {
			return nil, fmt.Errorf("%w: light %d: %w", ErrInvalidDevice, rec.ID, err)
		}
		return &Light{base: b, brightness: rec.SettingValue}, nil
	case KindGate:
		if rec.Status != StatusOpen && rec.Status != StatusClosed {
			return nil, fmt.Errorf("%w: gate %d has status %q", ErrInvalidStatus, rec.ID, rec.Status)
		}
		return &Gate{base: b}, nil
	default:
		return nil, ValidateKind(rec.Kind)
	}
}

// withID returns a copy of d carrying the store-assigned id.
func withID(d Device, id int64) Device {
	switch v := d.Clone().(type) {
	case *Light:
		v.id = id
		return v
	case *Gate:
		v.id = id
		return v
	default:
		panic(fmt.Sprintf("device: unknown implementation %T", d))
	}
}
