package device

import "fmt"

// Gate is an open/close barrier with no adjustable setting.
type Gate struct {
	base
}

// NewGate builds an unsaved gate. status must be StatusOpen or StatusClosed.
func NewGate(ownerID, name, status string) (*Gate, error) {
	if err := validateIdentity(ownerID, name); err != nil {
		return nil, err
	}
	if status != StatusOpen && status != StatusClosed {
		return nil, fmt.Errorf("%w: gate status %q", ErrInvalidStatus, status)
	}
	return &Gate{base: newBase(ownerID, name, status)}, nil
}

func (g *Gate) Kind() Kind   { return KindGate }
func (g *Gate) Setting() int { return 0 }
func (g *Gate) IsOn() bool   { return g.status == StatusOpen }

func (g *Gate) TurnOn() Outcome {
	if g.status == StatusOpen {
		return Outcome{Message: g.name + " is already OPEN.", Supported: true}
	}
	g.status = StatusOpen
	g.touch()
	return Outcome{Message: g.name + " is OPENING...", Changed: true, Supported: true}
}

func (g *Gate) TurnOff() Outcome {
	g.status = StatusClosed
	g.touch()
	return Outcome{Message: g.name + " is CLOSING...", Changed: true, Supported: true}
}

// AdjustSetting never fails and never changes a gate.
func (g *Gate) AdjustSetting(int) (Outcome, error) {
	return Outcome{Message: g.name + ": Gates do not have adjustable settings."}, nil
}

func (g *Gate) Record() Record { return g.record(KindGate, 0) }

func (g *Gate) Clone() Device {
	cpy := *g
	return &cpy
}

func (*Gate) sealed() {}
