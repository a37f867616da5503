package device

import "time"

// Kind identifies the device variant.
type Kind string

const (
	KindLight Kind = "light"
	KindGate  Kind = "gate"
)

// AllKinds returns every supported device kind.
func AllKinds() []Kind {
	return []Kind{KindLight, KindGate}
}

// Device status values. Lights use ON/OFF, gates OPEN/CLOSED.
const (
	StatusOn     = "ON"
	StatusOff    = "OFF"
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// DefaultOnBrightness is applied when a light at 0% is switched on.
const DefaultOnBrightness = 50

// nowFunc is the clock used to stamp transitions. Tests replace it.
var nowFunc = time.Now

// Device is a controllable entity owned by a homeowner. State only changes
// through the transition methods; the concrete types are *Light and *Gate.
//
// A Device is not safe for concurrent mutation. The command executor
// serialises transitions per device and the Registry hands out clones.
type Device interface {
	ID() int64
	OwnerID() string
	Name() string
	Kind() Kind
	Status() string
	// Setting is the adjustable value (brightness for lights, always 0 for gates).
	Setting() int
	IsOn() bool
	LastUpdated() time.Time
	CreatedAt() time.Time

	// TurnOn moves the device to its on state (ON/OPEN). Already-on devices
	// are left unchanged and the outcome says so.
	TurnOn() Outcome

	// TurnOff moves the device to its off state (OFF/CLOSED) unconditionally.
	TurnOff() Outcome

	// AdjustSetting changes the adjustable value. Out-of-range values fail
	// with ErrInvalidArgument before anything is modified. Kinds without an
	// adjustable setting return an informational outcome with Supported false.
	AdjustSetting(value int) (Outcome, error)

	// Record returns the flat persisted form.
	Record() Record

	// Clone returns an independent copy.
	Clone() Device

	sealed()
}

// Outcome describes the result of a transition.
type Outcome struct {
	// Message is the human-readable result, e.g. "Kitchen switched OFF.".
	Message string `json:"message"`

	// Changed is false when the transition left the device as it was.
	Changed bool `json:"changed"`

	// Supported is false when the device has no such capability.
	Supported bool `json:"supported"`
}

// Record is one row of the devices table.
type Record struct {
	ID           int64     `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Kind         Kind      `json:"kind"`
	Status       string    `json:"status"`
	SettingValue int       `json:"setting_value"`
	LastUpdated  time.Time `json:"last_updated"`
	CreatedAt    time.Time `json:"created_at"`
}

// base carries the fields shared by every kind.
type base struct {
	id          int64
	ownerID     string
	name        string
	status      string
	createdAt   time.Time
	lastUpdated time.Time
}

func (b *base) ID() int64              { return b.id }
func (b *base) OwnerID() string        { return b.ownerID }
func (b *base) Name() string           { return b.name }
func (b *base) Status() string         { return b.status }
func (b *base) LastUpdated() time.Time { return b.lastUpdated }
func (b *base) CreatedAt() time.Time   { return b.createdAt }

// touch stamps lastUpdated. The stamp never moves backwards, even if the
// wall clock does.
func (b *base) touch() {
	now := nowFunc().UTC()
	if now.Before(b.lastUpdated) {
		now = b.lastUpdated
	}
	b.lastUpdated = now
}

func (b *base) record(kind Kind, setting int) Record {
	return Record{
		ID:           b.id,
		OwnerID:      b.ownerID,
		Name:         b.name,
		Kind:         kind,
		Status:       b.status,
		SettingValue: setting,
		LastUpdated:  b.lastUpdated,
		CreatedAt:    b.createdAt,
	}
}

func newBase(ownerID, name, status string) base {
	now := nowFunc().UTC()
	return base{
		ownerID:     ownerID,
		name:        name,
		status:      status,
		createdAt:   now,
		lastUpdated: now,
	}
}
