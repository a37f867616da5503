package device

import (
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/homeguard-core/internal/validation"
)

// fixedClock pins nowFunc for the duration of a test and returns a setter.
func fixedClock(t *testing.T, start time.Time) func(time.Time) {
	t.Helper()
	now := start
	prev := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = prev })
	return func(next time.Time) { now = next }
}

func mustLight(t *testing.T, name string, brightness int, status string) *Light {
	t.Helper()
	l, err := NewLight("owner@home.com", name, brightness, status)
	if err != nil {
		t.Fatalf("NewLight() error = %v", err)
	}
	return l
}

func mustGate(t *testing.T, name, status string) *Gate {
	t.Helper()
	g, err := NewGate("owner@home.com", name, status)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}
	return g
}

func TestLight_KitchenScenario(t *testing.T) {
	l := mustLight(t, "Kitchen", 0, StatusOff)

	out := l.TurnOn()
	if out.Message != "Kitchen switched ON. Brightness: 50%." {
		t.Errorf("TurnOn message = %q", out.Message)
	}
	if l.Status() != StatusOn || l.Brightness() != 50 {
		t.Fatalf("after TurnOn: status=%s brightness=%d, want ON/50", l.Status(), l.Brightness())
	}

	before := l.Record()
	if _, err := l.AdjustSetting(150); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("AdjustSetting(150) error = %v, want ErrInvalidArgument", err)
	}
	if l.Record() != before {
		t.Errorf("rejected adjust changed state: %+v -> %+v", before, l.Record())
	}

	out, err := l.AdjustSetting(0)
	if err != nil {
		t.Fatalf("AdjustSetting(0) error = %v", err)
	}
	if out.Message != "Kitchen brightness set to 0%." {
		t.Errorf("AdjustSetting message = %q", out.Message)
	}
	if l.Status() != StatusOff || l.Brightness() != 0 {
		t.Errorf("after AdjustSetting(0): status=%s brightness=%d, want OFF/0", l.Status(), l.Brightness())
	}
}

func TestLight_TurnOnAlreadyOn(t *testing.T) {
	for _, b := range []int{1, 37, 100} {
		l := mustLight(t, "Hall", b, StatusOn)
		stamp := l.LastUpdated()

		out := l.TurnOn()
		if out.Message != "Hall is already ON." || out.Changed {
			t.Errorf("brightness %d: outcome = %+v", b, out)
		}
		if l.Brightness() != b || !l.LastUpdated().Equal(stamp) {
			t.Errorf("brightness %d: no-op TurnOn modified the light", b)
		}
	}
}

func TestLight_TurnOffKeepsBrightness(t *testing.T) {
	l := mustLight(t, "Porch", 80, StatusOn)

	out := l.TurnOff()
	if out.Message != "Porch switched OFF." {
		t.Errorf("TurnOff message = %q", out.Message)
	}
	if l.Status() != StatusOff || l.Brightness() != 80 {
		t.Errorf("status=%s brightness=%d, want OFF/80", l.Status(), l.Brightness())
	}

	// Turning off twice is harmless.
	l.TurnOff()
	if l.Status() != StatusOff {
		t.Error("second TurnOff changed status")
	}

	out = l.TurnOn()
	if out.Message != "Porch switched ON. Brightness: 80%." {
		t.Errorf("TurnOn message = %q", out.Message)
	}
}

func TestLight_AdjustSettingDerivesStatus(t *testing.T) {
	l := mustLight(t, "Study", 10, StatusOff)

	for v := 0; v <= 100; v++ {
		if _, err := l.AdjustSetting(v); err != nil {
			t.Fatalf("AdjustSetting(%d) error = %v", v, err)
		}
		want := StatusOn
		if v == 0 {
			want = StatusOff
		}
		if l.Status() != want || l.Brightness() != v {
			t.Fatalf("AdjustSetting(%d): status=%s brightness=%d", v, l.Status(), l.Brightness())
		}
	}
}

func TestLight_AdjustSettingOutOfRangeUnchanged(t *testing.T) {
	setNow := fixedClock(t, time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC))
	l := mustLight(t, "Bedroom", 40, StatusOn)
	before := l.Record()
	setNow(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))

	for _, v := range []int{-100, -1, 101, 150, 1 << 20} {
		_, err := l.AdjustSetting(v)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("AdjustSetting(%d) error = %v, want ErrInvalidArgument", v, err)
		}
		if !errors.Is(err, validation.ErrInvalid) {
			t.Errorf("AdjustSetting(%d) error should wrap the validation error", v)
		}
		if l.Record() != before {
			t.Fatalf("AdjustSetting(%d) changed the light", v)
		}
	}
}

func TestNewLight(t *testing.T) {
	tests := []struct {
		name       string
		owner      string
		devName    string
		brightness int
		status     string
		wantErr    error
		wantBright int
	}{
		{"off at zero", "a@b.com", "Kitchen Light", 0, StatusOff, nil, 0},
		{"on at zero snaps", "a@b.com", "Kitchen Light", 0, StatusOn, nil, DefaultOnBrightness},
		{"on at 75", "a@b.com", "Kitchen Light", 75, StatusOn, nil, 75},
		{"no owner", "", "Kitchen Light", 10, StatusOn, ErrInvalidDevice, 0},
		{"bad name", "a@b.com", "L1", 10, StatusOn, ErrInvalidDevice, 0},
		{"bad brightness", "a@b.com", "Kitchen Light", 101, StatusOn, ErrInvalidArgument, 0},
		{"gate status", "a@b.com", "Kitchen Light", 10, StatusOpen, ErrInvalidStatus, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLight(tt.owner, tt.devName, tt.brightness, tt.status)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Brightness() != tt.wantBright {
				t.Errorf("brightness = %d, want %d", l.Brightness(), tt.wantBright)
			}
			if l.ID() != 0 {
				t.Errorf("unsaved light has id %d", l.ID())
			}
		})
	}
}

func TestGate_GarageScenario(t *testing.T) {
	g := mustGate(t, "Garage", StatusClosed)

	out := g.TurnOn()
	if out.Message != "Garage is OPENING..." || g.Status() != StatusOpen {
		t.Fatalf("TurnOn: %q status=%s", out.Message, g.Status())
	}

	stamp := g.LastUpdated()
	out = g.TurnOn()
	if out.Message != "Garage is already OPEN." || out.Changed {
		t.Errorf("second TurnOn outcome = %+v", out)
	}
	if g.Status() != StatusOpen || !g.LastUpdated().Equal(stamp) {
		t.Error("second TurnOn modified the gate")
	}

	out = g.TurnOff()
	if out.Message != "Garage is CLOSING..." || g.Status() != StatusClosed {
		t.Errorf("TurnOff: %q status=%s", out.Message, g.Status())
	}
}

func TestGate_AdjustSettingIsNoop(t *testing.T) {
	for _, status := range []string{StatusOpen, StatusClosed} {
		g := mustGate(t, "Front Gate", status)
		before := g.Record()

		for _, v := range []int{-1, 0, 50, 100, 999} {
			out, err := g.AdjustSetting(v)
			if err != nil {
				t.Fatalf("AdjustSetting(%d) error = %v", v, err)
			}
			if out.Supported || out.Changed {
				t.Errorf("AdjustSetting(%d) outcome = %+v", v, out)
			}
			if out.Message != "Front Gate: Gates do not have adjustable settings." {
				t.Errorf("message = %q", out.Message)
			}
		}
		if g.Record() != before {
			t.Errorf("AdjustSetting changed a %s gate", status)
		}
	}
}

func TestLastUpdated_Monotonic(t *testing.T) {
	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	setNow := fixedClock(t, start)
	l := mustLight(t, "Lounge", 20, StatusOff)

	steps := []struct {
		at  time.Time
		run func()
	}{
		{start.Add(time.Second), func() { l.TurnOn() }},
		{start.Add(-time.Hour), func() { l.TurnOff() }}, // clock stepped back
		{start.Add(2 * time.Second), func() { _, _ = l.AdjustSetting(60) }},
		{start.Add(2 * time.Second), func() { l.TurnOff() }},
	}

	prev := l.LastUpdated()
	for i, s := range steps {
		setNow(s.at)
		s.run()
		if l.LastUpdated().Before(prev) {
			t.Fatalf("step %d: lastUpdated went backwards %v -> %v", i, prev, l.LastUpdated())
		}
		prev = l.LastUpdated()
	}
	if !prev.Equal(start.Add(2 * time.Second)) {
		t.Errorf("final lastUpdated = %v", prev)
	}
}

func TestClone_Independent(t *testing.T) {
	l := mustLight(t, "Desk Lamp", 30, StatusOn)
	c := l.Clone()

	if _, err := c.AdjustSetting(90); err != nil {
		t.Fatal(err)
	}
	if l.Brightness() != 30 {
		t.Errorf("original brightness = %d after mutating clone", l.Brightness())
	}
}

func TestHydrate(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		rec     Record
		wantErr error
	}{
		{"light", Record{ID: 1, OwnerID: "a@b.com", Name: "Kitchen Light", Kind: KindLight, Status: StatusOn, SettingValue: 75, LastUpdated: now, CreatedAt: now}, nil},
		{"gate", Record{ID: 2, OwnerID: "a@b.com", Name: "Garage Gate", Kind: KindGate, Status: StatusClosed, LastUpdated: now, CreatedAt: now}, nil},
		{"unknown kind", Record{ID: 3, OwnerID: "a@b.com", Name: "Fan", Kind: "fan", Status: StatusOn}, ErrInvalidKind},
		{"light with gate status", Record{ID: 4, OwnerID: "a@b.com", Name: "Lamp", Kind: KindLight, Status: StatusOpen}, ErrInvalidStatus},
		{"gate with light status", Record{ID: 5, OwnerID: "a@b.com", Name: "Gate", Kind: KindGate, Status: StatusOn}, ErrInvalidStatus},
		{"brightness out of range", Record{ID: 6, OwnerID: "a@b.com", Name: "Lamp", Kind: KindLight, Status: StatusOn, SettingValue: 200}, ErrInvalidDevice},
		{"missing owner", Record{ID: 7, Name: "Lamp", Kind: KindLight, Status: StatusOff}, ErrInvalidDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Hydrate(tt.rec)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Record() != tt.rec {
				t.Errorf("round trip = %+v, want %+v", d.Record(), tt.rec)
			}
		})
	}
}

func TestNew_DefaultsPerKind(t *testing.T) {
	l, err := New(KindLight, "a@b.com", "Reading Lamp")
	if err != nil {
		t.Fatal(err)
	}
	if l.Status() != StatusOff || l.Setting() != 0 {
		t.Errorf("light defaults = %s/%d", l.Status(), l.Setting())
	}

	g, err := New(KindGate, "a@b.com", "Side Gate")
	if err != nil {
		t.Fatal(err)
	}
	if g.Status() != StatusClosed || g.IsOn() {
		t.Errorf("gate defaults = %s", g.Status())
	}

	if _, err := New("fan", "a@b.com", "Ceiling Fan"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("New(fan) error = %v, want ErrInvalidKind", err)
	}
}
