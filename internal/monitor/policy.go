package monitor

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Security states. security_status only ever holds one of these.
const (
	SecurityAlert  = "ALERT - Unlocked Door!"
	SecurityNormal = "Security Normal"
)

// SecurityPolicy decides the security state at a given instant.
type SecurityPolicy interface {
	Security(now time.Time) string
}

// SecurityFunc adapts a function to SecurityPolicy.
type SecurityFunc func(now time.Time) string

func (f SecurityFunc) Security(now time.Time) string { return f(now) }

// TimeWindowPolicy alternates between alert and normal every Window:
// the first half of each 2*Window period is an alert.
type TimeWindowPolicy struct {
	Window time.Duration
}

func (p TimeWindowPolicy) Security(now time.Time) string {
	w := p.Window.Milliseconds()
	if w <= 0 {
		return SecurityNormal
	}
	if now.UnixMilli()%(2*w) < w {
		return SecurityAlert
	}
	return SecurityNormal
}

// TemperatureSource produces a temperature reading in whole °C.
type TemperatureSource interface {
	Temperature(ctx context.Context) (int, error)
}

// RandomTemperature returns a uniformly random reading in [Min, Max].
type RandomTemperature struct {
	Min int
	Max int
}

func (r RandomTemperature) Temperature(context.Context) (int, error) {
	if r.Max < r.Min {
		return 0, fmt.Errorf("temperature range [%d,%d] is empty", r.Min, r.Max)
	}
	return r.Min + rand.IntN(r.Max-r.Min+1), nil //nolint:gosec // simulated reading, not security sensitive
}

// FormatTemperature renders a reading the way the status board stores it.
func FormatTemperature(c int) string {
	return fmt.Sprintf("%d°C", c)
}
