package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementEnvironment = "environment"
	MeasurementDeviceState = "device_state"
)

// Reading is one monitor tick.
type Reading struct {
	TemperatureC int
	Security     string
	Alert        bool
	Time         time.Time
}

// DeviceState is one committed device transition.
type DeviceState struct {
	DeviceID int64
	OwnerID  string
	Kind     string
	Status   string
	Setting  int
	On       bool
	Time     time.Time
}

// WriteReading queues an environment point. Dropped when not connected.
func (c *Client) WriteReading(r Reading) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(readingPoint(c.site, r))
}

// WriteDeviceState queues a device_state point. Dropped when not connected.
func (c *Client) WriteDeviceState(s DeviceState) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(deviceStatePoint(c.site, s))
}

func readingPoint(site string, r Reading) *write.Point {
	return write.NewPoint(
		MeasurementEnvironment,
		map[string]string{"site": site},
		map[string]any{
			"temperature_c":   r.TemperatureC,
			"security_alert":  r.Alert,
			"security_status": r.Security,
		},
		stamp(r.Time),
	)
}

func deviceStatePoint(site string, s DeviceState) *write.Point {
	return write.NewPoint(
		MeasurementDeviceState,
		map[string]string{
			"site":      site,
			"device_id": strconv.FormatInt(s.DeviceID, 10),
			"owner":     s.OwnerID,
			"kind":      s.Kind,
		},
		map[string]any{
			"status":  s.Status,
			"setting": s.Setting,
			"on":      s.On,
		},
		stamp(s.Time),
	)
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
