package main

import (
	"time"

	"github.com/nerrad567/homeguard-core/internal/device"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/homeguard-core/internal/monitor"
)

// mqttPublisher adapts the infrastructure MQTT client to the monitor's
// Publisher and the executor's StatePublisher. Both publish retained so
// late subscribers see the latest value.
type mqttPublisher struct {
	client *mqtt.Client
	topics mqtt.Topics
}

// PublishStatus implements monitor.Publisher.
func (p *mqttPublisher) PublishStatus(snapshot map[string]string) error {
	return p.client.PublishJSON(p.topics.Status(), snapshot, true)
}

// PublishDeviceState implements command.StatePublisher.
func (p *mqttPublisher) PublishDeviceState(rec device.Record) error {
	return p.client.PublishJSON(p.topics.DeviceState(rec.OwnerID, rec.ID), rec, true)
}

// influxRecorder adapts the InfluxDB client to the monitor's Recorder and
// the executor's StateRecorder.
type influxRecorder struct {
	client *influxdb.Client
}

// RecordReading implements monitor.Recorder.
func (r *influxRecorder) RecordReading(rd monitor.Reading) {
	r.client.WriteReading(influxdb.Reading{
		TemperatureC: rd.Temperature,
		Security:     rd.Security,
		Alert:        rd.Security == monitor.SecurityAlert,
		Time:         rd.CheckedAt,
	})
}

// RecordDeviceState implements command.StateRecorder.
func (r *influxRecorder) RecordDeviceState(rec device.Record) {
	r.client.WriteDeviceState(deviceState(rec))
}

func deviceState(rec device.Record) influxdb.DeviceState {
	return influxdb.DeviceState{
		DeviceID: rec.ID,
		OwnerID:  rec.OwnerID,
		Kind:     string(rec.Kind),
		Status:   rec.Status,
		Setting:  rec.SettingValue,
		On:       rec.Status == device.StatusOn || rec.Status == device.StatusOpen,
		Time:     rec.LastUpdated,
	}
}

func secondsDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
