// Package influxdb records HomeGuard telemetry in InfluxDB v2.
//
// Two measurements are written:
//
//	environment   one point per monitor tick
//	              tags: site
//	              fields: temperature_c (int), security_alert (bool), security_status (string)
//
//	device_state  one point per committed device transition
//	              tags: site, device_id, owner, kind
//	              fields: status (string), setting (int), on (bool)
//
// Writes are non-blocking and batched by the client library. Errors arrive
// asynchronously through the SetOnError callback; telemetry never fails
// the operation that produced it.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	defer client.Close()
//
//	client.WriteReading(influxdb.Reading{TemperatureC: 22, Security: "Security Normal", Time: now})
package influxdb
