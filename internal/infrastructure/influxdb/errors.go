package influxdb

import "errors"

// Sentinel errors. Asynchronous write failures reach SetOnError wrapped
// in ErrWriteFailed.
var (
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrWriteFailed      = errors.New("influxdb: write failed")
)
