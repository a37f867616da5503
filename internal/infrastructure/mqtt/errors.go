package mqtt

import "errors"

// Sentinel errors. Wrapped errors carry the topic or broker detail.
var (
	ErrDisabled         = errors.New("mqtt: disabled in configuration")
	ErrNotConnected     = errors.New("mqtt: not connected")
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
	ErrInvalidQoS       = errors.New("mqtt: qos must be 0, 1 or 2")

	// ErrInvalidTopic rejects empty topics and topics containing wildcards.
	ErrInvalidTopic = errors.New("mqtt: invalid publish topic")
)
