package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every HomeGuard topic.
const TopicPrefix = "homeguard"

// Topics provides builders for HomeGuard MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.DeviceState("alice@example.com", 7)
//	// Returns: "homeguard/state/alice@example.com/7"
type Topics struct{}

// SystemStatus is the presence topic carrying online/offline and the LWT.
//
// Example: homeguard/system/status
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// Status is the retained status board snapshot.
//
// Example: homeguard/status
func (Topics) Status() string {
	return TopicPrefix + "/status"
}

// DeviceState is the retained state of one device.
//
// Example: homeguard/state/alice@example.com/7
func (Topics) DeviceState(ownerID string, deviceID int64) string {
	return fmt.Sprintf("%s/state/%s/%d", TopicPrefix, topicSegment(ownerID), deviceID)
}

// AllDeviceStates matches every device state topic.
//
// Pattern: homeguard/state/+/+
func (Topics) AllDeviceStates() string {
	return TopicPrefix + "/state/+/+"
}

// topicSegment makes s safe as a single topic level. Separators and
// wildcards are percent-encoded.
func topicSegment(s string) string {
	return segmentEscaper.Replace(s)
}

var segmentEscaper = strings.NewReplacer("%", "%25", "/", "%2F", "+", "%2B", "#", "%23")

// validPublishTopic reports whether topic can be published to.
func validPublishTopic(topic string) bool {
	return topic != "" && !strings.ContainsAny(topic, "+#")
}
