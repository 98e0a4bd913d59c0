package mqtt

import (
	"fmt"
	"strings"
)

// DefaultNamespace is the first topic level of every device topic.
const DefaultNamespace = "camera"

// TopicPrefixSystem is the base for CamLink's own presence topics.
const TopicPrefixSystem = "camlink/system"

// Device channels. The command channel is outbound; the rest are inbound.
const (
	ChannelCommand      = "cmd"
	ChannelResponse     = "resp"
	ChannelState        = "state"
	ChannelUploadStatus = "upload_file_status"
)

// Topics builds device topics of the form {namespace}/{transportId}/{channel}.
//
//	topics := mqtt.Topics{Namespace: "camera"}
//	topics.Command("a1b2c3") // "camera/a1b2c3/cmd"
//	topics.AllResponses()    // "camera/+/resp"
type Topics struct {
	Namespace string
}

func (t Topics) ns() string {
	if t.Namespace == "" {
		return DefaultNamespace
	}
	return t.Namespace
}

// =============================================================================
// Device Topics
// =============================================================================

// Command returns the topic a device listens on for commands.
func (t Topics) Command(transportID string) string {
	return fmt.Sprintf("%s/%s/%s", t.ns(), transportID, ChannelCommand)
}

// AllResponses matches command results from every device.
func (t Topics) AllResponses() string {
	return fmt.Sprintf("%s/+/%s", t.ns(), ChannelResponse)
}

// AllStates matches unsolicited status reports from every device.
func (t Topics) AllStates() string {
	return fmt.Sprintf("%s/+/%s", t.ns(), ChannelState)
}

// AllUploadStatus matches upload progress reports from every device.
func (t Topics) AllUploadStatus() string {
	return fmt.Sprintf("%s/+/%s", t.ns(), ChannelUploadStatus)
}

// Parse splits a device topic into transport ID and channel. It rejects
// topics outside the namespace, with the wrong depth, or with an empty or
// wildcard transport ID.
func (t Topics) Parse(topic string) (transportID, channel string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != t.ns() {
		return "", "", false
	}
	transportID, channel = parts[1], parts[2]
	if transportID == "" || strings.ContainsAny(transportID, "+#") {
		return "", "", false
	}
	switch channel {
	case ChannelResponse, ChannelState, ChannelUploadStatus, ChannelCommand:
		return transportID, channel, true
	default:
		return "", "", false
	}
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the retained presence topic for one CamLink session.
//
// Example: camlink/system/status/camlink-router
func (Topics) SystemStatus(clientID string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefixSystem, clientID)
}
