package relay

import (
	"fmt"
	"strings"

	"github.com/mcc-station/mcc-go/pkg/ident"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

// DefaultPrefix is the root of all subjects and topics.
const DefaultPrefix = "mcc"

// RequestSubject builds the NATS subject for request state notifications.
func RequestSubject(prefix string, id wire.RequestID) string {
	return fmt.Sprintf("%s.request.%d.state", prefix, id)
}

// TelemetrySubject builds the NATS subject for a device's extension updates.
func TelemetrySubject(prefix string, device ident.Device, info string) string {
	return fmt.Sprintf("%s.telemetry.%s.%s", prefix, device, token(info, "."))
}

// RequestTopic builds the MQTT topic for request state notifications.
func RequestTopic(prefix string, id wire.RequestID) string {
	return fmt.Sprintf("%s/request/%d/state", prefix, id)
}

// TelemetryTopic builds the MQTT topic for a device's extension updates.
func TelemetryTopic(prefix string, device ident.Device, info string) string {
	return fmt.Sprintf("%s/telemetry/%s/%s", prefix, device, token(info, "/"))
}

// token makes s safe as a single subject or topic level.
func token(s, sep string) string {
	if s == "" {
		return "_"
	}
	r := strings.NewReplacer(sep, "_", " ", "_", "*", "_", ">", "_", "+", "_", "#", "_")
	return r.Replace(s)
}
