package naming

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcc-station/mcc-go/pkg/ident"
)

// Kinds used by the typed generators and lookups.
const (
	KindSession = "session"
	KindDevice  = "device"
	KindChannel = "channel"
)

// StampLayout is the fixed-width, lexically sortable timestamp layout
// embedded in names (YYYYMMDDTHHMMSS).
const StampLayout = "20060102T150405"

const separator = "."

// canonicalIDLen is the length of xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
const canonicalIDLen = 36

// Name is a decoded name token.
type Name struct {
	// Kind is the first segment, e.g. "session".
	Kind string

	// ID is the unique identifier segment.
	ID uuid.UUID

	// Info is the optional annotation; empty when absent.
	Info string

	// Stamp is the embedded timestamp text as found in the token.
	// It is informational and never parsed.
	Stamp string

	// Decoded is the clock time at which the token was decoded. The
	// embedded timestamp is not reconstructed.
	Decoded time.Time
}

// Codec encodes and decodes name tokens using a clock.
// The zero value uses time.Now.
type Codec struct {
	// Now returns the current time. Local time is expected.
	Now func() time.Time
}

func (c Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Encode produces "kind.timestamp.uuid", with ".info" appended when info
// is non-empty.
func (c Codec) Encode(kind string, id uuid.UUID, info string) string {
	var b strings.Builder
	b.Grow(len(kind) + len(StampLayout) + 36 + len(info) + 3)
	b.WriteString(kind)
	b.WriteString(separator)
	b.WriteString(c.now().Format(StampLayout))
	b.WriteString(separator)
	b.WriteString(id.String())
	if info != "" {
		b.WriteString(separator)
		b.WriteString(info)
	}
	return b.String()
}

// Decode splits text on its first three separators. It fails when fewer
// than two separators exist or the third segment is not a uuid in the
// canonical hyphenated form. Everything after the third separator is the
// info annotation.
func (c Codec) Decode(text string) (Name, bool) {
	kind, rest, ok := strings.Cut(text, separator)
	if !ok {
		return Name{}, false
	}
	stamp, rest, ok := strings.Cut(rest, separator)
	if !ok {
		return Name{}, false
	}
	idText, info, _ := strings.Cut(rest, separator)
	if len(idText) != canonicalIDLen {
		return Name{}, false
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return Name{}, false
	}

	return Name{
		Kind:    kind,
		ID:      id,
		Info:    info,
		Stamp:   stamp,
		Decoded: c.now(),
	}, true
}

func (c Codec) lookup(text, kind string) (uuid.UUID, bool) {
	name, ok := c.Decode(text)
	if !ok || name.Kind != kind {
		return uuid.UUID{}, false
	}
	return name.ID, true
}

// GetSession decodes a session name.
func (c Codec) GetSession(text string) (ident.TmSession, bool) {
	id, ok := c.lookup(text, KindSession)
	return ident.TmSession(id), ok
}

// GetDevice decodes a device name.
func (c Codec) GetDevice(text string) (ident.Device, bool) {
	id, ok := c.lookup(text, KindDevice)
	return ident.Device(id), ok
}

// GetChannel decodes a channel name.
func (c Codec) GetChannel(text string) (ident.Channel, bool) {
	id, ok := c.lookup(text, KindChannel)
	return ident.Channel(id), ok
}

// SessionFile generates a session folder name.
func (c Codec) SessionFile(s ident.TmSession) string {
	return c.Encode(KindSession, s.UUID(), "")
}

// DeviceFile generates a device file name.
func (c Codec) DeviceFile(d ident.Device) string {
	return c.Encode(KindDevice, d.UUID(), "")
}

// ChannelFile generates a channel file name.
func (c Codec) ChannelFile(ch ident.Channel) string {
	return c.Encode(KindChannel, ch.UUID(), "")
}

var defaultCodec Codec

// Encode encodes with the wall clock. See Codec.Encode.
func Encode(kind string, id uuid.UUID, info string) string {
	return defaultCodec.Encode(kind, id, info)
}

// Decode decodes with the wall clock. See Codec.Decode.
func Decode(text string) (Name, bool) {
	return defaultCodec.Decode(text)
}

// GetSession decodes a session name with the wall clock.
func GetSession(text string) (ident.TmSession, bool) {
	return defaultCodec.GetSession(text)
}

// GetDevice decodes a device name with the wall clock.
func GetDevice(text string) (ident.Device, bool) {
	return defaultCodec.GetDevice(text)
}

// GetChannel decodes a channel name with the wall clock.
func GetChannel(text string) (ident.Channel, bool) {
	return defaultCodec.GetChannel(text)
}

// SessionFile generates a session folder name with the wall clock.
func SessionFile(s ident.TmSession) string {
	return defaultCodec.SessionFile(s)
}

// DeviceFile generates a device file name with the wall clock.
func DeviceFile(d ident.Device) string {
	return defaultCodec.DeviceFile(d)
}

// ChannelFile generates a channel file name with the wall clock.
func ChannelFile(ch ident.Channel) string {
	return defaultCodec.ChannelFile(ch)
}
