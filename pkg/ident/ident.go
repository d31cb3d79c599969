package ident

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when identifier text cannot be parsed.
var ErrInvalidID = errors.New("invalid identifier")

// Tag distinguishes identifier families at compile time.
type Tag interface {
	label() string
}

type (
	deviceTag      struct{}
	channelTag     struct{}
	protocolTag    struct{}
	firmwareTag    struct{}
	deviceUiTag    struct{}
	radarTag       struct{}
	tmSessionTag   struct{}
	groupTag       struct{}
	tmExtensionTag struct{}
)

func (deviceTag) label() string      { return "device" }
func (channelTag) label() string     { return "channel" }
func (protocolTag) label() string    { return "protocol" }
func (firmwareTag) label() string    { return "firmware" }
func (deviceUiTag) label() string    { return "device-ui" }
func (radarTag) label() string       { return "radar" }
func (tmSessionTag) label() string   { return "tm-session" }
func (groupTag) label() string       { return "group" }
func (tmExtensionTag) label() string { return "tm-extension" }

// ID is an opaque 128-bit identifier of family T.
// IDs are comparable, usable as map keys and ordered by their bytes.
type ID[T Tag] [16]byte

// Identifier families.
type (
	Device      = ID[deviceTag]
	Channel     = ID[channelTag]
	Protocol    = ID[protocolTag]
	Firmware    = ID[firmwareTag]
	DeviceUi    = ID[deviceUiTag]
	Radar       = ID[radarTag]
	TmSession   = ID[tmSessionTag]
	Group       = ID[groupTag]
	TmExtension = ID[tmExtensionTag]
)

// New returns a random (version 4) identifier.
func New[T Tag]() ID[T] {
	return ID[T](uuid.New())
}

// FromUUID wraps a uuid.UUID.
func FromUUID[T Tag](u uuid.UUID) ID[T] {
	return ID[T](u)
}

// Parse parses the canonical hyphenated text form (braced and URN forms
// are accepted as well).
func Parse[T Tag](s string) (ID[T], error) {
	u, err := uuid.Parse(s)
	if err != nil {
		var t T
		return ID[T]{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidID, t.label(), s, err)
	}
	return ID[T](u), nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse[T Tag](s string) ID[T] {
	id, err := Parse[T](s)
	if err != nil {
		panic(err)
	}
	return id
}

// UUID returns the underlying uuid.
func (id ID[T]) UUID() uuid.UUID {
	return uuid.UUID(id)
}

// String returns the canonical hyphenated form.
func (id ID[T]) String() string {
	return uuid.UUID(id).String()
}

// Family returns the identifier family name, e.g. "device".
func (id ID[T]) Family() string {
	var t T
	return t.label()
}

// IsNil returns true for the all-zero identifier.
func (id ID[T]) IsNil() bool {
	return id == ID[T]{}
}

// Compare orders identifiers by their bytes.
func (id ID[T]) Compare(other ID[T]) int {
	return bytes.Compare(id[:], other[:])
}

// Less reports whether id sorts before other.
func (id ID[T]) Less(other ID[T]) bool {
	return id.Compare(other) < 0
}

// MarshalText implements encoding.TextMarshaler.
func (id ID[T]) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID[T]) UnmarshalText(data []byte) error {
	parsed, err := Parse[T](string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewDevice returns a random device identifier.
func NewDevice() Device { return New[deviceTag]() }

// NewChannel returns a random channel identifier.
func NewChannel() Channel { return New[channelTag]() }

// NewProtocol returns a random protocol identifier.
func NewProtocol() Protocol { return New[protocolTag]() }

// NewFirmware returns a random firmware identifier.
func NewFirmware() Firmware { return New[firmwareTag]() }

// NewDeviceUi returns a random device UI identifier.
func NewDeviceUi() DeviceUi { return New[deviceUiTag]() }

// NewRadar returns a random radar identifier.
func NewRadar() Radar { return New[radarTag]() }

// NewTmSession returns a random telemetry session identifier.
func NewTmSession() TmSession { return New[tmSessionTag]() }

// NewGroup returns a random group identifier.
func NewGroup() Group { return New[groupTag]() }

// ParseDevice parses a device identifier.
func ParseDevice(s string) (Device, error) { return Parse[deviceTag](s) }

// ParseChannel parses a channel identifier.
func ParseChannel(s string) (Channel, error) { return Parse[channelTag](s) }

// ParseProtocol parses a protocol identifier.
func ParseProtocol(s string) (Protocol, error) { return Parse[protocolTag](s) }

// ParseFirmware parses a firmware identifier.
func ParseFirmware(s string) (Firmware, error) { return Parse[firmwareTag](s) }

// ParseTmSession parses a telemetry session identifier.
func ParseTmSession(s string) (TmSession, error) { return Parse[tmSessionTag](s) }

// MustTmExtension parses a telemetry extension identity constant.
func MustTmExtension(s string) TmExtension { return MustParse[tmExtensionTag](s) }
