package catalog

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/mcc-station/mcc-go/pkg/ident"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

// DefaultTimeout is used for protocols that do not declare one.
const DefaultTimeout = 5 * time.Second

// ProtocolDescription describes a device protocol family.
type ProtocolDescription struct {
	ID   ident.Protocol
	Name string

	// Shareable protocols allow several devices on one channel.
	Shareable bool

	// Logging enables raw traffic capture for the protocol.
	Logging bool

	// Timeout bounds a single command round trip.
	Timeout time.Duration

	// ParamInfo documents the connection parameter string.
	ParamInfo string

	// MaxDeviceID is the largest numeric address; zero means ident.MaxDeviceID.
	MaxDeviceID ident.DeviceID

	// Firmware constrains acceptable firmware versions, e.g. ">= 1.2, < 2".
	// Empty accepts any version.
	Firmware string
}

// FirmwareDescription describes a firmware build for a protocol.
type FirmwareDescription struct {
	ID       ident.Firmware
	Protocol ident.Protocol
	Info     string
	Version  string
}

type protocolEntry struct {
	desc       ProtocolDescription
	constraint *semver.Constraints
}

type firmwareEntry struct {
	desc    FirmwareDescription
	version *semver.Version
}

// Catalog holds the known protocols and firmware builds and answers the
// lookups commands need before they are routed. Failures are reported as
// wire errors so they can resolve a command directly.
type Catalog struct {
	mu        sync.RWMutex
	protocols map[ident.Protocol]*protocolEntry
	byName    map[string]ident.Protocol
	firmwares map[ident.Firmware]*firmwareEntry
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		protocols: make(map[ident.Protocol]*protocolEntry),
		byName:    make(map[string]ident.Protocol),
		firmwares: make(map[ident.Firmware]*firmwareEntry),
	}
}

// RegisterProtocol adds a protocol. It fails with CantRegister for a nil or
// duplicate identity, a duplicate name, or an unparsable firmware constraint.
func (c *Catalog) RegisterProtocol(d ProtocolDescription) error {
	if d.ID.IsNil() {
		return wire.NewError(wire.KindCantRegister, "protocol without identity")
	}
	if d.MaxDeviceID <= 0 || d.MaxDeviceID > ident.MaxDeviceID {
		d.MaxDeviceID = ident.MaxDeviceID
	}
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}

	entry := &protocolEntry{desc: d}
	if d.Firmware != "" {
		cons, err := semver.NewConstraint(d.Firmware)
		if err != nil {
			return wire.Errorf(wire.KindCantRegister, "protocol %s: firmware constraint %q: %v", d.Name, d.Firmware, err)
		}
		entry.constraint = cons
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.protocols[d.ID]; exists {
		return wire.Errorf(wire.KindCantRegister, "protocol %s already registered", d.ID)
	}
	if d.Name != "" {
		if _, exists := c.byName[d.Name]; exists {
			return wire.Errorf(wire.KindCantRegister, "protocol name %q already registered", d.Name)
		}
		c.byName[d.Name] = d.ID
	}
	c.protocols[d.ID] = entry
	return nil
}

// Protocol returns the description of id, or a ProtocolUnknown error.
func (c *Catalog) Protocol(id ident.Protocol) (ProtocolDescription, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.protocols[id]
	if !ok {
		return ProtocolDescription{}, wire.NewError(wire.KindProtocolUnknown, id.String())
	}
	return e.desc, nil
}

// ProtocolByName returns the description registered under name.
func (c *Catalog) ProtocolByName(name string) (ProtocolDescription, error) {
	c.mu.RLock()
	id, ok := c.byName[name]
	c.mu.RUnlock()
	if !ok {
		return ProtocolDescription{}, wire.NewError(wire.KindProtocolUnknown, name)
	}
	return c.Protocol(id)
}

// Protocols returns all protocols ordered by name.
func (c *Catalog) Protocols() []ProtocolDescription {
	c.mu.RLock()
	out := make([]ProtocolDescription, 0, len(c.protocols))
	for _, e := range c.protocols {
		out = append(out, e.desc)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.Less(out[j].ID)
	})
	return out
}

// Timeout returns the command timeout for protocol, or DefaultTimeout when
// the protocol is unknown.
func (c *Catalog) Timeout(protocol ident.Protocol) time.Duration {
	d, err := c.Protocol(protocol)
	if err != nil {
		return DefaultTimeout
	}
	return d.Timeout
}

// RegisterFirmware adds a firmware build. Its protocol must be registered
// (ProtocolUnknown) and its version must be valid semver (CantRegister).
func (c *Catalog) RegisterFirmware(f FirmwareDescription) error {
	if f.ID.IsNil() {
		return wire.NewError(wire.KindCantRegister, "firmware without identity")
	}
	v, err := semver.NewVersion(f.Version)
	if err != nil {
		return wire.Errorf(wire.KindCantRegister, "firmware %s: version %q: %v", f.Info, f.Version, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.protocols[f.Protocol]; !ok {
		return wire.NewError(wire.KindProtocolUnknown, f.Protocol.String())
	}
	if _, exists := c.firmwares[f.ID]; exists {
		return wire.Errorf(wire.KindCantRegister, "firmware %s already registered", f.ID)
	}
	c.firmwares[f.ID] = &firmwareEntry{desc: f, version: v}
	return nil
}

// Firmware returns the description of id, or a FirmwareUnknown error.
func (c *Catalog) Firmware(id ident.Firmware) (FirmwareDescription, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.firmwares[id]
	if !ok {
		return FirmwareDescription{}, wire.NewError(wire.KindFirmwareUnknown, id.String())
	}
	return e.desc, nil
}

// CheckFirmware verifies that firmware id is known and satisfies its
// protocol's constraint (FirmwareIncompatible otherwise).
func (c *Catalog) CheckFirmware(id ident.Firmware) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fw, ok := c.firmwares[id]
	if !ok {
		return wire.NewError(wire.KindFirmwareUnknown, id.String())
	}
	p, ok := c.protocols[fw.desc.Protocol]
	if !ok {
		return wire.NewError(wire.KindProtocolUnknown, fw.desc.Protocol.String())
	}
	if p.constraint == nil {
		return nil
	}
	if ok, errs := p.constraint.Validate(fw.version); !ok {
		reason := p.desc.Firmware
		if len(errs) > 0 {
			reason = errs[0].Error()
		}
		return wire.Errorf(wire.KindFirmwareIncompatible, "%s %s: %s", fw.desc.Info, fw.version, reason)
	}
	return nil
}

// CheckFirmwareChange returns FirmwareChanged when a device reports a
// firmware other than the one on record. A nil recorded firmware accepts
// any report.
func CheckFirmwareChange(recorded, reported ident.Firmware) error {
	if recorded.IsNil() || recorded == reported {
		return nil
	}
	return wire.Errorf(wire.KindFirmwareChanged, "%s -> %s", recorded, reported)
}

// ValidateProtocolID checks that the protocol is known and the numeric
// address is assigned and within the protocol's range.
func (c *Catalog) ValidateProtocolID(pid ident.ProtocolID) error {
	d, err := c.Protocol(pid.Protocol)
	if err != nil {
		return err
	}
	if !pid.IsSet() {
		return wire.Errorf(wire.KindInconsistentData, "%s: device id not set", pid)
	}
	if pid.DeviceID < 0 || pid.DeviceID > d.MaxDeviceID {
		return wire.Errorf(wire.KindInconsistentData, "%s: device id out of range 0..%d", pid, d.MaxDeviceID)
	}
	return nil
}

// SameProtocol checks that all identities belong to one protocol, as group
// commands require. An empty list is accepted.
func SameProtocol(ids ...ident.ProtocolID) error {
	for _, id := range ids[min(1, len(ids)):] {
		if id.Protocol != ids[0].Protocol {
			return wire.NewError(wire.KindProtocolsShouldBeSame,
				fmt.Sprintf("%s and %s", ids[0].Protocol, id.Protocol))
		}
	}
	return nil
}
