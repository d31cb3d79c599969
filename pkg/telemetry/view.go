package telemetry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mcc-station/mcc-go/pkg/ident"
	"github.com/mcc-station/mcc-go/pkg/log"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

// ErrDuplicateExtension is returned when registering an extension identity twice.
var ErrDuplicateExtension = errors.New("extension already registered")

// View is one device's telemetry: a Revision shared by its extensions and
// the extensions keyed by identity. The standard extensions are always
// present.
type View struct {
	device ident.Device
	rev    *Revision
	events log.Logger

	attitude *TmAttitude
	position *TmPosition
	gps      *TmGps
	motion   *TmMotion

	mu   sync.RWMutex
	exts map[ident.TmExtension]Extension
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithEventLog records every update as a telemetry event.
func WithEventLog(events log.Logger) ViewOption {
	return func(v *View) { v.events = log.OrNoop(events) }
}

// NewView creates a view for device with the standard extensions registered.
func NewView(device ident.Device, opts ...ViewOption) *View {
	v := &View{
		device: device,
		rev:    NewRevision(),
		events: log.NoopLogger{},
		exts:   make(map[ident.TmExtension]Extension),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.attitude = NewTmAttitude(v.rev)
	v.position = NewTmPosition(v.rev)
	v.gps = NewTmGps(v.rev)
	v.motion = NewTmMotion(v.rev)
	for _, e := range []Extension{v.attitude, v.position, v.gps, v.motion} {
		v.exts[e.ID()] = e
	}

	if _, noop := v.events.(log.NoopLogger); !noop {
		v.rev.Subscribe(v.record, false)
	}
	return v
}

// Device returns the device this view belongs to.
func (v *View) Device() ident.Device { return v.device }

// Revision returns the shared counter.
func (v *View) Revision() *Revision { return v.rev }

// Attitude returns the attitude extension.
func (v *View) Attitude() *TmAttitude { return v.attitude }

// Position returns the position extension.
func (v *View) Position() *TmPosition { return v.position }

// Gps returns the GPS extension.
func (v *View) Gps() *TmGps { return v.gps }

// Motion returns the motion extension.
func (v *View) Motion() *TmMotion { return v.motion }

// Register adds a device-specific extension. It must have been created with
// this view's Revision.
func (v *View) Register(e Extension) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.exts[e.ID()]; exists {
		return fmt.Errorf("%w: %s (%s)", ErrDuplicateExtension, e.Info(), e.ID())
	}
	v.exts[e.ID()] = e
	return nil
}

// Extension returns the extension with id.
func (v *View) Extension(id ident.TmExtension) (Extension, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.exts[id]
	return e, ok
}

// Extensions returns all extensions ordered by identity.
func (v *View) Extensions() []Extension {
	v.mu.RLock()
	out := make([]Extension, 0, len(v.exts))
	for _, e := range v.exts {
		out = append(out, e)
	}
	v.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID().Less(out[j].ID()) })
	return out
}

// Watch forwards updates as wire telemetry changes, for every update or
// for changes only.
func (v *View) Watch(fn func(*wire.TelemetryChange), onChangeOnly bool) Subscription {
	return v.rev.Subscribe(func(u Update) {
		fn(v.change(u))
	}, onChangeOnly)
}

func (v *View) change(u Update) *wire.TelemetryChange {
	return &wire.TelemetryChange{
		Device:    v.device,
		Extension: u.Extension,
		Info:      u.Info,
		Changed:   u.Changed,
		Revision:  u.Revision,
		Value:     u.Value,
		Timestamp: u.Time,
	}
}

func (v *View) record(u Update) {
	v.events.Log(log.Event{
		Timestamp: u.Time,
		Direction: log.DirectionIn,
		Layer:     log.LayerTelemetry,
		Category:  log.CategoryUpdate,
		DeviceID:  v.device.String(),
		Telemetry: &log.TelemetryEvent{
			Extension: u.Extension.String(),
			Info:      u.Info,
			Changed:   u.Changed,
			Revision:  u.Revision,
		},
	})
}
