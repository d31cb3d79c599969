package telemetry

import (
	"slices"
	"time"

	"github.com/mcc-station/mcc-go/pkg/ident"
)

// Extension identities. These are fixed for the type, not per instance.
var (
	AttitudeID = ident.MustTmExtension("6b0d3f51-2a7e-4c8a-9a0c-5d1f7c2e9b43")
	PositionID = ident.MustTmExtension("c2f9a4e0-7d3b-4f61-8e25-1b9d6a0f3c78")
	GpsID      = ident.MustTmExtension("04e1c137-8ed9-4da5-aaa8-7bf6a8fede4e")
	MotionID   = ident.MustTmExtension("9e47b2d8-0c15-4a3e-b6f9-83a2d5e1c064")
)

// Extension labels.
const (
	AttitudeInfo = "attitude"
	PositionInfo = "position"
	GpsInfo      = "gps"
	MotionInfo   = "motion"
)

// Attitude is an orientation in degrees.
type Attitude struct {
	Heading float64 `cbor:"1,keyasint" json:"heading"`
	Pitch   float64 `cbor:"2,keyasint" json:"pitch"`
	Roll    float64 `cbor:"3,keyasint" json:"roll"`
}

// Equal compares with EpsilonEqual per component.
func (a Attitude) Equal(b Attitude) bool {
	return EpsilonEqual(a.Heading, b.Heading) &&
		EpsilonEqual(a.Pitch, b.Pitch) &&
		EpsilonEqual(a.Roll, b.Roll)
}

// TmAttitude reports a device's attitude.
type TmAttitude struct {
	*Simple[Attitude]
}

// NewTmAttitude creates an unset attitude extension.
func NewTmAttitude(rev *Revision) *TmAttitude {
	return &TmAttitude{NewSimple(AttitudeID, AttitudeInfo, rev, Attitude.Equal)}
}

// Attitude returns the current attitude.
func (e *TmAttitude) Attitude() (Attitude, bool) { return e.Value() }

// Position is a geodetic position: degrees and meters.
type Position struct {
	Latitude  float64 `cbor:"1,keyasint" json:"lat"`
	Longitude float64 `cbor:"2,keyasint" json:"lon"`
	Altitude  float64 `cbor:"3,keyasint" json:"alt"`
}

// Equal compares with EpsilonEqual per component.
func (p Position) Equal(o Position) bool {
	return EpsilonEqual(p.Latitude, o.Latitude) &&
		EpsilonEqual(p.Longitude, o.Longitude) &&
		EpsilonEqual(p.Altitude, o.Altitude)
}

// PositionFix is a position with an optional horizontal accuracy in meters.
type PositionFix struct {
	Position Position `cbor:"1,keyasint" json:"position"`
	Accuracy *float64 `cbor:"2,keyasint,omitempty" json:"accuracy,omitempty"`
}

// Equal compares position and accuracy.
func (f PositionFix) Equal(o PositionFix) bool {
	return f.Position.Equal(o.Position) && OptionalEqual(f.Accuracy, o.Accuracy)
}

// Clone returns a copy that shares no pointers with f.
func (f PositionFix) Clone() PositionFix {
	f.Accuracy = clonePtr(f.Accuracy)
	return f
}

// TmPosition reports a device's position.
type TmPosition struct {
	*Simple[PositionFix]
}

// NewTmPosition creates an unset position extension.
func NewTmPosition(rev *Revision) *TmPosition {
	return &TmPosition{NewSimple(PositionID, PositionInfo, rev, PositionFix.Equal)}
}

// Set stores a position with optional accuracy; a nil position unsets it.
// A change in accuracy alone counts as a change.
func (e *TmPosition) Set(t time.Time, pos *Position, accuracy *float64) bool {
	if pos == nil {
		return e.Update(t, nil)
	}
	return e.Update(t, &PositionFix{Position: *pos, Accuracy: accuracy})
}

// Position returns the current position.
func (e *TmPosition) Position() (Position, bool) {
	fix, ok := e.Value()
	return fix.Position, ok
}

// Accuracy returns the current accuracy, if reported.
func (e *TmPosition) Accuracy() (float64, bool) {
	fix, ok := e.Value()
	if !ok || fix.Accuracy == nil {
		return 0, false
	}
	return *fix.Accuracy, true
}

// GpsFixType is the receiver solution type.
type GpsFixType uint8

const (
	GpsNoGps GpsFixType = iota
	GpsNoFix
	GpsFix2D
	GpsFix3D
	GpsDGps
	GpsSingle
	GpsPsrDiff
	GpsL1Float
	GpsL1Int
	GpsStatic
)

// String returns the short name.
func (f GpsFixType) String() string {
	switch f {
	case GpsNoGps:
		return "NoGps"
	case GpsNoFix:
		return "NoFix"
	case GpsFix2D:
		return "Fix2D"
	case GpsFix3D:
		return "Fix3D"
	case GpsDGps:
		return "DGps"
	case GpsSingle:
		return "Single"
	case GpsPsrDiff:
		return "PsrDiff"
	case GpsL1Float:
		return "L1Float"
	case GpsL1Int:
		return "L1Int"
	case GpsStatic:
		return "Static"
	default:
		return "-"
	}
}

// Description returns a human-readable description.
func (f GpsFixType) Description() string {
	switch f {
	case GpsNoGps:
		return "No GPS connected"
	case GpsNoFix:
		return "No solution"
	case GpsFix2D:
		return "2D Fix"
	case GpsFix3D:
		return "3D Fix"
	case GpsDGps:
		return "DGPS/SBAS aided 3D position"
	case GpsSingle:
		return "Single point position"
	case GpsPsrDiff:
		return "Pseudorange differential solution"
	case GpsL1Float:
		return "Floating L1 ambiguity solution"
	case GpsL1Int:
		return "Integer L1 ambiguity solution"
	case GpsStatic:
		return "Static fixed, typically used for base stations"
	default:
		return "-"
	}
}

// GpsSat is one tracked satellite.
type GpsSat struct {
	ID        uint8 `cbor:"1,keyasint" json:"id"`
	Elevation uint8 `cbor:"2,keyasint" json:"elevation"`
	Azimuth   uint8 `cbor:"3,keyasint" json:"azimuth"`
	SNR       uint8 `cbor:"4,keyasint" json:"snr"`
	Used      bool  `cbor:"5,keyasint" json:"used"`
}

// GpsState is the receiver state.
type GpsState struct {
	Satellites []GpsSat    `cbor:"1,keyasint,omitempty" json:"satellites,omitempty"`
	Count      uint8       `cbor:"2,keyasint" json:"count"`
	Fix        *GpsFixType `cbor:"3,keyasint,omitempty" json:"fix,omitempty"`
}

// Equal compares all fields.
func (g GpsState) Equal(o GpsState) bool {
	if g.Count != o.Count || !slices.Equal(g.Satellites, o.Satellites) {
		return false
	}
	if g.Fix == nil || o.Fix == nil {
		return g.Fix == nil && o.Fix == nil
	}
	return *g.Fix == *o.Fix
}

// Clone returns a copy that shares no memory with g.
func (g GpsState) Clone() GpsState {
	g.Satellites = slices.Clone(g.Satellites)
	g.Fix = clonePtr(g.Fix)
	return g
}

// TmGps reports GNSS receiver state. Satellites and fix summary are
// reported by separate setters; each counts as an update of the whole.
type TmGps struct {
	*Simple[GpsState]
}

// NewTmGps creates a GPS extension.
func NewTmGps(rev *Revision) *TmGps {
	return &TmGps{NewSimple(GpsID, GpsInfo, rev, GpsState.Equal)}
}

// SetSatellites replaces the satellite list.
func (e *TmGps) SetSatellites(t time.Time, sats []GpsSat) bool {
	return e.UpdateFunc(t, func(prev GpsState, _ bool) (GpsState, bool) {
		prev.Satellites = sats
		return prev, true
	})
}

// SetFix sets the satellite count and fix type (nil when unknown).
func (e *TmGps) SetFix(t time.Time, count uint8, fix *GpsFixType) bool {
	return e.UpdateFunc(t, func(prev GpsState, _ bool) (GpsState, bool) {
		prev.Count = count
		prev.Fix = fix
		return prev, true
	})
}

// Satellites returns the satellite list.
func (e *TmGps) Satellites() []GpsSat {
	s, _ := e.Value()
	return s.Satellites
}

// Count returns the satellite count.
func (e *TmGps) Count() uint8 {
	s, _ := e.Value()
	return s.Count
}

// FixType returns the fix type, if known.
func (e *TmGps) FixType() (GpsFixType, bool) {
	s, _ := e.Value()
	if s.Fix == nil {
		return 0, false
	}
	return *s.Fix, true
}

// Motion holds optional flight indicators. Speeds are m/s, angles degrees.
type Motion struct {
	Velocity        *float64 `cbor:"1,keyasint,omitempty" json:"velocity,omitempty"`
	Altitude        *float64 `cbor:"2,keyasint,omitempty" json:"altitude,omitempty"`
	Heading         *float64 `cbor:"3,keyasint,omitempty" json:"heading,omitempty"`
	HeadingMagnetic *float64 `cbor:"4,keyasint,omitempty" json:"heading_magnetic,omitempty"`
	VerticalSpeed   *float64 `cbor:"5,keyasint,omitempty" json:"vertical_speed,omitempty"`
	AngleOfAttack   *float64 `cbor:"6,keyasint,omitempty" json:"aoa,omitempty"`
	WindDirection   *float64 `cbor:"7,keyasint,omitempty" json:"wind_direction,omitempty"`
	WindVelocity    *float64 `cbor:"8,keyasint,omitempty" json:"wind_velocity,omitempty"`
}

// Equal compares fields with OptionalEqual.
func (m Motion) Equal(o Motion) bool {
	return OptionalEqual(m.Velocity, o.Velocity) &&
		OptionalEqual(m.Altitude, o.Altitude) &&
		OptionalEqual(m.Heading, o.Heading) &&
		OptionalEqual(m.HeadingMagnetic, o.HeadingMagnetic) &&
		OptionalEqual(m.VerticalSpeed, o.VerticalSpeed) &&
		OptionalEqual(m.AngleOfAttack, o.AngleOfAttack) &&
		OptionalEqual(m.WindDirection, o.WindDirection) &&
		OptionalEqual(m.WindVelocity, o.WindVelocity)
}

// Clone returns a copy that shares no pointers with m.
func (m Motion) Clone() Motion {
	m.Velocity = clonePtr(m.Velocity)
	m.Altitude = clonePtr(m.Altitude)
	m.Heading = clonePtr(m.Heading)
	m.HeadingMagnetic = clonePtr(m.HeadingMagnetic)
	m.VerticalSpeed = clonePtr(m.VerticalSpeed)
	m.AngleOfAttack = clonePtr(m.AngleOfAttack)
	m.WindDirection = clonePtr(m.WindDirection)
	m.WindVelocity = clonePtr(m.WindVelocity)
	return m
}

// TmMotion reports flight indicators.
type TmMotion struct {
	*Simple[Motion]
}

// NewTmMotion creates an unset motion extension.
func NewTmMotion(rev *Revision) *TmMotion {
	return &TmMotion{NewSimple(MotionID, MotionInfo, rev, Motion.Equal)}
}

// Motion returns the current indicators.
func (e *TmMotion) Motion() (Motion, bool) { return e.Value() }
