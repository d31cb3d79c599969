package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mcc-station/mcc-go/pkg/wire"
)

// ErrTruncated is returned when the file ends inside an event, as happens
// when the station stopped before its event log was flushed.
var ErrTruncated = errors.New("event log ends inside an event")

// Filter selects events for a Reader. A zero field places no constraint.
type Filter struct {
	// RequestID keeps the events of one command.
	RequestID wire.RequestID

	// Direction keeps IN or OUT events.
	Direction *Direction

	// Layer keeps events from one component.
	Layer *Layer

	// Category keeps one kind of event.
	Category *Category

	// TimeStart and TimeEnd bound event times to [TimeStart, TimeEnd).
	TimeStart *time.Time
	TimeEnd   *time.Time

	// DeviceID keeps events that concern one device.
	DeviceID string

	// ChangedOnly drops telemetry updates that did not change a value.
	ChangedOnly bool
}

// Matches reports whether event passes every constraint of f.
func (f *Filter) Matches(event Event) bool {
	switch {
	case f.RequestID != 0 && event.RequestID != f.RequestID:
		return false
	case f.Direction != nil && event.Direction != *f.Direction:
		return false
	case f.Layer != nil && event.Layer != *f.Layer:
		return false
	case f.Category != nil && event.Category != *f.Category:
		return false
	case f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart):
		return false
	case f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	case f.DeviceID != "" && event.DeviceID != f.DeviceID:
		return false
	case f.ChangedOnly && event.Telemetry != nil && !event.Telemetry.Changed:
		return false
	}
	return true
}

// Reader decodes events one at a time, so logs of any size can be scanned.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
	decoded int
}

// NewReader opens path for reading every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path for reading the events selected by filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{file: f, decoder: NewDecoder(f), filter: filter}, nil
}

// Next returns the next selected event. It returns io.EOF after the last
// complete event and an error wrapping ErrTruncated when the file ends
// part way through one.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		err := r.decoder.Decode(&event)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return Event{}, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return Event{}, fmt.Errorf("%w after %d events", ErrTruncated, r.decoded)
		default:
			return Event{}, fmt.Errorf("event %d: %w", r.decoded+1, err)
		}
		r.decoded++
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Decoded returns the number of events decoded so far, selected or not.
func (r *Reader) Decoded() int { return r.decoded }

// ReadAll collects the remaining selected events. On error the events read
// before it are returned with it.
func (r *Reader) ReadAll() ([]Event, error) {
	var events []Event
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}

// Close releases the file.
func (r *Reader) Close() error {
	return r.file.Close()
}
