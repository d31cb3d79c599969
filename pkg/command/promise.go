package command

import (
	"context"
	"errors"
	"sync"

	"github.com/mcc-station/mcc-go/pkg/wire"
)

// ErrDrained is returned by Promise.Next after the terminal event has been consumed.
var ErrDrained = errors.New("promise drained")

// Event is one notification delivered to the issuing caller.
type Event struct {
	// Phase is PhaseProgress for progress reports, otherwise the outcome.
	Phase wire.Phase

	// Progress is the percentage, 0..100.
	Progress uint8

	// Response is the result of a Done command.
	Response any

	// Err is set for Failed and Canceled outcomes. It is always a *wire.Error.
	Err error
}

// IsTerminal returns true if the event resolves the command.
func (e Event) IsTerminal() bool {
	return e.Phase.IsTerminal()
}

// Promise is the caller side of a command: an ordered mailbox of progress
// events followed by exactly one terminal event.
//
// Producers never block. Events are consumed by a single goroutine via Next
// or Wait.
type Promise struct {
	mu       sync.Mutex
	queue    []Event
	resolved bool
	drained  bool
	signal   chan struct{}

	cancel func() error
}

func newPromise() *Promise {
	return &Promise{signal: make(chan struct{}, 1)}
}

// deliver enqueues e. It returns false once a terminal event has been enqueued.
func (p *Promise) deliver(e Event) bool {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return false
	}
	p.queue = append(p.queue, e)
	if e.IsTerminal() {
		p.resolved = true
	}
	p.mu.Unlock()

	p.wake()
	return true
}

func (p *Promise) wake() {
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// Resolved returns true once the terminal event has been delivered to the
// mailbox, whether or not it has been consumed.
func (p *Promise) Resolved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolved
}

// Next returns the next event, blocking until one is available or ctx is
// done. After the terminal event it returns ErrDrained.
func (p *Promise) Next(ctx context.Context) (Event, error) {
	for {
		p.mu.Lock()
		if len(p.queue) > 0 {
			e := p.queue[0]
			p.queue[0] = Event{}
			p.queue = p.queue[1:]
			if e.IsTerminal() {
				p.drained = true
			}
			more := len(p.queue) > 0
			p.mu.Unlock()
			if more {
				p.wake()
			}
			return e, nil
		}
		if p.drained {
			p.mu.Unlock()
			return Event{}, ErrDrained
		}
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-p.signal:
		}
	}
}

// Wait consumes events until the command resolves. Progress events are
// passed to onProgress (which may be nil). It returns the response of a Done
// command, or the *wire.Error of a Failed or Canceled one.
func (p *Promise) Wait(ctx context.Context, onProgress func(percent uint8)) (any, error) {
	for {
		e, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		switch e.Phase {
		case wire.PhaseProgress:
			if onProgress != nil {
				onProgress(e.Progress)
			}
		case wire.PhaseDone:
			return e.Response, nil
		default:
			return nil, e.Err
		}
	}
}

// Cancel asks the command owner to cancel. Cancellation is advisory: the
// owner may still resolve as Done or Failed. It is a no-op once the command
// is resolved, and returns a CantCancel error if the owner has no cancel hook.
func (p *Promise) Cancel() error {
	if p.cancel == nil {
		return wire.KindError(wire.KindCantCancel)
	}
	return p.cancel()
}
