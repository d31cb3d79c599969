package command

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcc-station/mcc-go/pkg/log"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

// Tracker errors.
var (
	ErrTrackerClosed  = errors.New("tracker is closed")
	ErrUnknownRequest = errors.New("unknown request")
)

// Tracker allocates request identifiers and keeps the set of in-flight
// commands, so that cancellations and shutdown can be routed by id.
type Tracker struct {
	mu      sync.Mutex
	pending map[wire.RequestID]*tracked
	closed  bool

	nextID  atomic.Uint64
	timeout time.Duration
	cmdOpts []Option
	logger  *slog.Logger
	events  log.Logger
}

type tracked struct {
	cmd   *Command
	timer *time.Timer
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTimeout fails commands with KindTimeout when they are not resolved
// within d. Zero disables the timeout.
func WithTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.timeout = d }
}

// WithCommandOptions sets options applied to every issued command.
func WithCommandOptions(opts ...Option) TrackerOption {
	return func(t *Tracker) { t.cmdOpts = append(t.cmdOpts, opts...) }
}

// WithTrackerLogger sets the diagnostics logger.
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTrackerEventLog sets the event capture logger.
func WithTrackerEventLog(events log.Logger) TrackerOption {
	return func(t *Tracker) { t.events = log.OrNoop(events) }
}

// NewTracker creates a tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		pending: make(map[wire.RequestID]*tracked),
		logger:  slog.Default(),
		events:  log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Issue creates an identified command for target and registers it until
// it resolves.
func (t *Tracker) Issue(target wire.Target, trait, name string, payload any) (*Command, *Promise, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, nil, ErrTrackerClosed
	}

	id := wire.RequestID(t.nextID.Add(1))
	req := NewIdentifiedRequest(id, target, trait, name, payload)

	opts := make([]Option, 0, len(t.cmdOpts)+1)
	opts = append(opts, t.cmdOpts...)
	opts = append(opts, withResolvedHook(t.forget))
	cmd, promise := New(req, opts...)

	entry := &tracked{cmd: cmd}
	if t.timeout > 0 {
		timeout := t.timeout
		entry.timer = time.AfterFunc(timeout, func() {
			if err := cmd.fail(wire.NewDescriptor(wire.KindTimeout, fmt.Sprintf("no outcome after %s", timeout)), true); err == nil {
				t.logger.Debug("tracker: request timed out", "request", req.String())
			}
		})
	}
	t.pending[id] = entry
	return cmd, promise, nil
}

// Lookup returns the pending command for id.
func (t *Tracker) Lookup(id wire.RequestID) (*Command, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.pending[id]
	if !ok {
		return nil, false
	}
	return e.cmd, true
}

// Pending returns the number of unresolved commands.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Cancel routes a cancellation request to the owner of command id.
func (t *Tracker) Cancel(id wire.RequestID) error {
	cmd, ok := t.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRequest, id)
	}
	return cmd.requestCancel()
}

// Close fails every pending command with KindCoreDisconnected and rejects
// further Issue calls.
func (t *Tracker) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	entries := make([]*tracked, 0, len(t.pending))
	for _, e := range t.pending {
		entries = append(entries, e)
	}
	t.mu.Unlock()

	for _, e := range entries {
		_ = e.cmd.fail(wire.NewDescriptor(wire.KindCoreDisconnected, "tracker closed"), true)
	}

	t.events.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerCommand,
		Category:  log.CategoryState,
		State: &log.StateChangeEvent{
			Entity:   log.StateEntityTracker,
			OldState: "OPEN",
			NewState: "CLOSED",
			Reason:   fmt.Sprintf("%d pending failed", len(entries)),
		},
	})
	return nil
}

func (t *Tracker) forget(c *Command) {
	id, ok := c.RequestID()
	if !ok {
		return
	}
	t.mu.Lock()
	e, exists := t.pending[id]
	if exists && e.cmd == c {
		delete(t.pending, id)
	}
	t.mu.Unlock()

	if exists && e.timer != nil {
		e.timer.Stop()
	}
}
