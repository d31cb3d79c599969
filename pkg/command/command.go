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

// Command errors.
var (
	// ErrAlreadyResolved is returned by a terminal call on a resolved command.
	ErrAlreadyResolved = errors.New("command already resolved")

	// ErrUnroutable is returned by terminal calls on a command without a
	// completion handle.
	ErrUnroutable = errors.New("command has no completion handle")
)

// State is the lifecycle state of a command.
type State int32

const (
	StatePending State = iota
	StateDone
	StateCanceled
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateDone:
		return "DONE"
	case StateCanceled:
		return "CANCELED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal returns true for Done, Canceled and Failed.
func (s State) IsTerminal() bool {
	return s != StatePending
}

// StateSink receives request state notifications for observers other than
// the issuing caller (the core, brokers, group aggregators).
type StateSink interface {
	RequestState(state *wire.RequestState)
}

// StateSinkFunc adapts a function to StateSink.
type StateSinkFunc func(*wire.RequestState)

// RequestState calls f(state).
func (f StateSinkFunc) RequestState(state *wire.RequestState) { f(state) }

// Option configures a Command.
type Option func(*Command)

// WithSink sets the sink notified of progress and the terminal state.
func WithSink(sink StateSink) Option {
	return func(c *Command) { c.sink = sink }
}

// WithDefaultError sets the error a command resolves with when it is
// closed while still pending. The default is CmdUnknown.
func WithDefaultError(kind wire.Kind, text ...string) Option {
	return func(c *Command) { c.defaultErr = wire.NewDescriptor(kind, text...) }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Command) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEventLog sets the event capture logger.
func WithEventLog(events log.Logger) Option {
	return func(c *Command) { c.events = log.OrNoop(events) }
}

// WithClock sets the time source for notifications.
func WithClock(now func() time.Time) Option {
	return func(c *Command) {
		if now != nil {
			c.now = now
		}
	}
}

func withResolvedHook(fn func(*Command)) Option {
	return func(c *Command) { c.onResolved = fn }
}

// Command is the producer side of one outstanding request. Exactly one of
// SendDone, SendCanceled, SendFailed or SendError takes effect; progress may
// be reported any number of times before that and is ignored afterwards.
//
// A Command may be handed between goroutines and its methods may be called
// from any of them.
type Command struct {
	req     Request
	promise *Promise

	sink       StateSink
	defaultErr wire.Descriptor
	logger     *slog.Logger
	events     log.Logger
	now        func() time.Time
	onResolved func(*Command)

	state atomic.Int32

	// deliverMu orders progress before the terminal event.
	deliverMu sync.Mutex

	cancelMu        sync.Mutex
	onCancel        func()
	cancelRequested bool
}

// New creates a pending command for req and the promise its caller waits on.
func New(req Request, opts ...Option) (*Command, *Promise) {
	c := newCommand(req, opts)
	c.promise = newPromise()
	c.promise.cancel = c.requestCancel
	return c, c.promise
}

// NewUnroutable creates a command that cannot be resolved, for requests
// whose upstream handler is missing. It starts Failed and IsValid is false.
func NewUnroutable(req Request, opts ...Option) *Command {
	c := newCommand(req, opts)
	c.state.Store(int32(StateFailed))
	return c
}

func newCommand(req Request, opts []Option) *Command {
	c := &Command{
		req:        req,
		defaultErr: wire.NewDescriptor(wire.KindCmdUnknown),
		logger:     slog.Default(),
		events:     log.NoopLogger{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request returns the request this command serves.
func (c *Command) Request() Request { return c.req }

// RequestID returns the request identifier, if the request carries one.
func (c *Command) RequestID() (wire.RequestID, bool) { return c.req.RequestID() }

// IsValid returns true if the command has a completion handle.
func (c *Command) IsValid() bool { return c.promise != nil }

// State returns the current lifecycle state.
func (c *Command) State() State { return State(c.state.Load()) }

// DefaultError returns the error used by Close on a pending command.
func (c *Command) DefaultError() wire.Descriptor { return c.defaultErr }

// SendDone resolves the command successfully. A nil response is replaced by
// EmptyResponse for the request.
func (c *Command) SendDone(response any) error {
	if response == nil {
		response = EmptyResponse{Request: c.req}
	}
	return c.resolve(StateDone, Event{Phase: wire.PhaseDone, Progress: 100, Response: response}, false)
}

// SendCanceled resolves the command with KindCanceled.
func (c *Command) SendCanceled() error {
	return c.resolve(StateCanceled, Event{Phase: wire.PhaseCanceled, Err: wire.KindError(wire.KindCanceled)}, false)
}

// SendFailed resolves the command with kind and optional text. KindCanceled
// resolves as Canceled.
func (c *Command) SendFailed(kind wire.Kind, text ...string) error {
	return c.fail(wire.NewDescriptor(kind, text...), false)
}

// SendError resolves the command with err translated to the error taxonomy.
// Errors from other domains become UnknownError with their text preserved.
func (c *Command) SendError(err error) error {
	return c.fail(wire.ToDescriptor(err), false)
}

func (c *Command) fail(d wire.Descriptor, quiet bool) error {
	if d.IsCanceled() {
		return c.resolve(StateCanceled, Event{Phase: wire.PhaseCanceled, Err: d.Err()}, quiet)
	}
	return c.resolve(StateFailed, Event{Phase: wire.PhaseFailed, Err: d.Err()}, quiet)
}

// SendProgress reports percent (capped at 100). It is a no-op once the
// command is resolved.
func (c *Command) SendProgress(percent uint8) {
	if percent > 100 {
		percent = 100
	}
	if c.promise == nil {
		return
	}

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	if c.State() != StatePending {
		return
	}
	ev := Event{Phase: wire.PhaseProgress, Progress: percent}
	c.promise.deliver(ev)
	c.notify(ev)
	c.record(log.Event{
		Category: log.CategoryProgress,
		Progress: &log.ProgressEvent{Percent: percent},
	})
}

// SendProgressPart reports part/whole mapped onto [shift, limit]. See Progress.
func (c *Command) SendProgressPart(part, whole uint64, shift, limit uint8) {
	c.SendProgress(Progress(part, whole, shift, limit))
}

// Close resolves a still-pending command with its default error. It is a
// no-op on resolved commands.
func (c *Command) Close() {
	if c.promise == nil || c.State() != StatePending {
		return
	}
	_ = c.fail(c.defaultErr, true)
}

// OnCancel installs the hook run when the caller requests cancellation.
// The hook decides how, or whether, to resolve the command.
func (c *Command) OnCancel(hook func()) {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	c.onCancel = hook
}

// CancelRequested returns true once the caller has asked for cancellation.
func (c *Command) CancelRequested() bool {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	return c.cancelRequested
}

func (c *Command) requestCancel() error {
	if c.State() != StatePending {
		return nil
	}

	c.cancelMu.Lock()
	if c.cancelRequested {
		c.cancelMu.Unlock()
		return nil
	}
	hook := c.onCancel
	if hook == nil {
		c.cancelMu.Unlock()
		return wire.NewError(wire.KindCantCancel, c.describe())
	}
	c.cancelRequested = true
	c.cancelMu.Unlock()

	hook()
	return nil
}

// resolve performs the single Pending -> terminal transition. With quiet
// set, losing the race is not reported.
func (c *Command) resolve(to State, ev Event, quiet bool) error {
	if c.promise == nil {
		return ErrUnroutable
	}
	if !c.state.CompareAndSwap(int32(StatePending), int32(to)) {
		prev := c.State()
		if !quiet {
			c.logger.Warn("command: terminal call on resolved command",
				"request", c.describe(),
				"state", prev.String(),
				"attempted", to.String())
		}
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, prev)
	}

	c.deliverMu.Lock()
	c.promise.deliver(ev)
	c.notify(ev)
	c.deliverMu.Unlock()

	var reason string
	if ev.Err != nil {
		reason = ev.Err.Error()
	}
	c.record(log.Event{
		Category: log.CategoryState,
		State: &log.StateChangeEvent{
			Entity:   log.StateEntityCommand,
			OldState: StatePending.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})

	if c.onResolved != nil {
		c.onResolved(c)
	}
	return nil
}

func (c *Command) notify(ev Event) {
	if c.sink == nil {
		return
	}
	id, _ := c.req.RequestID()
	st := &wire.RequestState{
		RequestID: id,
		Target:    c.req.Target(),
		Trait:     c.req.Trait(),
		Command:   c.req.Name(),
		Phase:     ev.Phase,
		Progress:  ev.Progress,
		Timestamp: c.now(),
	}
	if ev.Err != nil {
		st.Error = wire.ToDescriptor(ev.Err).Err()
	}
	c.sink.RequestState(st)
}

func (c *Command) record(e log.Event) {
	e.Timestamp = c.now()
	e.RequestID, _ = c.req.RequestID()
	e.Direction = log.DirectionOut
	e.Layer = log.LayerCommand
	if d := c.req.Target().Device; d != nil {
		e.DeviceID = d.String()
	}
	c.events.Log(e)
}

func (c *Command) describe() string {
	if s, ok := c.req.(fmt.Stringer); ok {
		return s.String()
	}
	return c.req.Trait() + "." + c.req.Name()
}
