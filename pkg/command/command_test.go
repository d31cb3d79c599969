package command

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcc-station/mcc-go/pkg/ident"
	"github.com/mcc-station/mcc-go/pkg/log"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

type recordingSink struct {
	mu     sync.Mutex
	states []*wire.RequestState
}

func (s *recordingSink) RequestState(st *wire.RequestState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, st)
}

func (s *recordingSink) phases() []wire.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wire.Phase, len(s.states))
	for i, st := range s.states {
		out[i] = st.Phase
	}
	return out
}

func testRequest() *DeviceRequest {
	return NewIdentifiedRequest(7, wire.DeviceTarget(ident.NewDevice()), "nav", "goto", nil)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestProgressThenDoneOrdering(t *testing.T) {
	cmd, promise := New(testRequest())

	go func() {
		cmd.SendProgress(10)
		cmd.SendProgress(60)
		_ = cmd.SendDone("payload")
	}()

	var seen []uint8
	resp, err := promise.Wait(testContext(t), func(p uint8) { seen = append(seen, p) })
	require.NoError(t, err)
	assert.Equal(t, "payload", resp)
	assert.Equal(t, []uint8{10, 60}, seen)
	assert.Equal(t, StateDone, cmd.State())
}

func TestEventsAreDrainedAfterTerminal(t *testing.T) {
	cmd, promise := New(testRequest())
	cmd.SendProgress(30)
	require.NoError(t, cmd.SendCanceled())

	ctx := testContext(t)
	e, err := promise.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, wire.PhaseProgress, e.Phase)
	assert.Equal(t, uint8(30), e.Progress)

	e, err = promise.Next(ctx)
	require.NoError(t, err)
	assert.True(t, e.IsTerminal())
	assert.Equal(t, wire.PhaseCanceled, e.Phase)
	assert.True(t, wire.IsCancel(e.Err))

	_, err = promise.Next(ctx)
	assert.ErrorIs(t, err, ErrDrained)
}

func TestSecondTerminalCallIsIgnored(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	cmd, promise := New(testRequest(), WithLogger(logger))

	require.NoError(t, cmd.SendDone(1))
	err := cmd.SendFailed(wire.KindCmdFailed, "late")
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.ErrorIs(t, cmd.SendCanceled(), ErrAlreadyResolved)
	assert.Equal(t, StateDone, cmd.State())
	assert.Contains(t, logs.String(), "terminal call on resolved command")

	ctx := testContext(t)
	e, err := promise.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, wire.PhaseDone, e.Phase)
	_, err = promise.Next(ctx)
	assert.ErrorIs(t, err, ErrDrained)
}

func TestConcurrentTerminalCallsResolveOnce(t *testing.T) {
	cmd, promise := New(testRequest(), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			switch i % 3 {
			case 0:
				err = cmd.SendDone(i)
			case 1:
				err = cmd.SendCanceled()
			default:
				err = cmd.SendFailed(wire.KindCmdFailed)
			}
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	terminals := 0
	ctx := testContext(t)
	for {
		e, err := promise.Next(ctx)
		if errors.Is(err, ErrDrained) {
			break
		}
		require.NoError(t, err)
		if e.IsTerminal() {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
}

func TestProgressAfterTerminalIsNoop(t *testing.T) {
	sink := &recordingSink{}
	cmd, promise := New(testRequest(), WithSink(sink))
	require.NoError(t, cmd.SendFailed(wire.KindTimeout))
	cmd.SendProgress(50)
	cmd.SendProgressPart(1, 2, 0, 100)

	_, err := promise.Wait(testContext(t), func(uint8) { t.Error("unexpected progress") })
	assert.Equal(t, wire.KindTimeout, wire.KindOf(err))
	assert.Equal(t, []wire.Phase{wire.PhaseFailed}, sink.phases())
}

func TestConcurrentProgressPrecedesTerminal(t *testing.T) {
	cmd, promise := New(testRequest())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := uint8(0); p < 50; p++ {
				cmd.SendProgress(p)
			}
		}()
	}
	go func() {
		time.Sleep(time.Millisecond)
		_ = cmd.SendDone(nil)
	}()

	ctx := testContext(t)
	terminalSeen := false
	for {
		e, err := promise.Next(ctx)
		if errors.Is(err, ErrDrained) {
			break
		}
		require.NoError(t, err)
		require.False(t, terminalSeen, "event after terminal")
		terminalSeen = e.IsTerminal()
	}
	wg.Wait()
	assert.True(t, terminalSeen)
}

func TestSendDoneNilUsesEmptyResponse(t *testing.T) {
	req := testRequest()
	cmd, promise := New(req)
	require.NoError(t, cmd.SendDone(nil))

	resp, err := promise.Wait(testContext(t), nil)
	require.NoError(t, err)
	empty, ok := resp.(EmptyResponse)
	require.True(t, ok)
	assert.Same(t, req, empty.Request)
}

func TestSendFailedWithCanceledResolvesCanceled(t *testing.T) {
	cmd, promise := New(testRequest())
	require.NoError(t, cmd.SendFailed(wire.KindCanceled, "by operator"))
	assert.Equal(t, StateCanceled, cmd.State())

	_, err := promise.Wait(testContext(t), nil)
	assert.True(t, wire.IsCancel(err))
	assert.Equal(t, "CANCELED: by operator", err.Error())
}

func TestSendErrorTranslatesForeignErrors(t *testing.T) {
	cmd, promise := New(testRequest())
	require.NoError(t, cmd.SendError(errors.New("socket reset")))

	_, err := promise.Wait(testContext(t), nil)
	var werr *wire.Error
	require.ErrorAs(t, err, &werr)
	d := werr.Descriptor()
	assert.Equal(t, wire.KindUnknownError, d.Kind)
	assert.Equal(t, "socket reset", d.Text)
}

func TestSendErrorKeepsTaxonomyErrors(t *testing.T) {
	cmd, promise := New(testRequest())
	wrapped := errors.Join(errors.New("context"), wire.NewError(wire.KindChannelClosed, "udp"))
	require.NoError(t, cmd.SendError(wrapped))

	_, err := promise.Wait(testContext(t), nil)
	assert.Equal(t, wire.KindChannelClosed, wire.KindOf(err))
}

func TestCloseFailsPendingWithDefaultError(t *testing.T) {
	cmd, promise := New(testRequest())
	cmd.Close()

	_, err := promise.Wait(testContext(t), nil)
	assert.Equal(t, wire.KindCmdUnknown, wire.KindOf(err))
	assert.Equal(t, StateFailed, cmd.State())

	custom, p2 := New(testRequest(), WithDefaultError(wire.KindDeviceInactive, "gone"))
	custom.Close()
	_, err = p2.Wait(testContext(t), nil)
	assert.Equal(t, "DEVICE_INACTIVE: gone", err.Error())
}

func TestCloseAfterResolveIsNoop(t *testing.T) {
	cmd, promise := New(testRequest())
	require.NoError(t, cmd.SendDone(5))
	cmd.Close()

	resp, err := promise.Wait(testContext(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, resp)
}

func TestUnroutableCommand(t *testing.T) {
	cmd := NewUnroutable(testRequest())
	assert.False(t, cmd.IsValid())
	assert.Equal(t, StateFailed, cmd.State())
	assert.ErrorIs(t, cmd.SendDone(nil), ErrUnroutable)
	assert.ErrorIs(t, cmd.SendFailed(wire.KindCmdFailed), ErrUnroutable)
	cmd.SendProgress(10)
	cmd.Close()
}

func TestRequestID(t *testing.T) {
	cmd, _ := New(testRequest())
	id, ok := cmd.RequestID()
	assert.True(t, ok)
	assert.Equal(t, wire.RequestID(7), id)
	assert.True(t, cmd.IsValid())

	anon, _ := New(NewRequest(wire.DeviceTarget(ident.NewDevice()), "nav", "stop", nil))
	_, ok = anon.RequestID()
	assert.False(t, ok)
}

func TestSinkReceivesStates(t *testing.T) {
	sink := &recordingSink{}
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	req := testRequest()
	cmd, _ := New(req, WithSink(sink), WithClock(func() time.Time { return now }))

	cmd.SendProgressPart(1, 4, 0, 100)
	require.NoError(t, cmd.SendFailed(wire.KindDeviceUnknown, "x"))

	require.Len(t, sink.states, 2)
	p := sink.states[0]
	assert.Equal(t, wire.PhaseProgress, p.Phase)
	assert.Equal(t, uint8(25), p.Progress)
	assert.Equal(t, wire.RequestID(7), p.RequestID)
	assert.Equal(t, "nav", p.Trait)
	assert.Equal(t, "goto", p.Command)
	assert.Equal(t, now, p.Timestamp)
	require.NoError(t, p.Validate())

	f := sink.states[1]
	assert.Equal(t, wire.PhaseFailed, f.Phase)
	require.NotNil(t, f.Error)
	assert.Equal(t, wire.KindDeviceUnknown, f.Error.Kind())
	require.NoError(t, f.Validate())
}

func TestEventLogRecordsLifecycle(t *testing.T) {
	var events []log.Event
	cmd, _ := New(testRequest(), WithEventLog(log.LoggerFunc(func(e log.Event) { events = append(events, e) })))
	cmd.SendProgress(40)
	require.NoError(t, cmd.SendDone(nil))

	require.Len(t, events, 2)
	assert.Equal(t, log.CategoryProgress, events[0].Category)
	assert.Equal(t, uint8(40), events[0].Progress.Percent)
	assert.Equal(t, log.CategoryState, events[1].Category)
	assert.Equal(t, "DONE", events[1].State.NewState)
	assert.Equal(t, wire.RequestID(7), events[1].RequestID)
	assert.NotEmpty(t, events[1].DeviceID)
}

func TestProgressClampedTo100(t *testing.T) {
	cmd, promise := New(testRequest())
	cmd.SendProgress(250)
	require.NoError(t, cmd.SendDone(nil))

	var seen []uint8
	_, err := promise.Wait(testContext(t), func(p uint8) { seen = append(seen, p) })
	require.NoError(t, err)
	assert.Equal(t, []uint8{100}, seen)
}

func TestWaitHonorsContext(t *testing.T) {
	_, promise := New(testRequest())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := promise.Wait(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, promise.Resolved())
}

func TestCancelRoutesToOwner(t *testing.T) {
	cmd, promise := New(testRequest())
	cmd.OnCancel(func() { _ = cmd.SendCanceled() })

	require.NoError(t, promise.Cancel())
	assert.True(t, cmd.CancelRequested())
	_, err := promise.Wait(testContext(t), nil)
	assert.True(t, wire.IsCancel(err))

	// Terminal: further cancels are no-ops.
	assert.NoError(t, promise.Cancel())
}

func TestCancelIsAdvisory(t *testing.T) {
	cmd, promise := New(testRequest())
	cmd.OnCancel(func() { _ = cmd.SendDone("finished anyway") })

	require.NoError(t, promise.Cancel())
	resp, err := promise.Wait(testContext(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "finished anyway", resp)
}

func TestCancelWithoutHook(t *testing.T) {
	cmd, promise := New(testRequest())
	err := promise.Cancel()
	assert.Equal(t, wire.KindCantCancel, wire.KindOf(err))
	assert.Equal(t, StatePending, cmd.State())
	assert.False(t, cmd.CancelRequested())
}

func TestCancelHookRunsOnce(t *testing.T) {
	cmd, promise := New(testRequest())
	calls := 0
	cmd.OnCancel(func() { calls++ })
	require.NoError(t, promise.Cancel())
	require.NoError(t, promise.Cancel())
	assert.Equal(t, 1, calls)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "PENDING", StatePending.String())
	assert.Equal(t, "DONE", StateDone.String())
	assert.Equal(t, "CANCELED", StateCanceled.String())
	assert.Equal(t, "FAILED", StateFailed.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
	assert.False(t, StatePending.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
}
