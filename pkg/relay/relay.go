package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcc-station/mcc-go/pkg/command"
	"github.com/mcc-station/mcc-go/pkg/log"
	"github.com/mcc-station/mcc-go/pkg/telemetry"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

const fanoutLogPrefix = "relay:fanout"

// DefaultPublishTimeout bounds a single publish issued from a sink callback.
const DefaultPublishTimeout = 5 * time.Second

// Publisher sends core notifications to one broker.
type Publisher interface {
	PublishState(ctx context.Context, state *wire.RequestState) error
	PublishTelemetry(ctx context.Context, change *wire.TelemetryChange) error
}

// Fanout forwards request states and telemetry changes to every publisher.
// It implements command.StateSink, so commands can notify brokers directly.
// Publish failures are logged and never affect the command or extension.
type Fanout struct {
	publishers []Publisher
	timeout    time.Duration
	events     log.Logger
}

// FanoutOpts configures a Fanout. Nil or zero values use defaults.
type FanoutOpts struct {
	Timeout time.Duration
	Events  log.Logger
}

// NewFanout creates a Fanout over publishers. Nil publishers are skipped.
func NewFanout(opts *FanoutOpts, publishers ...Publisher) *Fanout {
	f := &Fanout{timeout: DefaultPublishTimeout, events: log.NoopLogger{}}
	if opts != nil {
		if opts.Timeout > 0 {
			f.timeout = opts.Timeout
		}
		f.events = log.OrNoop(opts.Events)
	}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

// RequestState implements command.StateSink.
func (f *Fanout) RequestState(state *wire.RequestState) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	for _, p := range f.publishers {
		if err := p.PublishState(ctx, state); err != nil {
			f.failed(err, fmt.Sprintf("request %d state %s", state.RequestID, state.Phase), "")
		}
	}
}

// Telemetry publishes one telemetry change.
func (f *Fanout) Telemetry(change *wire.TelemetryChange) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	for _, p := range f.publishers {
		if err := p.PublishTelemetry(ctx, change); err != nil {
			f.failed(err, "telemetry "+change.Info, change.Device.String())
		}
	}
}

// Attach publishes the view's telemetry, every update or changes only.
func (f *Fanout) Attach(view *telemetry.View, onChangeOnly bool) telemetry.Subscription {
	return view.Watch(f.Telemetry, onChangeOnly)
}

func (f *Fanout) failed(err error, what, device string) {
	slog.Error(fmt.Sprintf("%s - failed to publish %s: %v", fanoutLogPrefix, what, err))
	f.events.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionOut,
		Layer:     log.LayerRelay,
		Category:  log.CategoryError,
		DeviceID:  device,
		Error:     log.NewErrorData(log.LayerRelay, err, what),
	})
}

var _ command.StateSink = (*Fanout)(nil)
