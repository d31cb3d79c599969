package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mcc-station/mcc-go/pkg/wire"
)

const natsLogPrefix = "relay:nats"

// ConnectNATS opens a NATS connection with reconnect logging.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	slog.Info(fmt.Sprintf("%s - Connecting to %s as %s", natsLogPrefix, url, name))

	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn(fmt.Sprintf("%s - disconnected: %v", natsLogPrefix, err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info(fmt.Sprintf("%s - reconnected to %s", natsLogPrefix, nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect: %w", natsLogPrefix, err)
	}
	return nc, nil
}

// NATSPublisherOpts configures NATSPublisher. Nil or zero values use defaults.
type NATSPublisherOpts struct {
	// Prefix is the subject root (default "mcc").
	Prefix string
}

// NATSPublisher publishes CBOR-encoded notifications to NATS subjects.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher creates a publisher on nc. Pass nil for opts to use defaults.
func NewNATSPublisher(nc *nats.Conn, opts *NATSPublisherOpts) *NATSPublisher {
	prefix := DefaultPrefix
	if opts != nil && opts.Prefix != "" {
		prefix = opts.Prefix
	}
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// PublishState publishes a request state on RequestSubject.
func (p *NATSPublisher) PublishState(_ context.Context, state *wire.RequestState) error {
	data, err := wire.EncodeRequestState(state)
	if err != nil {
		return fmt.Errorf("%s - failed to encode state: %w", natsLogPrefix, err)
	}
	subject := RequestSubject(p.prefix, state.RequestID)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("%s - failed to publish to %s: %w", natsLogPrefix, subject, err)
	}
	slog.Debug(fmt.Sprintf("%s - Published %s for request %d", natsLogPrefix, state.Phase, state.RequestID))
	return nil
}

// PublishTelemetry publishes a telemetry change on TelemetrySubject.
func (p *NATSPublisher) PublishTelemetry(_ context.Context, change *wire.TelemetryChange) error {
	data, err := wire.EncodeTelemetryChange(change)
	if err != nil {
		return fmt.Errorf("%s - failed to encode telemetry: %w", natsLogPrefix, err)
	}
	subject := TelemetrySubject(p.prefix, change.Device, change.Info)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("%s - failed to publish to %s: %w", natsLogPrefix, subject, err)
	}
	return nil
}

// Flush waits until the server has processed all published messages.
func (p *NATSPublisher) Flush(ctx context.Context) error {
	return p.nc.FlushWithContext(ctx)
}

var _ Publisher = (*NATSPublisher)(nil)
