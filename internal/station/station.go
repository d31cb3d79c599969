// Package station assembles the messaging core from configuration: the
// protocol catalog, the event log, the broker fan-out and the command
// tracker.
package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcc-station/mcc-go/internal/config"
	"github.com/mcc-station/mcc-go/pkg/catalog"
	"github.com/mcc-station/mcc-go/pkg/command"
	"github.com/mcc-station/mcc-go/pkg/ident"
	"github.com/mcc-station/mcc-go/pkg/log"
	"github.com/mcc-station/mcc-go/pkg/relay"
	"github.com/mcc-station/mcc-go/pkg/telemetry"
)

const logPrefix = "station"

// closeTimeout bounds flushing publishers on Close.
const closeTimeout = 5 * time.Second

// mqttQuiesce is the time in milliseconds paho waits for in-flight work on
// disconnect.
const mqttQuiesce = 250

// Options adds wiring that does not come from configuration.
type Options struct {
	// Publishers are added to the configured brokers.
	Publishers []relay.Publisher
}

// Station is the running messaging core.
type Station struct {
	Catalog *catalog.Catalog
	Events  log.Logger
	Relay   *relay.Fanout
	Tracker *command.Tracker

	publishers int
	closers    []func(ctx context.Context) error
}

// Open builds a station from cfg, connecting every enabled broker. On error
// everything opened so far is closed again.
func Open(cfg *config.Config, opts *Options) (*Station, error) {
	if opts == nil {
		opts = &Options{}
	}

	s := &Station{Events: log.NoopLogger{}}

	cat, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("%s - building catalog: %w", logPrefix, err)
	}
	s.Catalog = cat

	if cfg.Events.Path != "" {
		fl, err := log.NewFileLogger(cfg.Events.Path)
		if err != nil {
			return nil, fmt.Errorf("%s - opening event log: %w", logPrefix, err)
		}
		s.Events = fl
		s.closers = append(s.closers, func(context.Context) error { return fl.Close() })
		slog.Info(fmt.Sprintf("%s - Recording events to %s", logPrefix, fl.Path()))
	}

	publishers, err := s.connect(cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	publishers = append(publishers, opts.Publishers...)
	s.Relay = relay.NewFanout(&relay.FanoutOpts{Events: s.Events}, publishers...)
	s.publishers = len(publishers)

	s.Tracker = command.NewTracker(
		command.WithTimeout(cfg.Tracker.Timeout),
		command.WithTrackerEventLog(s.Events),
		command.WithCommandOptions(
			command.WithSink(s.Relay),
			command.WithEventLog(s.Events),
		),
	)
	return s, nil
}

func (s *Station) connect(cfg *config.Config) ([]relay.Publisher, error) {
	var publishers []relay.Publisher

	if cfg.NATS.Enabled {
		nc, err := relay.ConnectNATS(cfg.NATS.URL, cfg.NATS.Name)
		if err != nil {
			return nil, err
		}
		pub := relay.NewNATSPublisher(nc, &relay.NATSPublisherOpts{Prefix: cfg.NATS.Prefix})
		publishers = append(publishers, pub)
		s.closers = append(s.closers, func(ctx context.Context) error {
			err := pub.Flush(ctx)
			nc.Close()
			return err
		})
	}

	if cfg.MQTT.Enabled {
		client, err := relay.ConnectMQTT(relay.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error {
			client.Disconnect(mqttQuiesce)
			return nil
		})
		pub, err := relay.NewMQTTPublisher(client, &relay.MQTTPublisherOpts{
			Prefix:          cfg.MQTT.Prefix,
			QoS:             cfg.MQTT.QoS,
			RetainTelemetry: cfg.MQTT.RetainTelemetry,
		})
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, pub)
	}

	return publishers, nil
}

// Publishers returns the number of brokers and extra publishers in the
// fan-out.
func (s *Station) Publishers() int { return s.publishers }

// NewView creates a telemetry view for device that records to the event
// log and publishes value changes through the fan-out.
func (s *Station) NewView(device ident.Device) *telemetry.View {
	view := telemetry.NewView(device, telemetry.WithEventLog(s.Events))
	s.Relay.Attach(view, true)
	return view
}

// Close fails pending commands, flushes and disconnects brokers, and closes
// the event log, in that order.
func (s *Station) Close() error {
	var errs []error
	if s.Tracker != nil {
		errs = append(errs, s.Tracker.Close())
	}

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i](ctx))
	}
	s.closers = nil
	return errors.Join(errs...)
}
