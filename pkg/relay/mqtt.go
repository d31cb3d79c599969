package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mcc-station/mcc-go/pkg/wire"
)

// MQTT errors.
var (
	ErrPublishFailed = errors.New("mqtt: publish failed")
	ErrInvalidQoS    = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")
	ErrInvalidTopic  = errors.New("mqtt: topic cannot be empty")
)

const (
	// maxQoS is the highest MQTT QoS level.
	maxQoS = 2

	// maxPayloadSize caps a single message (1MB).
	maxPayloadSize = 1 << 20

	defaultConnectTimeout = 10 * time.Second
	defaultKeepAlive      = 60 * time.Second
)

// MQTTClient is the subset of pahomqtt.Client the publisher needs.
type MQTTClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// MQTTConfig configures ConnectMQTT.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// ConnectMQTT connects to a broker with auto-reconnect enabled.
func ConnectMQTT(cfg MQTTConfig) (pahomqtt.Client, error) {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("mqtt: connection failed: timeout after %v", defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connection failed: %w", err)
	}
	return client, nil
}

// MQTTPublisherOpts configures MQTTPublisher. Nil or zero values use defaults.
type MQTTPublisherOpts struct {
	// Prefix is the topic root (default "mcc").
	Prefix string

	// QoS for all messages (0..2).
	QoS byte

	// RetainTelemetry keeps the last value per extension on the broker.
	RetainTelemetry bool
}

// MQTTPublisher publishes CBOR-encoded notifications to MQTT topics.
type MQTTPublisher struct {
	client MQTTClient
	prefix string
	qos    byte
	retain bool
}

// NewMQTTPublisher creates a publisher. It fails on an invalid QoS.
func NewMQTTPublisher(client MQTTClient, opts *MQTTPublisherOpts) (*MQTTPublisher, error) {
	p := &MQTTPublisher{client: client, prefix: DefaultPrefix}
	if opts != nil {
		if opts.QoS > maxQoS {
			return nil, ErrInvalidQoS
		}
		if opts.Prefix != "" {
			p.prefix = opts.Prefix
		}
		p.qos = opts.QoS
		p.retain = opts.RetainTelemetry
	}
	return p, nil
}

// PublishState publishes a request state on RequestTopic. States are
// never retained.
func (p *MQTTPublisher) PublishState(ctx context.Context, state *wire.RequestState) error {
	data, err := wire.EncodeRequestState(state)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return p.publish(ctx, RequestTopic(p.prefix, state.RequestID), data, false)
}

// PublishTelemetry publishes a telemetry change on TelemetryTopic.
func (p *MQTTPublisher) PublishTelemetry(ctx context.Context, change *wire.TelemetryChange) error {
	data, err := wire.EncodeTelemetryChange(change)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return p.publish(ctx, TelemetryTopic(p.prefix, change.Device, change.Info), data, p.retain)
}

func (p *MQTTPublisher) publish(ctx context.Context, topic string, payload []byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	token := p.client.Publish(topic, p.qos, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishFailed, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

var (
	_ Publisher  = (*MQTTPublisher)(nil)
	_ MQTTClient = pahomqtt.Client(nil)
)
