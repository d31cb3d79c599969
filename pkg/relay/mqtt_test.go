package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcc-station/mcc-go/pkg/ident"
	"github.com/mcc-station/mcc-go/pkg/log"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	mu    sync.Mutex
	msgs  []published
	token func() pahomqtt.Token
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{topic, qos, retained, payload.([]byte)})
	if c.token != nil {
		return c.token()
	}
	return completedToken(nil)
}

func TestMQTTPublisherState(t *testing.T) {
	client := &fakeClient{}
	pub, err := NewMQTTPublisher(client, &MQTTPublisherOpts{QoS: 1, RetainTelemetry: true})
	require.NoError(t, err)

	st := &wire.RequestState{
		RequestID: 9,
		Target:    wire.DeviceTarget(ident.NewDevice()),
		Phase:     wire.PhaseFailed,
		Error:     wire.NewError(wire.KindTimeout, "no answer"),
		Timestamp: time.Now(),
	}
	require.NoError(t, pub.PublishState(context.Background(), st))

	require.Len(t, client.msgs, 1)
	m := client.msgs[0]
	assert.Equal(t, "mcc/request/9/state", m.topic)
	assert.Equal(t, byte(1), m.qos)
	assert.False(t, m.retained)

	got, err := wire.DecodeRequestState(m.payload)
	require.NoError(t, err)
	assert.Equal(t, wire.KindTimeout, got.Error.Kind())
}

func TestMQTTPublisherTelemetryRetained(t *testing.T) {
	client := &fakeClient{}
	pub, err := NewMQTTPublisher(client, &MQTTPublisherOpts{Prefix: "lab", RetainTelemetry: true})
	require.NoError(t, err)

	dev := ident.NewDevice()
	require.NoError(t, pub.PublishTelemetry(context.Background(), &wire.TelemetryChange{
		Device:   dev,
		Info:     "gps",
		Changed:  true,
		Revision: 4,
	}))

	require.Len(t, client.msgs, 1)
	assert.Equal(t, "lab/telemetry/"+dev.String()+"/gps", client.msgs[0].topic)
	assert.True(t, client.msgs[0].retained)
}

func TestMQTTPublisherInvalidQoS(t *testing.T) {
	_, err := NewMQTTPublisher(&fakeClient{}, &MQTTPublisherOpts{QoS: 3})
	assert.ErrorIs(t, err, ErrInvalidQoS)
}

func TestMQTTPublisherTokenError(t *testing.T) {
	broker := errors.New("not connected")
	client := &fakeClient{token: func() pahomqtt.Token { return completedToken(broker) }}
	pub, err := NewMQTTPublisher(client, nil)
	require.NoError(t, err)

	err = pub.PublishState(context.Background(), &wire.RequestState{RequestID: 1, Phase: wire.PhaseDone})
	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.ErrorIs(t, err, broker)
}

func TestMQTTPublisherContextDeadline(t *testing.T) {
	client := &fakeClient{token: func() pahomqtt.Token { return &fakeToken{done: make(chan struct{})} }}
	pub, err := NewMQTTPublisher(client, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = pub.PublishState(ctx, &wire.RequestState{RequestID: 1, Phase: wire.PhaseDone})
	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFanoutLogsPublishFailures(t *testing.T) {
	client := &fakeClient{token: func() pahomqtt.Token { return completedToken(errors.New("offline")) }}
	pub, err := NewMQTTPublisher(client, nil)
	require.NoError(t, err)

	var events []log.Event
	fan := NewFanout(&FanoutOpts{Events: log.LoggerFunc(func(e log.Event) { events = append(events, e) })}, pub, nil)

	fan.RequestState(&wire.RequestState{RequestID: 3, Phase: wire.PhaseDone})

	require.Len(t, events, 1)
	assert.Equal(t, log.LayerRelay, events[0].Layer)
	assert.Equal(t, log.CategoryError, events[0].Category)
	require.NotNil(t, events[0].Error)
	assert.Contains(t, events[0].Error.Message, "offline")
	assert.Equal(t, "request 3 state DONE", events[0].Error.Context)
}
