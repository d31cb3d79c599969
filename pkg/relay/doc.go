// Package relay fans command state and telemetry out to message brokers.
//
// A Fanout implements command.StateSink and can watch telemetry views; it
// forwards every notification to its publishers:
//
//	nc, _ := relay.ConnectNATS(nats.DefaultURL, "mcc-core")
//	fan := relay.NewFanout(nil, relay.NewNATSPublisher(nc, nil))
//	cmd, promise := command.New(req, command.WithSink(fan))
//	fan.Attach(view, true)
//
// # Subjects and Topics
//
//	NATS  mcc.request.<id>.state      mcc.telemetry.<device>.<info>
//	MQTT  mcc/request/<id>/state      mcc/telemetry/<device>/<info>
//
// Payloads are CBOR (wire.EncodeRequestState, wire.EncodeTelemetryChange).
package relay
