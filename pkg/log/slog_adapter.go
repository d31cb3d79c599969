package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at Debug level, except error
// events which are written at Warn.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter. A nil logger uses slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.RequestID != 0 {
		attrs = append(attrs, slog.Uint64("request_id", uint64(event.RequestID)))
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}

	level := slog.LevelDebug
	switch {
	case event.State != nil:
		attrs = append(attrs,
			slog.String("entity", event.State.Entity.String()),
			slog.String("old_state", event.State.OldState),
			slog.String("new_state", event.State.NewState),
		)
		if event.State.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.State.Reason))
		}
	case event.Progress != nil:
		attrs = append(attrs, slog.Int("progress", int(event.Progress.Percent)))
	case event.Telemetry != nil:
		attrs = append(attrs,
			slog.String("extension", event.Telemetry.Extension),
			slog.String("info", event.Telemetry.Info),
			slog.Bool("changed", event.Telemetry.Changed),
			slog.Uint64("revision", event.Telemetry.Revision),
		)
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.String("error_kind", event.Error.Code.String()))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "mcc", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
