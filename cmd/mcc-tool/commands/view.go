package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mcc-station/mcc-go/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

var viewArgs filterFlags

var viewCmd = &cobra.Command{
	Use:   "view [flags] <events.cbor>",
	Short: "View an event log in human-readable format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunView(args[0], viewArgs.options(), cmd.OutOrStdout())
	},
}

func init() {
	viewArgs.register(viewCmd)
	logCmd.AddCommand(viewCmd)
}

// eventLabel names the payload an event carries.
func eventLabel(event log.Event) string {
	switch {
	case event.State != nil:
		return "State"
	case event.Progress != nil:
		return "Progress"
	case event.Telemetry != nil:
		return "Telemetry"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [req:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format(timestampLayout)
	ref := "req:-"
	if event.RequestID != 0 {
		ref = fmt.Sprintf("req:%d", event.RequestID)
	}
	fmt.Fprintf(w, "%s [%s] %-3s %s %s\n", ts, ref, event.Direction, event.Layer, eventLabel(event))

	if event.DeviceID != "" {
		fmt.Fprintf(w, "  Device: %s\n", event.DeviceID)
	}

	switch {
	case event.State != nil:
		formatStateDetails(w, event.State)
	case event.Progress != nil:
		fmt.Fprintf(w, "  Progress: %d%%\n", event.Progress.Percent)
	case event.Telemetry != nil:
		formatTelemetryDetails(w, event.Telemetry)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// formatStateDetails writes state change details.
func formatStateDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatTelemetryDetails(w io.Writer, te *log.TelemetryEvent) {
	fmt.Fprintf(w, "  Extension: %s (%s)\n", te.Info, te.Extension)
	fmt.Fprintf(w, "  Revision: %d  Changed: %t\n", te.Revision, te.Changed)
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %s (%d)\n", *err.Code, uint8(*err.Code))
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// RunView prints the events of path that match opts.
func RunView(path string, opts FilterOptions, output io.Writer) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}
