package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcc-station/mcc-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Requests          map[uint64]*RequestStats
	Devices           map[string]*DeviceStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// RequestStats holds the lifecycle of a single request.
type RequestStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Progress  int
	Final     string
}

// DeviceStats holds telemetry statistics for a single device.
type DeviceStats struct {
	Updates int
	Changes int
}

var statsCmd = &cobra.Command{
	Use:   "stats <events.cbor>",
	Short: "Show statistics about an event log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunStats(args[0], cmd.OutOrStdout())
	},
}

func init() {
	logCmd.AddCommand(statsCmd)
}

// Collect reads path and aggregates its events.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Requests:          make(map[uint64]*RequestStats),
		Devices:           make(map[string]*DeviceStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.RequestID != 0 {
			id := uint64(event.RequestID)
			req, ok := stats.Requests[id]
			if !ok {
				req = &RequestStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
				stats.Requests[id] = req
			}
			if event.Timestamp.After(req.LastSeen) {
				req.LastSeen = event.Timestamp
			}
			if event.Progress != nil {
				req.Progress++
			}
			if event.State != nil && event.State.Entity == log.StateEntityCommand {
				req.Final = event.State.NewState
			}
		}

		if event.Telemetry != nil {
			dev, ok := stats.Devices[event.DeviceID]
			if !ok {
				dev = &DeviceStats{}
				stats.Devices[event.DeviceID] = dev
			}
			dev.Updates++
			if event.Telemetry.Changed {
				dev.Changes++
			}
		}

		if event.Error != nil {
			stats.Errors++
		}
	}
	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Event Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerCommand, log.LayerTelemetry, log.LayerRelay} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryState, log.CategoryProgress, log.CategoryUpdate, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Requests: %d\n", len(stats.Requests))
	if len(stats.Requests) > 0 {
		ids := make([]uint64, 0, len(stats.Requests))
		for id := range stats.Requests {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			r := stats.Requests[id]
			final := r.Final
			if final == "" {
				final = "PENDING"
			}
			duration := r.LastSeen.Sub(r.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%d] %s after %s, %d progress reports\n", id, final, duration, r.Progress)
		}
	}

	if len(stats.Devices) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Telemetry Devices: %d\n", len(stats.Devices))
		devices := make([]string, 0, len(stats.Devices))
		for d := range stats.Devices {
			devices = append(devices, d)
		}
		sort.Strings(devices)
		for _, d := range devices {
			s := stats.Devices[d]
			fmt.Fprintf(w, "  [%s] %d updates, %d changes\n", d, s.Updates, s.Changes)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
