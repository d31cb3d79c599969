package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcc-station/mcc-go/pkg/log"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Work with binary event logs",
	Long: `Event logs are CBOR streams written by the command tracker, commands,
telemetry views and broker relays when an events.path is configured.`,
}

// filterFlags are shared by view and filter.
type filterFlags struct {
	request   string
	device    string
	layer     string
	direction string
	category  string
	timeStart string
	timeEnd   string
	changed   bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.request, "request", "", "Filter by request id")
	cmd.Flags().StringVar(&f.device, "device", "", "Filter by device id")
	cmd.Flags().StringVar(&f.layer, "layer", "", "Filter by layer (command, telemetry, relay)")
	cmd.Flags().StringVar(&f.direction, "direction", "", "Filter by direction (in, out)")
	cmd.Flags().StringVar(&f.category, "category", "", "Filter by category (state, progress, update, error)")
	cmd.Flags().StringVar(&f.timeStart, "time-start", "", "Filter by start time (RFC3339)")
	cmd.Flags().StringVar(&f.timeEnd, "time-end", "", "Filter by end time (RFC3339)")
	cmd.Flags().BoolVar(&f.changed, "changed", false, "Drop telemetry updates that changed nothing")
}

func (f *filterFlags) options() FilterOptions {
	return FilterOptions{
		RequestID: f.request,
		DeviceID:  f.device,
		Layer:     f.layer,
		Direction: f.direction,
		Category:  f.category,
		TimeStart: f.timeStart,
		TimeEnd:   f.timeEnd,
		Changed:   f.changed,
	}
}

func init() {
	rootCmd.AddCommand(logCmd)
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	l, ok := log.ParseLayer(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid layer: %s (must be command, telemetry, or relay)", s)
	}
	return l, nil
}

// parseDirection parses a direction string (case-insensitive).
func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "state":
		return log.CategoryState, nil
	case "progress":
		return log.CategoryProgress, nil
	case "update":
		return log.CategoryUpdate, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be state, progress, update, or error)", s)
	}
}

func parseRequestID(s string) (wire.RequestID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid request id: %s", s)
	}
	return wire.RequestID(id), nil
}
