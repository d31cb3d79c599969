package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcc-station/mcc-go/internal/config"
	"github.com/mcc-station/mcc-go/internal/station"
	"github.com/mcc-station/mcc-go/pkg/ident"
	"github.com/mcc-station/mcc-go/pkg/relay"
	"github.com/mcc-station/mcc-go/pkg/telemetry"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

var relayDevice string

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Work with the configured broker relays",
}

var relayCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Publish a sample request and telemetry change to every enabled broker",
	Long: `Opens the station from the configuration, connects every enabled broker
(nats.enabled, mqtt.enabled), publishes one attitude change and the progress
and outcome of one "relay check" request for --device, then shuts down.

Subscribers can watch e.g. "mcc.>" on NATS or "mcc/#" on MQTT.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRelayCheck(cmd.OutOrStdout(), cfg, relayDevice)
	},
}

func init() {
	relayCheckCmd.Flags().StringVar(&relayDevice, "device", "", "Device id to publish for (default: random)")
	relayCmd.AddCommand(relayCheckCmd)
	rootCmd.AddCommand(relayCmd)
}

// ErrNoRelay is returned by RunRelayCheck when no broker is enabled.
var ErrNoRelay = errors.New("no relay enabled (set nats.enabled or mqtt.enabled)")

// RunRelayCheck publishes sample notifications through the station built
// from c. Extra publishers are added to the configured brokers.
func RunRelayCheck(w io.Writer, c *config.Config, device string, extra ...relay.Publisher) error {
	dev := ident.NewDevice()
	if device != "" {
		var err error
		if dev, err = ident.ParseDevice(device); err != nil {
			return fmt.Errorf("invalid device id %q: %w", device, err)
		}
	}

	st, err := station.Open(c, &station.Options{Publishers: extra})
	if err != nil {
		return err
	}
	if st.Publishers() == 0 {
		_ = st.Close()
		return ErrNoRelay
	}

	view := st.NewView(dev)
	view.Attitude().Update(time.Now(), &telemetry.Attitude{})

	cmd, _, err := st.Tracker.Issue(wire.DeviceTarget(dev), "relay", "check", nil)
	if err != nil {
		_ = st.Close()
		return err
	}
	cmd.SendProgress(50)
	if err := cmd.SendDone(nil); err != nil {
		_ = st.Close()
		return err
	}
	if err := st.Close(); err != nil {
		return err
	}

	id, _ := cmd.RequestID()
	fmt.Fprintf(w, "device:     %s\n", dev)
	fmt.Fprintf(w, "request:    %d (PROGRESS 50, DONE)\n", id)
	fmt.Fprintf(w, "telemetry:  %s\n", telemetry.AttitudeInfo)
	fmt.Fprintf(w, "publishers: %d\n", st.Publishers())
	return nil
}
