package commands

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mcc-station/mcc-go/pkg/naming"
)

var (
	namesInfo string
	namesID   string
	codec     naming.Codec
)

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Encode and decode session, device and channel names",
}

var namesEncodeCmd = &cobra.Command{
	Use:       "encode <session|device|channel|kind>",
	Short:     "Generate a name token",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{naming.KindSession, naming.KindDevice, naming.KindChannel},
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunNamesEncode(cmd.OutOrStdout(), args[0], namesID, namesInfo)
	},
}

var namesDecodeCmd = &cobra.Command{
	Use:   "decode <name>...",
	Short: "Decode name tokens",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunNamesDecode(cmd.OutOrStdout(), args)
	},
}

func init() {
	namesEncodeCmd.Flags().StringVar(&namesInfo, "info", "", "Optional annotation")
	namesEncodeCmd.Flags().StringVar(&namesID, "id", "", "Identifier (default: random)")
	namesCmd.AddCommand(namesEncodeCmd, namesDecodeCmd)
	rootCmd.AddCommand(namesCmd)
}

// RunNamesEncode writes a name for kind. An empty id generates one.
func RunNamesEncode(w io.Writer, kind, id, info string) error {
	u := uuid.New()
	if id != "" {
		var err error
		if u, err = uuid.Parse(id); err != nil {
			return fmt.Errorf("invalid id %q: %w", id, err)
		}
	}
	fmt.Fprintln(w, codec.Encode(kind, u, info))
	return nil
}

// RunNamesDecode writes the segments of each name. It fails on the first
// name that is not a valid token.
func RunNamesDecode(w io.Writer, names []string) error {
	for _, text := range names {
		n, ok := codec.Decode(text)
		if !ok {
			return fmt.Errorf("not a name token: %q", text)
		}
		fmt.Fprintf(w, "%s\n  Kind:  %s\n  ID:    %s\n  Stamp: %s\n", text, n.Kind, n.ID, n.Stamp)
		if n.Info != "" {
			fmt.Fprintf(w, "  Info:  %s\n", n.Info)
		}
	}
	return nil
}
