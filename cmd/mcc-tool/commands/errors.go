package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mcc-station/mcc-go/pkg/wire"
)

var errorsCmd = &cobra.Command{
	Use:   "errors [KIND]...",
	Short: "List the error taxonomy",
	Long: `List every error kind with its numeric code and description.
With arguments, only the named kinds are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunErrors(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(errorsCmd)
}

// RunErrors prints the named kinds, or all kinds when names is empty.
func RunErrors(w io.Writer, names []string) error {
	kinds := wire.Kinds()
	if len(names) > 0 {
		kinds = kinds[:0:0]
		for _, name := range names {
			k, ok := wire.ParseKind(name)
			if !ok {
				return fmt.Errorf("unknown error kind: %s", name)
			}
			kinds = append(kinds, k)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "CODE\tKIND\tDESCRIPTION\n")
	for _, k := range kinds {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", uint8(k), k, k.Description())
	}
	return tw.Flush()
}
