package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mcc-station/mcc-go/internal/config"
	"github.com/mcc-station/mcc-go/pkg/ident"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the configured protocol catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured protocols",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCatalogList(cmd.OutOrStdout(), cfg)
	},
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every configured firmware against its protocol",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCatalogCheck(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd, catalogCheckCmd)
	rootCmd.AddCommand(catalogCmd)
}

// RunCatalogList prints the protocols of c.
func RunCatalogList(w io.Writer, c *config.Config) error {
	cat, err := c.Catalog()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "NAME\tID\tTIMEOUT\tMAX DEVICE\tSHAREABLE\tFIRMWARE\n")
	for _, p := range cat.Protocols() {
		fw := p.Firmware
		if fw == "" {
			fw = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\n", p.Name, p.ID, p.Timeout, p.MaxDeviceID, p.Shareable, fw)
	}
	return tw.Flush()
}

// RunCatalogCheck validates every configured firmware and reports each
// result. It returns an error when any firmware is incompatible.
func RunCatalogCheck(w io.Writer, c *config.Config) error {
	cat, err := c.Catalog()
	if err != nil {
		return err
	}

	failed := 0
	for _, p := range c.Protocols {
		for _, f := range p.Firmwares {
			id, err := ident.ParseFirmware(f.ID)
			if err != nil {
				return err
			}
			if err := cat.CheckFirmware(id); err != nil {
				failed++
				fmt.Fprintf(w, "FAIL  %s %s %s: %v\n", p.Name, f.Info, f.Version, err)
				continue
			}
			fmt.Fprintf(w, "ok    %s %s %s\n", p.Name, f.Info, f.Version)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d incompatible firmware builds", failed)
	}
	return nil
}
