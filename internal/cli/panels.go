package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "Inspect the PV panel database",
}

var panelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available panel models",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := panelCatalog()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tMANUFACTURER\tISC (A)\tVOC (V)\tPOWER (W)")
		for _, name := range catalog.Models() {
			p, err := catalog.Lookup(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.1f\t%.0f\n", p.Model, p.Manufacturer, p.IscA, p.VocV, p.PowerStcW)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(panelsCmd)
	panelsCmd.AddCommand(panelsListCmd)
}
