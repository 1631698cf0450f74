package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var normativesCmd = &cobra.Command{
	Use:   "normatives",
	Short: "Inspect the normative profile catalog",
}

var normativesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available normative profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := normativeCatalog()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tCOUNTRY")
		for _, code := range catalog.Codes() {
			p, err := catalog.Get(code)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Code, p.Name, p.Country)
		}
		return w.Flush()
	},
}

var normativesShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Print the full parameter set of a normative profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := normativeCatalog()
		if err != nil {
			return err
		}
		p, err := catalog.Get(args[0])
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		fmt.Printf("# %s - %s\n%s", p.Code, p.Name, data)
		return nil
	},
}

var normativesReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the normative profile file and report the catalog state",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := normativeCatalog()
		if err != nil {
			return err
		}
		if err := catalog.Reload(); err != nil {
			return err
		}
		fmt.Printf("Catalog reloaded: %v\n", catalog.Codes())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normativesCmd)
	normativesCmd.AddCommand(normativesListCmd)
	normativesCmd.AddCommand(normativesShowCmd)
	normativesCmd.AddCommand(normativesReloadCmd)
}
