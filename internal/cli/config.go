package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CableSizer/internal/project"
)

var (
	configSetNormative string
	configSetPanel     string
	configSetClass     string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persisted application defaults",
	Long: `Manage the defaults stored in the application config file
(` + project.DefaultConfigPath() + `). Stored defaults apply when the
corresponding flag is not given on the command line.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted application defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Default normative:\t%s\n", cfg.DefaultNormative)
		fmt.Fprintf(w, "Default panel:\t%s\n", cfg.DefaultPanelModel)
		fmt.Fprintf(w, "Default class:\t%s\n", cfg.DefaultClass)
		if cfg.ProjectsDir != "" {
			fmt.Fprintf(w, "Projects dir:\t%s\n", cfg.ProjectsDir)
		}
		if len(cfg.RecentProjects) > 0 {
			fmt.Fprintf(w, "Recent projects:\t%v\n", cfg.RecentProjects)
		}
		return w.Flush()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Persist application defaults",
	Long: `Persist defaults to the application config file.

Example:
  cablesizer config set --normative NEC --panel "Generic 550W"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := project.DefaultConfigPath()
		cfg, err := project.LoadAppConfig(path)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("normative") {
			cfg.DefaultNormative = configSetNormative
		}
		if cmd.Flags().Changed("panel") {
			cfg.DefaultPanelModel = configSetPanel
		}
		if cmd.Flags().Changed("class") {
			if _, err := parseClass(configSetClass); err != nil {
				return err
			}
			cfg.DefaultClass = configSetClass
		}

		if err := project.SaveAppConfig(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Defaults saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)

	configSetCmd.Flags().StringVar(&configSetNormative, "normative", "", "Default normative profile code")
	configSetCmd.Flags().StringVar(&configSetPanel, "panel", "", "Default PV panel model")
	configSetCmd.Flags().StringVar(&configSetClass, "class", "", "Default circuit class")
}
