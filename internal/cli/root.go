// Package cli implements the cablesizer command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CableSizer/internal/normative"
	"github.com/piwi3910/CableSizer/internal/panel"
	"github.com/piwi3910/CableSizer/internal/project"
)

var (
	normativesFile string
	panelsFile     string
	projectsDir    string
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "cablesizer",
	Short: "PV conductor cross-section sizing tool",
	Long: `cablesizer - PV Conductor Sizing Tool

Sizes conductor cross-sections for photovoltaic plant circuits from
ampacity derating and voltage-drop criteria.

Supported circuit classes:
  - dc_strings    panel string circuits
  - cn1_inverter  combiner box to inverter trunks
  - ac_circuits   inverter AC output circuits
  - mv_circuits   medium voltage feeders

Calculations run against a normative profile (IEC, NEC or CUSTOM),
optionally layered with per-project stage overrides and ad-hoc
parameters. Results classify each circuit's voltage drop as OK,
WARNING or CRITICAL.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		applyAppConfigDefaults(cmd)
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&normativesFile, "normatives-file", "", "YAML file with additional normative profiles")
	rootCmd.PersistentFlags().StringVar(&panelsFile, "panels-file", "", "YAML panel database file")
	rootCmd.PersistentFlags().StringVar(&projectsDir, "projects-dir", project.DefaultRoot(), "Root directory for project override files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// normativeCatalog loads the normative catalog, including the optional
// profile file when given.
func normativeCatalog() (*normative.Catalog, error) {
	if normativesFile != "" {
		return normative.LoadCatalog(normativesFile)
	}
	return normative.NewCatalog(), nil
}

// panelCatalog loads the panel database, including the optional file.
func panelCatalog() (*panel.Catalog, error) {
	if panelsFile != "" {
		return panel.LoadCatalog(panelsFile)
	}
	return panel.NewCatalog(), nil
}

func overrideStore() *project.Store {
	return project.NewStore(projectsDir)
}

// applyAppConfigDefaults fills flags the user left unset from the persisted
// application config. Command-line flags always win.
func applyAppConfigDefaults(cmd *cobra.Command) {
	appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		slog.Warn("ignoring unreadable application config", "error", err)
		return
	}

	flags := cmd.Flags()
	if f := flags.Lookup("normative"); f != nil && !f.Changed && appCfg.DefaultNormative != "" {
		calcNormative = appCfg.DefaultNormative
	}
	if f := flags.Lookup("panel"); f != nil && !f.Changed && appCfg.DefaultPanelModel != "" {
		calcPanel = appCfg.DefaultPanelModel
	}
	if f := flags.Lookup("class"); f != nil && !f.Changed && appCfg.DefaultClass != "" {
		calcClass = appCfg.DefaultClass
	}
	if !rootCmd.PersistentFlags().Changed("projects-dir") && appCfg.ProjectsDir != "" {
		projectsDir = appCfg.ProjectsDir
	}
}
