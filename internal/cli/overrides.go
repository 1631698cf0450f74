package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/CableSizer/internal/project"
)

var (
	overridesProject  string
	overridesStage    string
	overridesBaseNorm string
	overridesFile     string
	overridesBundle   string
)

var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "Manage per-project normative parameter overrides",
	Long: `Manage the persisted parameter overrides of a project stage.

Overrides live under the projects directory as one YAML file per
stage and are deep-merged onto the base normative profile at
calculation time. Deleting a stage's overrides resets it to the
base profile.`,
}

var overridesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted overrides of a project stage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ov, err := overrideStore().Load(overridesProject, overridesStage)
		if err != nil {
			return err
		}
		if ov == nil {
			fmt.Printf("No overrides for project %s stage %s\n", overridesProject, overridesStage)
			return nil
		}
		data, err := yaml.Marshal(ov)
		if err != nil {
			return fmt.Errorf("failed to encode overrides: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var overridesSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Merge an override fragment into a project stage",
	Long: `Merge the section mapping from a YAML file into the stage's
persisted overrides. Mapping sections merge key by key; scalar values
replace the stored value.

Example:
  cablesizer overrides save --project solar-park-a --stage dc_strings \
    --file tweaks.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(overridesFile)
		if err != nil {
			return fmt.Errorf("failed to read override file: %w", err)
		}
		var sections map[string]any
		if err := yaml.Unmarshal(data, &sections); err != nil {
			return fmt.Errorf("failed to parse override file: %w", err)
		}

		ov, err := overrideStore().Save(overridesProject, overridesStage, overridesBaseNorm, sections)
		if err != nil {
			return err
		}
		fmt.Printf("Overrides saved for project %s stage %s (last modified %s)\n",
			ov.ProjectID, ov.Stage, ov.LastModified)
		return nil
	},
}

var overridesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stage overrides of a project to a JSON bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := project.ExportProjectData(overrideStore(), overridesProject, overridesBundle); err != nil {
			return err
		}
		fmt.Printf("Project %s exported to %s\n", overridesProject, overridesBundle)
		return nil
	},
}

var overridesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore a project's stage overrides from a JSON bundle",
	Long: `Restore every stage override from a bundle created by
'overrides export'. Existing stage files of the bundled project are
replaced, not merged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		backup, err := project.ImportProjectData(overridesBundle)
		if err != nil {
			return err
		}
		if err := project.RestoreProjectData(overrideStore(), backup); err != nil {
			return err
		}
		fmt.Printf("Project %s restored from %s (%d stages)\n", backup.ProjectID, overridesBundle, len(backup.Stages))
		return nil
	},
}

var overridesDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a project stage's overrides, resetting it to the base profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := overrideStore().Delete(overridesProject, overridesStage); err != nil {
			return err
		}
		fmt.Printf("Overrides deleted for project %s stage %s\n", overridesProject, overridesStage)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overridesCmd)
	overridesCmd.AddCommand(overridesShowCmd)
	overridesCmd.AddCommand(overridesSaveCmd)
	overridesCmd.AddCommand(overridesDeleteCmd)
	overridesCmd.AddCommand(overridesExportCmd)
	overridesCmd.AddCommand(overridesImportCmd)

	for _, cmd := range []*cobra.Command{overridesShowCmd, overridesSaveCmd, overridesDeleteCmd} {
		cmd.Flags().StringVar(&overridesProject, "project", "", "Project id [required]")
		cmd.Flags().StringVar(&overridesStage, "stage", "", "Project stage [required]")
		cmd.MarkFlagRequired("project")
		cmd.MarkFlagRequired("stage")
	}

	overridesSaveCmd.Flags().StringVar(&overridesBaseNorm, "base-norm", "IEC", "Base normative the overrides apply to")
	overridesSaveCmd.Flags().StringVar(&overridesFile, "file", "", "YAML file with override sections [required]")
	overridesSaveCmd.MarkFlagRequired("file")

	overridesExportCmd.Flags().StringVar(&overridesProject, "project", "", "Project id [required]")
	overridesExportCmd.Flags().StringVar(&overridesBundle, "file", "project-backup.json", "Bundle file path")
	overridesExportCmd.MarkFlagRequired("project")

	overridesImportCmd.Flags().StringVar(&overridesBundle, "file", "", "Bundle file path [required]")
	overridesImportCmd.MarkFlagRequired("file")
}
