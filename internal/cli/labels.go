package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CableSizer/internal/export"
)

var labelsOutput string

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Generate QR-coded circuit labels for a circuit table",
	Long: `Run a sizing calculation and render a printable label sheet for the
sized circuits. Each label carries the circuit id, the selected
commercial section and a QR code with the sizing metadata.

Example:
  cablesizer labels -i strings.csv --panel "Generic 550W" -o labels.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, _, class, err := runSizing(cmd)
		if err != nil {
			return err
		}
		if err := export.ExportLabels(labelsOutput, batch, class); err != nil {
			return fmt.Errorf("failed to write labels: %w", err)
		}
		fmt.Printf("Labels written to %s\n", labelsOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)
	registerSizingFlags(labelsCmd)
	labelsCmd.Flags().StringVarP(&labelsOutput, "output", "o", "labels.pdf", "Output PDF path")
}
