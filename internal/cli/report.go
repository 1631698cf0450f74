package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CableSizer/internal/export"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a PDF sizing report for a circuit table",
	Long: `Run a sizing calculation and render the results as a PDF report
with the per-circuit table, status color coding and the effective
normative parameters.

Example:
  cablesizer report -i strings.csv --panel "Generic 550W" -o report.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, cfg, class, err := runSizing(cmd)
		if err != nil {
			return err
		}
		if err := export.ExportPDF(reportOutput, batch, cfg, class); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s (%d circuits, %d failed)\n", reportOutput, batch.Total(), batch.ErrorCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	registerSizingFlags(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "report.pdf", "Output PDF path")
}
