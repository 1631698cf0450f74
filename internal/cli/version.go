package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cablesizer",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cablesizer v%s\n", Version)
		fmt.Println("PV Conductor Sizing Tool")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
