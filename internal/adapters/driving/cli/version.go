package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("dpres version %s (schema %s)\n", version, domain.SchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
