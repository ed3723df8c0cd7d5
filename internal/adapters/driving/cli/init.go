package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the preservation database",
	Long: `Creates the SQLite database, or brings an existing one up to date, and
records its location in the configuration file when none is set.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if err := setupStore(true); err != nil {
		return err
	}

	stored, err := settingsService.Get()
	if err != nil {
		return err
	}
	if stored.DatabasePath == "" {
		stored.DatabasePath = settings.DatabasePath
		if err := settingsService.Save(stored); err != nil {
			return err
		}
	}

	cmd.Printf("Database ready at %s (schema %s)\n", settings.DatabasePath, domain.SchemaVersion)
	return nil
}
