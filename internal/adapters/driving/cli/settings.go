package cli

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change the settings stored in config.toml.

DPRES_DB, DPRES_FIXITY_INTERVAL_DAYS, DPRES_PARTITION_TYPE, DPRES_FIDO and
DPRES_BWFMETAEDIT override the stored values for a single run.

Keys:
  database.path          SQLite database file
  fixity.interval_days   days between fixity checks of a file
  ingest.partition_type  content location type recorded on ingest
  logging.file           write dpres.log in the config directory
  tools.fido             fido executable
  tools.bwfmetaedit      bwfmetaedit executable`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	stored, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	for _, key := range services.SettingsKeys {
		cmd.Printf("%s = %s\n", key, settingValue(stored, key))
	}
	if configStore != nil {
		cmd.Println(mutedStyle.Render("# " + configStore.Path()))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !slices.Contains(services.SettingsKeys, key) {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}

	stored, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cmd.Println(settingValue(stored, key))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	stored, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := applySetting(stored, key, value); err != nil {
		return err
	}
	if err := settingsService.Save(stored); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("%s = %s\n", key, settingValue(stored, key))
	return nil
}

func settingValue(s *domain.Settings, key string) string {
	switch key {
	case services.KeyDatabasePath:
		return s.DatabasePath
	case services.KeyFixityInterval:
		return strconv.Itoa(s.FixityIntervalDays)
	case services.KeyPartitionType:
		return s.PartitionType
	case services.KeyFileLogging:
		return strconv.FormatBool(s.FileLogging)
	case services.KeyFidoPath:
		return s.FidoPath
	case services.KeyBWFMetaEdit:
		return s.BWFMetaEditPath
	default:
		return ""
	}
}

// applySetting parses value for key into s.
func applySetting(s *domain.Settings, key, value string) error {
	switch key {
	case services.KeyDatabasePath:
		s.DatabasePath = value
	case services.KeyFixityInterval:
		days, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number of days", domain.ErrInvalidInput, key)
		}
		s.FixityIntervalDays = days
	case services.KeyPartitionType:
		s.PartitionType = value
	case services.KeyFileLogging:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		s.FileLogging = b
	case services.KeyFidoPath:
		s.FidoPath = value
	case services.KeyBWFMetaEdit:
		s.BWFMetaEditPath = value
	default:
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}
	return nil
}
