package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/config/envvars"
	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/oracle/bwfmetaedit"
	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/oracle/fido"
	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driving"
	"github.com/custodia-labs/dpres-cli/internal/core/services"
	"github.com/custodia-labs/dpres-cli/internal/formats"
	"github.com/custodia-labs/dpres-cli/internal/logger"
)

// File names inside the configuration directory.
const (
	databaseFileName = "dpres.db"
	logFileName      = "dpres.log"
)

// Services used by the commands. They are wired on first use; tests
// assign them directly.
var (
	configStore     driven.ConfigStore
	settingsService driving.SettingsService
	ingestService   driving.IngestService
	fixityService   driving.FixityService
	objectService   driving.ObjectService

	// settings are the effective settings: stored values, then DPRES_*
	// variables, then flags.
	settings *domain.Settings

	// configDir is set when the file config store was wired.
	configDir string

	closeStore func() error
)

// setupConfig configures logging and loads the effective settings.
func setupConfig(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)
	logger.SetQuiet(flagQuiet)

	if settingsService == nil {
		if err := setupConfigStore(); err != nil {
			return err
		}
	}

	stored, err := settingsService.Get()
	if err != nil {
		return err
	}

	overrides, err := envvars.Load()
	if err != nil {
		return fmt.Errorf("reading %s variables: %w", envvars.Prefix, err)
	}
	effective := overrides.Apply(*stored)
	if flagDB != "" {
		effective.DatabasePath = flagDB
	}
	if effective.DatabasePath == "" && configDir != "" {
		effective.DatabasePath = filepath.Join(configDir, databaseFileName)
	}
	if err := effective.Validate(); err != nil {
		return fmt.Errorf("settings from %s variables: %w", envvars.Prefix, err)
	}
	settings = &effective

	if effective.FileLogging && configDir != "" {
		if err := logger.SetFile(filepath.Join(configDir, logFileName)); err != nil {
			logger.Warn("cannot open log file: %v", err)
		}
	}

	return nil
}

// setupConfigStore wires the TOML config store in --config-dir or ~/.dpres.
// Without either, settings live in memory for this invocation and only
// flags and DPRES_* variables apply.
func setupConfigStore() error {
	dir := flagConfigDir
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			logger.Warn("no configuration directory (%v), using flags and %s variables only", err, envvars.Prefix)
			configStore = memory.NewConfigStore()
			settingsService = services.NewSettingsService(configStore)
			return nil
		}
		dir = d
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = store
	configDir = dir
	settingsService = services.NewSettingsService(store)
	return nil
}

// setupStore opens the store, or creates it when create is set, and wires
// the services that read and write it.
func setupStore(create bool) error {
	if ingestService != nil && fixityService != nil && objectService != nil {
		return nil
	}
	if settings == nil || settings.DatabasePath == "" {
		return errors.New("no database configured (use --db or set database.path)")
	}

	var (
		store *sqlite.Store
		err   error
	)
	if create {
		store, err = sqlite.Create(settings.DatabasePath)
	} else {
		store, err = sqlite.Open(settings.DatabasePath)
	}
	if err != nil {
		return err
	}
	closeStore = store.Close
	logger.Debug("using database %s", store.Path())

	identifier, registry := oracles()
	ingestService = services.NewIngestCoordinator(store, identifier, registry, settings.PartitionType, version)
	fixityService = services.NewFixityRunner(
		store,
		services.NewFixityScheduler(store),
		services.NewFixityVerifier(registry, version),
	)
	objectService = services.NewObjectService(store)
	return nil
}

// dryRunService lists files against a throwaway in-memory store, so a dry
// run needs neither a database nor the format identifier.
func dryRunService() driving.IngestService {
	if ingestService != nil {
		return ingestService
	}
	identifier, registry := oracles()
	return services.NewIngestCoordinator(memory.NewObjectStore(), identifier, registry, settings.PartitionType, version)
}

func oracles() (driven.FormatIdentifier, *formats.Registry) {
	registry := formats.NewRegistry()
	formats.RegisterDefaults(registry, formats.Extractors{
		WAVE: bwfmetaedit.New(settings.BWFMetaEditPath),
	})
	return fido.New(settings.FidoPath), registry
}
