package services

import (
	"fmt"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyDatabasePath   = "database.path"
	KeyFixityInterval = "fixity.interval_days"
	KeyPartitionType  = "ingest.partition_type"
	KeyFileLogging    = "logging.file"
	KeyFidoPath       = "tools.fido"
	KeyBWFMetaEdit    = "tools.bwfmetaedit"
)

// SettingsKeys lists every key the settings service understands.
var SettingsKeys = []string{
	KeyDatabasePath,
	KeyFixityInterval,
	KeyPartitionType,
	KeyFileLogging,
	KeyFidoPath,
	KeyBWFMetaEdit,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings, using defaults for unset keys.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		DatabasePath:       s.getString(KeyDatabasePath, defaults.DatabasePath),
		FixityIntervalDays: s.getInt(KeyFixityInterval, defaults.FixityIntervalDays),
		PartitionType:      s.getString(KeyPartitionType, defaults.PartitionType),
		FileLogging:        s.getBool(KeyFileLogging, defaults.FileLogging),
		FidoPath:           s.getString(KeyFidoPath, defaults.FidoPath),
		BWFMetaEditPath:    s.getString(KeyBWFMetaEdit, defaults.BWFMetaEditPath),
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings in %s: %w", s.configStore.Path(), err)
	}
	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyDatabasePath, settings.DatabasePath},
		{KeyFixityInterval, settings.FixityIntervalDays},
		{KeyPartitionType, settings.PartitionType},
		{KeyFileLogging, settings.FileLogging},
		{KeyFidoPath, settings.FidoPath},
		{KeyBWFMetaEdit, settings.BWFMetaEditPath},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
