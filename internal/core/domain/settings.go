package domain

import "time"

// Settings holds the application configuration.
type Settings struct {
	// DatabasePath is the SQLite database file.
	DatabasePath string

	// FixityIntervalDays is the staleness interval for fixity checks.
	FixityIntervalDays int

	// PartitionType is recorded as the content location type of ingested files.
	PartitionType string

	// FileLogging enables the JSON log file in the config directory.
	FileLogging bool

	// FidoPath is the format identifier executable.
	FidoPath string

	// BWFMetaEditPath is the WAVE metadata tool executable.
	BWFMetaEditPath string
}

// FixityInterval returns the staleness interval as a duration.
func (s Settings) FixityInterval() time.Duration {
	return time.Duration(s.FixityIntervalDays) * 24 * time.Hour
}

// DefaultSettings returns sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		FixityIntervalDays: 7,
		PartitionType:      "NTFS",
		FileLogging:        true,
		FidoPath:           "fido",
		BWFMetaEditPath:    "bwfmetaedit",
	}
}

// Validate checks the settings for obviously broken values.
func (s Settings) Validate() error {
	if s.FixityIntervalDays < 0 {
		return ErrInvalidInput
	}
	if s.PartitionType == "" {
		return ErrInvalidInput
	}
	return nil
}
