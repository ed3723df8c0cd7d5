// Package envvars applies DPRES_* environment variables on top of the stored
// settings, so cron jobs and containers can configure dpres without a
// config file.
package envvars

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// Prefix is prepended to every variable name.
const Prefix = "DPRES_"

// unsetDays marks an interval override that was not given.
const unsetDays = -1

// Overrides holds the settings that can come from the environment.
// Empty strings are not applied.
type Overrides struct {
	DatabasePath       string `env:"DB"`
	FixityIntervalDays int    `env:"FIXITY_INTERVAL_DAYS" envDefault:"-1"`
	PartitionType      string `env:"PARTITION_TYPE"`
	FidoPath           string `env:"FIDO"`
	BWFMetaEditPath    string `env:"BWFMETAEDIT"`
}

// Load reads overrides from the process environment.
func Load() (Overrides, error) {
	return LoadFrom(nil)
}

// LoadFrom reads overrides from environ, or from the process environment
// when environ is nil.
func LoadFrom(environ map[string]string) (Overrides, error) {
	var o Overrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: Prefix, Environment: environ}); err != nil {
		return Overrides{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return o, nil
}

// Apply returns settings with the overrides applied.
func (o Overrides) Apply(settings domain.Settings) domain.Settings {
	if o.DatabasePath != "" {
		settings.DatabasePath = o.DatabasePath
	}
	if o.FixityIntervalDays != unsetDays {
		settings.FixityIntervalDays = o.FixityIntervalDays
	}
	if o.PartitionType != "" {
		settings.PartitionType = o.PartitionType
	}
	if o.FidoPath != "" {
		settings.FidoPath = o.FidoPath
	}
	if o.BWFMetaEditPath != "" {
		settings.BWFMetaEditPath = o.BWFMetaEditPath
	}
	return settings
}
