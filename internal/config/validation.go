// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	"github.com/ManuGH/xmltv2db/internal/validate"
	"github.com/rs/zerolog"
)

// Validate checks a resolved configuration. Every failure wraps ErrInvalid.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("source.name", cfg.Source.Name)
	v.Range("source.index", cfg.Source.Index, 0, 255)
	v.NotEmpty("database", cfg.Database)
	v.Path("database", cfg.Database)
	v.Path("episodes_dir", cfg.EpisodesDir)
	v.NotEmpty("mappings", cfg.Mappings)
	v.Location("timezone", cfg.Timezone)
	v.NonNegativeDuration("grace", cfg.Grace)
	v.ListenAddr("metrics_listen", cfg.MetricsListen)

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		v.AddError("log.level", err.Error(), cfg.Log.Level)
	}
	if cfg.Log.File != "" {
		v.Range("log.max_size_mb", cfg.Log.MaxSizeMB, 1, 10240)
		v.Range("log.max_backups", cfg.Log.MaxBackups, 0, 1000)
		v.Range("log.max_age_days", cfg.Log.MaxAgeDays, 0, 3650)
	}

	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
