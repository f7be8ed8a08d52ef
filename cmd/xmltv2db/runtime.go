// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/xmltv2db/internal/config"
	"github.com/ManuGH/xmltv2db/internal/episodes"
	"github.com/ManuGH/xmltv2db/internal/importer"
	xglog "github.com/ManuGH/xmltv2db/internal/log"
	"github.com/ManuGH/xmltv2db/internal/mapping"
	"github.com/ManuGH/xmltv2db/internal/persistence/sqlite"
	"github.com/ManuGH/xmltv2db/internal/version"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// runtime bundles the collaborators of one import command.
type runtime struct {
	cfg       config.AppConfig
	store     *sqlite.EPGStore
	mappings  *mapping.Manager
	processor *importer.Processor
}

// loadConfig loads the configuration and reconfigures the global logger from it.
func loadConfig() (config.AppConfig, error) {
	cfg, err := config.NewLoader(configPath, version.Version).Load()
	if err != nil {
		return cfg, err
	}
	xglog.Reconfigure(cfg.LoggerConfig())
	return cfg, nil
}

// withRun tags ctx with a fresh run id and the configured source.
func withRun(ctx context.Context, cfg config.AppConfig) context.Context {
	ctx = xglog.ContextWithRunID(ctx, uuid.NewString())
	return xglog.ContextWithSource(ctx, cfg.Source.Name)
}

func newRuntime(ctx context.Context, cfg config.AppConfig) (*runtime, error) {
	logger := xglog.WithComponentFromContext(ctx, "cli")

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	mappings := mapping.NewManager(cfg.Mappings)
	if err := mappings.Load(); err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}

	var resolver importer.EpisodeResolver
	r, err := episodes.New(afero.NewOsFs(), cfg.EpisodesDir)
	switch {
	case err == nil:
		resolver = r
	case errors.Is(err, episodes.ErrNoDirectory):
		logger.Info().Str(xglog.FieldPath, cfg.EpisodesDir).Msg("episode lists unavailable, season/episode lookup disabled")
	default:
		return nil, err
	}

	store, err := sqlite.OpenEPGStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	p := importer.NewProcessor(mappings, store, importer.Options{
		Source:      cfg.Source.Name,
		SourceIndex: cfg.Source.Index,
		Lang:        cfg.Lang,
		Location:    loc,
		Grace:       cfg.Grace,
		Episodes:    resolver,
	})

	return &runtime{cfg: cfg, store: store, mappings: mappings, processor: p}, nil
}

func (r *runtime) Close() error { return r.store.Close() }
