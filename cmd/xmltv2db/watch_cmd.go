// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"time"

	"github.com/ManuGH/xmltv2db/internal/importer"
	xglog "github.com/ManuGH/xmltv2db/internal/log"
	"github.com/ManuGH/xmltv2db/internal/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <document>",
		Short: "Import a document and re-import it whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := xglog.ContextWithSource(cmd.Context(), cfg.Source.Name)
			logger := xglog.WithComponentFromContext(ctx, "cli")

			rt, err := newRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			g, ctx := errgroup.WithContext(ctx)

			if cfg.MetricsListen != "" {
				g.Go(func() error {
					logger.Info().Str("addr", cfg.MetricsListen).Msg("metrics listener started")
					return metrics.Serve(ctx, cfg.MetricsListen)
				})
			}

			g.Go(func() error {
				return importer.Watch(ctx, args[0], debounce, func(ctx context.Context) error {
					ctx = withRun(ctx, cfg)
					_, err := rt.processor.ImportFile(ctx, args[0])
					return err
				})
			})

			return g.Wait()
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", importer.DefaultDebounce, "quiet period after the last change before re-importing")
	return cmd
}
