// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/ManuGH/xmltv2db/internal/persistence/sqlite"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [<channel> <event-id>]",
		Short: "Show a stored event, or the number of stored events for the source",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <channel> <event-id>, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := sqlite.OpenEPGStore(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				n, err := store.Count(ctx, cfg.Source.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d event(s)\n", cfg.Source.Name, n)
				return nil
			}

			id, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				return fmt.Errorf("event id %q: %w", args[1], err)
			}
			ev, err := store.Load(ctx, cfg.Source.Name, args[0], uint16(id))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			row := func(k string, v any) { fmt.Fprintf(tw, "%s\t%v\n", k, v) }
			row("channel", ev.ChannelID())
			row("event id", ev.EventID())
			row("start", ev.StartTime().UTC().Format(time.RFC3339))
			row("duration", time.Duration(ev.Duration())*time.Second)
			row("title", ev.Title())
			if ev.OrigTitle() != "" {
				row("orig title", ev.OrigTitle())
			}
			if ev.ShortText() != "" {
				row("short text", ev.ShortText())
			}
			if ev.Season() != 0 || ev.Episode() != 0 {
				row("episode", fmt.Sprintf("S%02dE%02d (%d)", ev.Season(), ev.Episode(), ev.EpisodeOverall()))
			}
			if c := ev.Category(); len(c) > 0 {
				row("category", c)
			}
			if c := ev.Credits(); len(c) > 0 {
				row("credits", c)
			}
			if r := ev.Rating(); len(r) > 0 {
				row("rating", fmt.Sprintf("%s (parental %d)", r, ev.ParentalRating()))
			}
			return tw.Flush()
		},
	}
}
