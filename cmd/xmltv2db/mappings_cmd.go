// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ManuGH/xmltv2db/internal/mapping"
	"github.com/spf13/cobra"
)

func newMappingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Inspect and convert channel mappings",
	}
	cmd.AddCommand(newMappingsListCmd(), newMappingsImportCmd(), newMappingsRemoveCmd())
	return cmd
}

func loadMappings() (*mapping.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	m := mapping.NewManager(cfg.Mappings)
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

func newMappingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured channel mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := loadMappings()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHANNEL\tDAYS\tOPTIONS\tTARGETS")
			for _, mp := range m.List() {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
					mp.ChannelID, mp.Days, strings.Join(mp.Flags.Names(), ","), strings.Join(mp.Targets, ","))
			}
			return tw.Flush()
		},
	}
}

func newMappingsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <setup.conf>",
		Short: "Convert legacy channel.<id> setup lines into the mappings file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMappings()
			if err != nil {
				return err
			}
			// #nosec G304 -- path is provided by the operator
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := m.ImportSetup(f)
			if err != nil {
				return err
			}
			if err := m.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d mapping(s)\n", n)
			return nil
		},
	}
}

func newMappingsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <channel>...",
		Short: "Remove channel mappings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMappings()
			if err != nil {
				return err
			}
			for _, id := range args {
				if _, ok := m.Lookup(id); !ok {
					return fmt.Errorf("no mapping for %q", id)
				}
				m.Remove(id)
			}
			if err := m.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d mapping(s)\n", len(args))
			return nil
		},
	}
}
