// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"

	"github.com/ManuGH/xmltv2db/internal/persistence/sqlite"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the integrity of the configured EPG database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			mode := sqlite.VerifyQuick
			if full {
				mode = sqlite.VerifyFull
			}
			issues, err := sqlite.VerifyIntegrity(cmd.Context(), cfg.Database, mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s: ok (%s)\n", cfg.Database, mode)
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintln(out, issue)
			}
			return fmt.Errorf("%s: %d integrity issue(s)", cfg.Database, len(issues))
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "run PRAGMA integrity_check instead of quick_check")
	return cmd
}
