// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <document>",
		Short: "Import one XMLTV document",
		Long: `Reads an XMLTV document (plain, gzip, bzip2 or xz) and writes one row per
mapped programme into the epg table. Programmes that started more than the
grace window ago are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := withRun(cmd.Context(), cfg)

			rt, err := newRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.processor.ImportFile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "programmes=%d inserted=%d updated=%d skipped=%d\n",
				res.Programmes, res.Inserted, res.Updated, res.Skipped())
			return nil
		},
	}
}
