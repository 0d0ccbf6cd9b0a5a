package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/interchange"
)

func newCDLCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cdl FILE...",
		Short: "List the color corrections in .cdl, .cc and .ccc files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []cdl.Entry
			var rows []correction
			for _, path := range args {
				result, err := ctx.parseFile(path, interchange.FormatCDL)
				if err != nil {
					return err
				}
				if result.CDL == nil {
					return fmt.Errorf("%s: no color corrections found", path)
				}
				printWarnings(cmd, result.Filename, result.Warnings)
				for _, e := range result.CDL.Entries {
					entries = append(entries, e)
					rows = append(rows, correction{file: result.Filename, entry: e})
				}
			}

			if ctx.wantJSON() {
				return writeJSON(cmd, entries)
			}
			return writeTable(cmd, rows, correctionColumns)
		},
	}
}
