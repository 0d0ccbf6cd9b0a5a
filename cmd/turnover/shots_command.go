package main

import (
	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/shot"
)

func newShotsCommand(ctx *commandContext) *cobra.Command {
	var countSheet bool
	var handles int

	cmd := &cobra.Command{
		Use:   "shots TIMELINE...",
		Short: "List the shots of EDL, sequence XML or FilmScribe timelines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shots, err := ctx.loadShots(args)
			if err != nil {
				return err
			}
			if countSheet {
				return writeCountSheets(cmd, ctx, shots, handles)
			}
			if ctx.wantJSON() {
				return writeJSON(cmd, shots)
			}

			return writeTable(cmd, shots, shotColumns)
		},
	}

	cmd.Flags().BoolVar(&countSheet, "count-sheet", false, "Print cut and working lengths with handles")
	cmd.Flags().IntVar(&handles, "handles", shot.DefaultHandles, "Handle frames at head and tail")
	return cmd
}

func writeCountSheets(cmd *cobra.Command, ctx *commandContext, shots []shot.Shot, handles int) error {
	sheets := make([]shot.CountSheet, 0, len(shots))
	for _, s := range shots {
		sheets = append(sheets, shot.NewCountSheet(s, ctx.fps(), handles, handles))
	}
	if ctx.wantJSON() {
		return writeJSON(cmd, sheets)
	}

	return writeTable(cmd, sheets, countSheetColumns)
}
