package main

import (
	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
)

func newSourceMediaCommand(ctx *commandContext) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:     "source-media ALE...",
		Aliases: []string{"media"},
		Short:   "List camera-original clips logged in ALE files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := ctx.loadSourceMedia(args)
			if err != nil {
				return err
			}

			if summary {
				s := sourcemedia.Summarize(records)
				if ctx.wantJSON() {
					return writeJSON(cmd, s)
				}
				return writeTable(cmd, summaryFields(s), summaryColumns)
			}

			if ctx.wantJSON() {
				return writeJSON(cmd, records)
			}
			return writeTable(cmd, records, mediaColumns)
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Print dates, cameras and scenes instead of clips")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
