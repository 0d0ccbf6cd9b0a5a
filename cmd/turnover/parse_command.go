package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/interchange"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "Detect and parse interchange files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var format interchange.Format
			if formatFlag != "" {
				f, ok := interchange.ParseFormat(formatFlag)
				if !ok {
					return fmt.Errorf("unknown format %q", formatFlag)
				}
				format = f
			}

			results := make([]*interchange.Result, 0, len(args))
			files := make([]parsedFile, 0, len(args))
			for _, path := range args {
				result, err := ctx.parseFile(path, format)
				if err != nil {
					return err
				}
				results = append(results, result)
				files = append(files, parsedFile{result: result, fps: result.FPS(ctx.fps())})
				if !ctx.wantJSON() {
					printWarnings(cmd, result.Filename, result.Warnings)
				}
			}

			if ctx.wantJSON() {
				return writeJSON(cmd, results)
			}
			return writeTable(cmd, files, parseColumns)
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "", "Force a parser: edl, ale, sequence_xml, filmscribe_xml, cdl, markers")
	return cmd
}
