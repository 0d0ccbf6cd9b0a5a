package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/export"
	"github.com/heimdex/heimdex-turnover/internal/interchange"
	"github.com/heimdex/heimdex-turnover/internal/shot"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		ales      []string
		cdlFiles  []string
		title     string
		outDir    string
		dropFrame bool
	)

	cmd := &cobra.Command{
		Use:   "export FORMAT TIMELINE...",
		Short: "Render shots as edl, ale, xml, cdl, cc or ccc",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := export.ParseFormat(args[0])
			if !ok {
				return fmt.Errorf("unknown export format %q (want edl, ale, xml, cdl, cc or ccc)", args[0])
			}
			shots, err := ctx.loadShots(args[1:])
			if err != nil {
				return err
			}

			req := export.ExportRequest{
				Title:     title,
				FPS:       ctx.fps(),
				DropFrame: dropFrame,
				Shots:     shots,
			}
			if len(ales) > 0 {
				if req.SourceMedia, err = ctx.loadSourceMedia(ales); err != nil {
					return err
				}
			}
			for _, path := range cdlFiles {
				result, err := ctx.parseFile(path, interchange.FormatCDL)
				if err != nil {
					return err
				}
				if result.CDL != nil {
					applyGrades(req.Shots, result.CDL)
				}
			}

			resp := export.Generate(format, req)
			if outDir != "" {
				path, err := resp.Save(outDir)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d %s entries to %s\n", resp.Count, format, path)
				return err
			}
			if ctx.wantJSON() {
				return writeJSON(cmd, resp)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), resp.Content)
			return err
		},
	}

	cmd.Flags().StringSliceVar(&ales, "ale", nil, "ALE file(s) supplying camera metadata")
	cmd.Flags().StringSliceVar(&cdlFiles, "cdl", nil, "CDL file(s) supplying shot grades")
	cmd.Flags().StringVar(&title, "title", "", "Title written into the export and used for its filename")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write the file into this directory instead of stdout")
	cmd.Flags().BoolVar(&dropFrame, "drop-frame", false, "Write drop-frame timecode")
	return cmd
}

// applyGrades sets each shot's grade from the correction whose id is the shot
// code, or else the first correction naming the shot's clip.
func applyGrades(shots []shot.Shot, file *cdl.FileResult) {
	byID := file.ByID()
	for i := range shots {
		e, ok := byID[shots[i].Code]
		if !ok {
			e, ok = file.Find(shots[i].MatchName())
		}
		if ok {
			c := e.Correction
			shots[i].CDL = &c
		}
	}
}
