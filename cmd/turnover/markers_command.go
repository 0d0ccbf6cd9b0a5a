package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/interchange"
	"github.com/heimdex/heimdex-turnover/internal/matching"
)

func newMarkersCommand(ctx *commandContext) *cobra.Command {
	var timelines []string

	cmd := &cobra.Command{
		Use:   "markers MARKER_LIST --timeline FILE",
		Short: "Assign marker notes to the shots of a timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(timelines) == 0 {
				return errors.New("--timeline is required")
			}
			shots, err := ctx.loadShots(timelines)
			if err != nil {
				return err
			}
			result, err := ctx.parseFile(args[0], interchange.FormatMarkers)
			if err != nil {
				return err
			}
			if result.Markers == nil {
				return fmt.Errorf("%s: no markers found", args[0])
			}

			m := matching.MatchMarkers(result.Markers.Markers, matching.RangesOf(shots), ctx.fps())
			if ctx.wantJSON() {
				return writeJSON(cmd, m)
			}
			printWarnings(cmd, result.Filename, result.Warnings)

			codes := make([]string, 0, len(m.Matches))
			for code := range m.Matches {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			lines := make([]markerLine, 0, len(codes)+len(m.Unmatched))
			for _, code := range codes {
				lines = append(lines, markerLine{code: code, notes: m.Matches[code]})
			}
			for _, u := range m.Unmatched {
				lines = append(lines, markerLine{unmatchedAt: u.Timecode, notes: u.Note})
			}
			if err := writeTable(cmd, lines, markerColumns); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%d matched, %d unmatched\n", m.MatchedCount, len(m.Unmatched))
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&timelines, "timeline", "t", nil, "Timeline file(s) the markers were placed on")
	return cmd
}
