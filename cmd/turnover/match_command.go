package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/matching"
)

type shotMatch struct {
	Code     string            `json:"code"`
	Clip     string            `json:"clip"`
	Media    string            `json:"media,omitempty"`
	Strategy matching.Strategy `json:"strategy,omitempty"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var ales []string

	cmd := &cobra.Command{
		Use:   "match TIMELINE... --ale FILE",
		Short: "Link timeline shots to the camera clips logged in ALE files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ales) == 0 {
				return errors.New("--ale is required")
			}
			shots, err := ctx.loadShots(args)
			if err != nil {
				return err
			}
			media, err := ctx.loadSourceMedia(ales)
			if err != nil {
				return err
			}

			matches := make([]shotMatch, 0, len(shots))
			for _, s := range shots {
				sm := shotMatch{Code: s.Code, Clip: s.MatchName()}
				if m, ok := matching.MatchClip(matching.RefOf(s), media); ok {
					sm.Media = m.Record.ClipName
					sm.Strategy = m.Strategy
				}
				matches = append(matches, sm)
			}

			if ctx.wantJSON() {
				return writeJSON(cmd, matches)
			}
			return writeTable(cmd, matches, matchColumns)
		},
	}

	cmd.Flags().StringSliceVar(&ales, "ale", nil, "ALE file(s) to match against")
	return cmd
}
