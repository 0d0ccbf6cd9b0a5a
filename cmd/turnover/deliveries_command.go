package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/matching"
)

type delivery struct {
	File  string   `json:"file"`
	Codes []string `json:"codes"`
}

func newDeliveriesCommand(ctx *commandContext) *cobra.Command {
	var timelines []string

	cmd := &cobra.Command{
		Use:   "deliveries DIR --timeline FILE",
		Short: "Match delivered vendor files to shot codes by filename",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(timelines) == 0 {
				return errors.New("--timeline is required")
			}
			shots, err := ctx.loadShots(timelines)
			if err != nil {
				return err
			}
			codes := make([]string, 0, len(shots))
			for _, s := range shots {
				codes = append(codes, s.Code)
			}

			entries, err := os.ReadDir(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var out []delivery
			for _, e := range entries {
				if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
					continue
				}
				out = append(out, delivery{File: e.Name(), Codes: matching.CodesInFilename(e.Name(), codes)})
			}

			if ctx.wantJSON() {
				return writeJSON(cmd, out)
			}
			return writeTable(cmd, out, deliveryColumns)
		},
	}

	cmd.Flags().StringSliceVarP(&timelines, "timeline", "t", nil, "Timeline file(s) holding the shot codes")
	return cmd
}
