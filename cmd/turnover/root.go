package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/config"
)

func newRootCommand() *cobra.Command {
	var fpsFlag float64
	var jsonFlag bool
	var projectFlag string

	ctx := newCommandContext(&fpsFlag, &jsonFlag, &projectFlag)

	rootCmd := &cobra.Command{
		Use:           "turnover",
		Short:         "Inspect and convert editorial interchange files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig(cmd.ErrOrStderr())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Float64Var(&fpsFlag, "fps", 0, "Frame rate for files that carry none (default from config)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print JSON instead of a table")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "Project id stamped on source media records")

	rootCmd.AddCommand(newParseCommand(ctx))
	rootCmd.AddCommand(newShotsCommand(ctx))
	rootCmd.AddCommand(newMarkersCommand(ctx))
	rootCmd.AddCommand(newSourceMediaCommand(ctx))
	rootCmd.AddCommand(newMatchCommand(ctx))
	rootCmd.AddCommand(newCDLCommand(ctx))
	rootCmd.AddCommand(newDeliveriesCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "turnover %s (%s)\n", config.Version, config.GitCommit)
			return err
		},
	})

	return rootCmd
}
