package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelforge/internal/media/ffprobe"
	"reelforge/internal/reframe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var aspect string

	cmd := &cobra.Command{
		Use:   "probe SOURCE...",
		Short: "Inspect source videos and preview their reframe geometry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target, err := reframe.LookupTarget(aspect)
			if err != nil {
				return err
			}
			inspector := ffprobe.New(cfg.Tools.FFprobe)

			rows := make([][]string, 0, len(args))
			for _, path := range args {
				descriptor, err := inspector.Describe(cmd.Context(), path)
				if err != nil {
					return err
				}
				plan, err := reframe.Compute(descriptor.Width, descriptor.Height, target, reframe.ModeFill)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					path,
					fmt.Sprintf("%.1fs", descriptor.DurationSeconds),
					fmt.Sprintf("%dx%d", descriptor.Width, descriptor.Height),
					plan.Chain().String(),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Source", "Duration", "Dimensions", "Reframe"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&aspect, "aspect", "vertical_portrait", "Target aspect preset for the reframe preview")
	return cmd
}
