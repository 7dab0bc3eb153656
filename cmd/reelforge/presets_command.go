package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelforge/internal/motion"
	"reelforge/internal/overlay"
	"reelforge/internal/reframe"
)

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "presets",
		Short:       "List aspect, style, and motion presets",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			aspectRows := make([][]string, 0)
			for _, target := range reframe.Targets() {
				aspectRows = append(aspectRows, []string{
					target.Name,
					strconv.Itoa(target.Width) + "x" + strconv.Itoa(target.Height),
					fmt.Sprintf("%.3f", target.Ratio()),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Aspect", "Frame", "Ratio"},
				aspectRows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))

			styleRows := make([][]string, 0)
			for _, name := range overlay.StyleNames() {
				style, err := overlay.LookupStyle(name)
				if err != nil {
					return err
				}
				glow := ""
				if style.Glow {
					glow = "glow"
				}
				styleRows = append(styleRows, []string{
					style.Name,
					strconv.Itoa(style.BaseSize),
					style.FontColor,
					glow,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Style", "Base size", "Color", "Effect"},
				styleRows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))

			directionRows := make([][]string, 0)
			for _, direction := range motion.Directions() {
				kind := "pan"
				if direction.IsZoom() {
					kind = "zoom"
				}
				directionRows = append(directionRows, []string{direction.String(), kind})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Direction", "Kind"},
				directionRows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
