package main

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/assembler"
	"reelforge/internal/textutil"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		output       string
		aspect       string
		tier         string
		duration     float64
		texts        []string
		handle       string
		style        string
		textMotion   string
		cueSeconds   float64
		panStrategy  string
		panDirection string
		easing       string
		intro        string
		introLength  float64
		audio        string
		audioVolume  float64
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "create SOURCE...",
		Short: "Build a montage from one or more source videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(output) == "" {
				output = defaultOutputName(args[0], aspect)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			opts := []assembler.Option{assembler.WithLogger(logger)}
			if seed != 0 {
				opts = append(opts, assembler.WithRand(rand.New(rand.NewSource(seed))))
			}
			a := assembler.New(cfg, opts...)

			result, err := a.Assemble(cmd.Context(), assembler.Request{
				Sources:         args,
				OutputPath:      output,
				AspectName:      aspect,
				Tier:            tier,
				DurationSeconds: duration,
				Texts:           texts,
				Handle:          handle,
				StyleName:       style,
				TextMotionName:  textMotion,
				CueSeconds:      cueSeconds,
				PanStrategy:     panStrategy,
				PanDirection:    panDirection,
				EasingName:      easing,
				IntroPath:       intro,
				IntroSeconds:    introLength,
				AudioPath:       audio,
				AudioVolume:     audioVolume,
				Seed:            seed,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Montage written to %s (%.1fs, %d segments)\n",
				result.OutputPath, result.DurationSeconds, result.SegmentCount)
			if result.UsedFallback {
				fmt.Fprintln(out, "Note: built via single-pass fallback composite")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination path for the montage (default derived from the first source)")
	cmd.Flags().StringVar(&aspect, "aspect", "vertical_portrait", "Target aspect preset")
	cmd.Flags().StringVar(&tier, "segments", "some", "Segment count tier: few, some, or lots")
	cmd.Flags().Float64Var(&duration, "duration", 30, "Montage length in seconds")
	cmd.Flags().StringArrayVar(&texts, "text", nil, "Caption shown in sequence (repeatable)")
	cmd.Flags().StringVar(&handle, "handle", "", "Account handle shown repeatedly across the montage")
	cmd.Flags().StringVar(&style, "style", "default", "Text style preset")
	cmd.Flags().StringVar(&textMotion, "text-motion", "none", "Text motion: none or bounce")
	cmd.Flags().Float64Var(&cueSeconds, "text-duration", 0, "Seconds each caption stays on screen (default: one segment)")
	cmd.Flags().StringVar(&panStrategy, "pan", "sequence", "Camera motion strategy: sequence, random, fixed, or none")
	cmd.Flags().StringVar(&panDirection, "pan-direction", "", "Direction for the fixed pan strategy")
	cmd.Flags().StringVar(&easing, "easing", "ease_in_out", "Motion easing: linear, ease_in, ease_out, or ease_in_out")
	cmd.Flags().StringVar(&intro, "intro", "", "Clip placed before the montage")
	cmd.Flags().Float64Var(&introLength, "intro-duration", 0, "Seconds of the intro clip to keep (default 5)")
	cmd.Flags().StringVar(&audio, "audio", "", "Audio bed mixed under the montage")
	cmd.Flags().Float64Var(&audioVolume, "audio-volume", 1.0, "Volume applied to the audio bed")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for reproducible segment choices")

	return cmd
}

// defaultOutputName derives a montage filename from the first source and the
// aspect preset, sanitized for the filesystem.
func defaultOutputName(source, aspect string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	name := textutil.SanitizeFileName(base)
	if name == "" {
		name = "montage"
	}
	return name + "_" + textutil.SanitizeToken(aspect) + ".mp4"
}
