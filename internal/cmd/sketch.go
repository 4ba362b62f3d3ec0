package cmd

import (
	"context"

	"github.com/rkirkendall/nano-canvas/internal/canvas"
	"github.com/rkirkendall/nano-canvas/internal/session"
	"github.com/spf13/cobra"
)

func newSketchCmd() *cobra.Command {
	var (
		sketchFile string
		prompt     string
		fragments  []string
		output     string
		brush      float64
	)
	cmd := &cobra.Command{
		Use:   "sketch",
		Short: "Turn a sketch into a photorealistic image",
		Long:  "Replay a drawing document onto a blank sketch pad and ask the model to turn it into a finished image.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := instruction(prompt, fragments)
			if err != nil {
				return err
			}
			var drawing *canvas.Drawing
			if sketchFile != "" {
				if drawing, err = canvas.ReadDrawingFile(sketchFile); err != nil {
					return err
				}
				if brush > 0 {
					drawing.Brush = brush
				}
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				s := a.session()
				s.SelectTool(session.ToolSketch)
				if drawing != nil {
					if _, err := s.DrawSketch(drawing); err != nil {
						return err
					}
				}
				return outcome(cmd, s, s.SketchToImage(ctx, text), output)
			})
		},
		Example: `nano-canvas sketch --sketch house.json --prompt "a cosy cottage at dusk" -o cottage`,
	}
	cmd.Flags().StringVarP(&sketchFile, "sketch", "s", "", "Drawing document (JSON) with the sketch strokes (required)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "What the sketch should become (required)")
	cmd.Flags().StringSliceVarP(&fragments, "fragment", "f", []string{}, "One or more text files to append to the description")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path to save the image")
	cmd.Flags().Float64Var(&brush, "brush", 0, "Sketch brush size in pad pixels (default from config)")
	return cmd
}

func init() { rootCmd.AddCommand(newSketchCmd()) }
