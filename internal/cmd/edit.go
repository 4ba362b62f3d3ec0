package cmd

import (
	"context"
	"fmt"

	"github.com/rkirkendall/nano-canvas/internal/canvas"
	"github.com/rkirkendall/nano-canvas/internal/session"
	"github.com/spf13/cobra"
)

func newEditCmd() *cobra.Command {
	var (
		image     string
		prompt    string
		fragments []string
		output    string
		creative  bool
		strength  float64
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit an image with a natural-language instruction",
		Long:  "Edit an uploaded image. --strength picks a subtle (<0.3), moderate (<0.7) or significant change; --creative asks for a looser interpretation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strength < 0 || strength > 1 {
				return fmt.Errorf("--strength must be between 0 and 1, got %v", strength)
			}
			text, err := instruction(prompt, fragments)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				s := a.session()
				if err := upload(s, image); err != nil {
					return err
				}
				s.SetSettings(session.Settings{Creative: creative, Strength: strength})
				return outcome(cmd, s, s.Edit(ctx, text), output)
			})
		},
		Example: `nano-canvas edit --image photo.jpg --prompt "make it golden hour" --strength 0.8 --creative -o edited`,
	}
	cmd.Flags().StringVarP(&image, "image", "i", "", "Path to the image to edit (required)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Editing instruction (required)")
	cmd.Flags().StringSliceVarP(&fragments, "fragment", "f", []string{}, "One or more text files to append to the instruction")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path to save the edited image")
	cmd.Flags().BoolVar(&creative, "creative", false, "Apply a highly creative and dramatic interpretation")
	cmd.Flags().Float64Var(&strength, "strength", session.DefaultStrength, "Edit strength from 0 to 1")
	return cmd
}

func newInpaintCmd() *cobra.Command {
	var (
		image     string
		prompt    string
		fragments []string
		output    string
		maskFile  string
		brush     float64
	)
	cmd := &cobra.Command{
		Use:   "inpaint",
		Short: "Repaint the masked area of an image",
		Long: "Replay the strokes of a drawing document over the displayed image, synthesize a black and white mask " +
			"at the image's native size and ask the model to repaint only the white area.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := instruction(prompt, fragments)
			if err != nil {
				return err
			}
			var drawing *canvas.Drawing
			if maskFile != "" {
				if drawing, err = canvas.ReadDrawingFile(maskFile); err != nil {
					return err
				}
				if brush > 0 {
					drawing.Brush = brush
				}
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				s := a.session()
				if err := upload(s, image); err != nil {
					return err
				}
				s.ToggleInpaint()
				if drawing != nil && image != "" {
					if _, err := s.DrawMask(drawing); err != nil {
						return err
					}
				}
				return outcome(cmd, s, s.Inpaint(ctx, text), output)
			})
		},
		Example: `nano-canvas inpaint --image photo.png --mask strokes.json --prompt "add a hat" -o hat.png`,
	}
	cmd.Flags().StringVarP(&image, "image", "i", "", "Path to the image to inpaint (required)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Description of what to paint in the masked area (required)")
	cmd.Flags().StringSliceVarP(&fragments, "fragment", "f", []string{}, "One or more text files to append to the description")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path to save the inpainted image")
	cmd.Flags().StringVarP(&maskFile, "mask", "m", "", "Drawing document (JSON) with the mask strokes (required)")
	cmd.Flags().Float64Var(&brush, "brush", 0, "Mask brush size in native image pixels (default from config)")
	return cmd
}

func newRemoveBgCmd() *cobra.Command {
	var (
		image  string
		output string
	)
	cmd := &cobra.Command{
		Use:     "remove-bg",
		Aliases: []string{"remove-background"},
		Short:   "Remove the background of an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				s := a.session()
				if err := upload(s, image); err != nil {
					return err
				}
				return outcome(cmd, s, s.RemoveBackground(ctx), output)
			})
		},
		Example: `nano-canvas remove-bg --image product.jpg -o product.png`,
	}
	cmd.Flags().StringVarP(&image, "image", "i", "", "Path to the image (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path to save the result")
	return cmd
}

func init() {
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newInpaintCmd())
	rootCmd.AddCommand(newRemoveBgCmd())
}
