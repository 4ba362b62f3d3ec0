package cmd

import (
	"context"

	"github.com/rkirkendall/nano-canvas/internal/edit"
	"github.com/rkirkendall/nano-canvas/internal/generate"
	"github.com/rkirkendall/nano-canvas/internal/session"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		prompt      string
		fragments   []string
		output      string
		style       string
		quality     string
		aspectRatio string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an image from a text prompt",
		Long:  "Generate an image from a text prompt decorated with a style and quality, at the requested aspect ratio.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := generate.ParseStyle(style)
			if err != nil {
				return err
			}
			q, err := generate.ParseQuality(quality)
			if err != nil {
				return err
			}
			ar, err := generate.ParseAspectRatio(aspectRatio)
			if err != nil {
				return err
			}
			text, err := instruction(prompt, fragments)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				s := a.session()
				s.SelectTool(session.ToolGenerate)
				err := s.Generate(ctx, text, edit.GenerateOptions{Style: st, Quality: q, AspectRatio: ar})
				return outcome(cmd, s, err, output)
			})
		},
		Example: `nano-canvas generate --prompt "a red fox in the snow" --style anime --quality hd --aspect-ratio 16:9 -o fox.jpg`,
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Text prompt describing the image (required)")
	cmd.Flags().StringSliceVarP(&fragments, "fragment", "f", []string{}, "One or more text files to append to the prompt")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path to save the image (extension added when missing)")
	cmd.Flags().StringVar(&style, "style", "realistic", "Style: realistic, anime or fantasy")
	cmd.Flags().StringVar(&quality, "quality", "standard", "Quality: standard or hd")
	cmd.Flags().StringVar(&aspectRatio, "aspect-ratio", "1:1", "Aspect ratio: 1:1, 9:16 or 16:9")
	return cmd
}

func init() { rootCmd.AddCommand(newGenerateCmd()) }
