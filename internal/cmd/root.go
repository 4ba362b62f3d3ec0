package cmd

import (
	"fmt"
	"os"

	"github.com/rkirkendall/nano-canvas/internal/config"
	"github.com/rkirkendall/nano-canvas/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	versionFlag bool

	rootCmd = &cobra.Command{
		Use:   "nano-canvas",
		Short: "Nano Canvas: image generation and editing with Gemini",
		Long: "Nano Canvas generates images from text, edits and inpaints uploaded images, removes backgrounds " +
			"and turns sketches into pictures using Google's Gemini image models, directly or through OpenRouter.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionFlag {
				fmt.Fprintln(cmd.OutOrStdout(), version.Version)
				return nil
			}
			return cmd.Help()
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nano-canvas.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "Model provider: gemini or openrouter")
	rootCmd.PersistentFlags().String("log-mode", "", "Logger mode: debug or release")
	rootCmd.PersistentFlags().String("generation-model", "", "Model used for text-to-image")
	rootCmd.PersistentFlags().String("editing-model", "", "Model used for edit, inpaint, remove-bg and sketch")
	_ = viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("log.mode", rootCmd.PersistentFlags().Lookup("log-mode"))
	_ = viper.BindPFlag("model.generation", rootCmd.PersistentFlags().Lookup("generation-model"))
	_ = viper.BindPFlag("model.editing", rootCmd.PersistentFlags().Lookup("editing-model"))

	rootCmd.Flags().BoolVarP(&versionFlag, "version", "v", false, "Print version and exit")
}

func initConfig() {
	// .env only fills variables the shell has not set
	config.LoadDotEnv(".env")
	config.SetDefaults(viper.GetViper())
	if err := config.ReadFile(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
