package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rkirkendall/nano-canvas/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the image operations over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(cmd, func(_ context.Context, a *app) error {
				return server.New(a.cfg, a.builder, a.log).Run(ctx)
			})
		},
		Example: `nano-canvas serve --addr :8080`,
	}
	cmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().String("mode", "", "gin mode: debug, release or test")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.mode", cmd.Flags().Lookup("mode"))
	return cmd
}

func init() { rootCmd.AddCommand(newServeCmd()) }
