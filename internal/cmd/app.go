package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rkirkendall/nano-canvas/internal/ai"
	"github.com/rkirkendall/nano-canvas/internal/cache"
	"github.com/rkirkendall/nano-canvas/internal/config"
	"github.com/rkirkendall/nano-canvas/internal/edit"
	"github.com/rkirkendall/nano-canvas/internal/generate"
	"github.com/rkirkendall/nano-canvas/internal/logging"
	"github.com/rkirkendall/nano-canvas/internal/media"
	"github.com/rkirkendall/nano-canvas/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app is everything a command needs to talk to the model.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	builder *edit.Builder
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	svc, err := ai.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	if cfg.Redis.Enabled {
		store := cache.NewRedisStore(cfg.Redis)
		if err := store.Ping(ctx); err != nil {
			log.Warn("redis connection failed, cache disabled", zap.Error(err))
			_ = store.Close()
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
			svc = cache.Wrap(svc, store, log)
			a.closers = append(a.closers, store.Close)
		}
	}
	log.Debug("service ready",
		zap.String("provider", cfg.Provider),
		zap.String("generation_model", cfg.Model.Generation),
		zap.String("editing_model", cfg.Model.Editing))
	a.builder = edit.NewBuilder(svc, edit.Models{Generation: cfg.Model.Generation, Editing: cfg.Model.Editing})
	a.builder.SetMaxSide(cfg.Canvas.MaxSide)
	return a, nil
}

func (a *app) session() *session.Session {
	s := session.New(a.builder, a.log)
	s.SetMaxSide(a.cfg.Canvas.MaxSide)
	s.SetMaskBrush(a.cfg.Brush.Mask)
	s.SetSketchBrush(a.cfg.Brush.Sketch)
	return s
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
	logging.Sync(a.log)
}

// run wraps a command body with app setup and teardown.
func run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// outcome reports a finished session operation: on success the image is
// written to output and any model text printed; on failure the user
// message is returned as the error.
func outcome(cmd *cobra.Command, s *session.Session, opErr error, output string) error {
	if opErr != nil {
		var eerr *edit.EditError
		if errors.As(opErr, &eerr) && eerr.Text != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Model response:", eerr.Text)
		}
		if msg := s.Err(); msg != "" {
			return errors.New(msg)
		}
		return opErr
	}
	res := s.Result()
	img, err := media.ParseDataURI(res.ImageURL)
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	path := outputPath(output, img.MIMEType)
	if err := media.Save(path, res.ImageURL); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Image saved at: %s\n", path)
	if strings.TrimSpace(res.Text) != "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Model response:", res.Text)
	}
	return nil
}

// outputPath adds the extension matching mime when output has none.
func outputPath(output, mime string) string {
	if output == "" {
		output = "output"
	}
	if filepath.Ext(output) == "" {
		output += media.Extension(mime)
	}
	return output
}

// instruction joins the prompt with the contents of fragment files.
func instruction(prompt string, fragments []string) (string, error) {
	frags := make([]string, 0, len(fragments))
	for _, f := range fragments {
		switch strings.ToLower(filepath.Ext(f)) {
		case ".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp":
			return "", fmt.Errorf("--fragment expects text files; got image file: %s", f)
		}
		b, err := os.ReadFile(f)
		if err != nil {
			return "", fmt.Errorf("fragment not found: %s", f)
		}
		frags = append(frags, string(b))
	}
	return generate.BuildEffectivePrompt(prompt, frags), nil
}

// upload reads an image file into s.
func upload(s *session.Session, path string) error {
	if path == "" {
		return nil
	}
	img, err := media.ReadFile(path)
	if err != nil {
		return fmt.Errorf("image not found: %s", path)
	}
	return s.Upload(img)
}
