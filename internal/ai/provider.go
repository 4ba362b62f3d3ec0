package ai

import (
	"context"

	"github.com/rkirkendall/nano-canvas/internal/config"
)

// NewService builds the backend selected by cfg.Provider.
func NewService(ctx context.Context, cfg *config.Config) (Service, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	if cfg.Provider == config.ProviderOpenRouter {
		return NewOpenRouter(OpenRouterOptions{
			APIKey:  cfg.OpenRouter.APIKey,
			BaseURL: cfg.OpenRouter.BaseURL,
			Site:    cfg.OpenRouter.Site,
			Title:   cfg.OpenRouter.Title,
			Model:   cfg.OpenRouter.Model,
		}), nil
	}
	g, err := NewGemini(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return nil, err
	}
	return g, nil
}
