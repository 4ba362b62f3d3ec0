package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

type Config struct {
	Provider   string           `mapstructure:"provider"`
	Model      ModelConfig      `mapstructure:"model"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Brush      BrushConfig      `mapstructure:"brush"`
	Canvas     CanvasConfig     `mapstructure:"canvas"`
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
}

type ModelConfig struct {
	Generation string `mapstructure:"generation"`
	Editing    string `mapstructure:"editing"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Site    string `mapstructure:"site"`
	Title   string `mapstructure:"title"`
	// Model overrides both configured models when set.
	Model string `mapstructure:"model"`
}

// BrushConfig holds default brush sizes. The mask brush is in native image
// pixels, the sketch brush in surface pixels.
type BrushConfig struct {
	Mask   float64 `mapstructure:"mask"`
	Sketch float64 `mapstructure:"sketch"`
}

// CanvasConfig bounds the surfaces a request may allocate. MaxSide applies
// to uploaded images, overlays and sketch pads alike.
type CanvasConfig struct {
	MaxSide int `mapstructure:"max_side"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model.generation", "imagen-4.0-generate-001")
	v.SetDefault("model.editing", "gemini-2.5-flash-image-preview")

	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.site", "http://localhost")
	v.SetDefault("openrouter.title", "nano-canvas")

	v.SetDefault("brush.mask", 40)
	v.SetDefault("brush.sketch", 10)
	v.SetDefault("canvas.max_side", 4096)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	// Model calls are not cancelled client-side, so the write timeout is generous.
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.max_body_bytes", 32<<20)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("log.mode", "debug")

	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "API_KEY")
	_ = v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("openrouter.base_url", "OPENROUTER_BASE_URL")
	_ = v.BindEnv("openrouter.site", "OPENROUTER_SITE")
	_ = v.BindEnv("openrouter.title", "OPENROUTER_TITLE")
	_ = v.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	v.SetEnvPrefix("NANO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a Config. USE_OPENROUTER=1 forces the OpenRouter
// provider.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if isTruthy(os.Getenv("USE_OPENROUTER")) {
		cfg.Provider = ProviderOpenRouter
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadFile reads an explicit config file, or $HOME/.nano-canvas.yaml when
// path is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".nano-canvas")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderGemini, ProviderOpenRouter)
	}
	if c.Brush.Mask <= 0 || c.Brush.Sketch <= 0 {
		return errors.New("brush sizes must be positive")
	}
	if c.Canvas.MaxSide <= 0 {
		return errors.New("canvas.max_side must be positive")
	}
	return nil
}

// RequireAPIKey reports a missing credential for the selected provider.
func (c *Config) RequireAPIKey() error {
	switch c.Provider {
	case ProviderOpenRouter:
		if strings.TrimSpace(c.OpenRouter.APIKey) == "" {
			return errors.New("OPENROUTER_API_KEY is required when USE_OPENROUTER=1")
		}
	default:
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			return errors.New("GEMINI_API_KEY is not set; get one at https://aistudio.google.com/apikey and export GEMINI_API_KEY before running")
		}
	}
	return nil
}

func isTruthy(v string) bool {
	v = strings.TrimSpace(v)
	return v == "1" || strings.EqualFold(v, "true")
}
