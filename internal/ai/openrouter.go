package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rkirkendall/nano-canvas/internal/media"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterOptions configures the OpenRouter backend.
type OpenRouterOptions struct {
	APIKey  string
	BaseURL string
	Site    string
	Title   string
	// Model, when set, replaces every requested model.
	Model string
}

// OpenRouter reaches Gemini image models through OpenRouter's
// OpenAI-compatible chat/completions endpoint.
type OpenRouter struct {
	client   openai.Client
	override string
}

func NewOpenRouter(opts OpenRouterOptions) *OpenRouter {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = defaultOpenRouterBaseURL
	}
	site := strings.TrimSpace(opts.Site)
	if site == "" {
		site = "http://localhost"
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "nano-canvas"
	}
	client := openai.NewClient(
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(strings.TrimRight(base, "/")+"/"),
		option.WithHeader("HTTP-Referer", site),
		option.WithHeader("X-Title", title),
		option.WithMaxRetries(0),
	)
	return &OpenRouter{client: client, override: strings.TrimSpace(opts.Model)}
}

func (o *OpenRouter) mapModel(model string) string {
	if o.override != "" {
		return o.override
	}
	return mapModelForOpenRouter(model)
}

func mapModelForOpenRouter(model string) string {
	m := strings.TrimSpace(model)
	if m == "" {
		return "google/gemini-2.5-flash-image-preview"
	}
	m = strings.TrimPrefix(m, "models/")
	if strings.Contains(m, "/") {
		return m
	}
	return "google/" + m
}

func (o *OpenRouter) GenerateImages(ctx context.Context, req ImageRequest) ([]media.Image, error) {
	content := []any{map[string]any{"type": "text", "text": req.Prompt}}
	extra := map[string]any{}
	if req.AspectRatio != "" {
		extra["image_config"] = map[string]any{"aspect_ratio": req.AspectRatio}
	}
	m, err := o.chat(ctx, req.Model, content, extra)
	if err != nil {
		return nil, err
	}
	var out []media.Image
	for _, p := range partsFromChatJSON(m) {
		if ip, ok := p.(ImagePart); ok {
			out = append(out, ip.Image)
		}
	}
	if req.Count > 0 && len(out) > req.Count {
		out = out[:req.Count]
	}
	return out, nil
}

func (o *OpenRouter) GenerateContent(ctx context.Context, req ContentRequest) ([]Part, error) {
	content := make([]any, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch p := p.(type) {
		case TextPart:
			content = append(content, map[string]any{"type": "text", "text": p.Text})
		case ImagePart:
			content = append(content, map[string]any{
				"type":      "image_url",
				"image_url": map[string]any{"url": p.Image.DataURI()},
			})
		}
	}
	m, err := o.chat(ctx, req.Model, content, nil)
	if err != nil {
		return nil, err
	}
	return partsFromChatJSON(m), nil
}

func (o *OpenRouter) chat(ctx context.Context, model string, content []any, extra map[string]any) (map[string]any, error) {
	body := map[string]any{
		"model":      o.mapModel(model),
		"messages":   []any{map[string]any{"role": "user", "content": content}},
		"modalities": []string{"image", "text"},
	}
	for k, v := range extra {
		body[k] = v
	}
	var m map[string]any
	if err := o.client.Post(ctx, "chat/completions", body, &m); err != nil {
		return nil, err
	}
	if errObj, ok := m["error"].(map[string]any); ok {
		if msg, _ := errObj["message"].(string); strings.TrimSpace(msg) != "" {
			return nil, errors.New(msg)
		}
		return nil, errors.New("OpenRouter returned an error")
	}
	return m, nil
}

// partsFromChatJSON walks the first choice's message: textual or structured
// content first, then any images attached alongside it.
func partsFromChatJSON(m map[string]any) []Part {
	choices, _ := m["choices"].([]any)
	if len(choices) == 0 {
		return nil
	}
	ch, _ := choices[0].(map[string]any)
	msg, _ := ch["message"].(map[string]any)
	if msg == nil {
		return nil
	}
	var out []Part
	switch c := msg["content"].(type) {
	case string:
		if img, ok := imageFromURL(c); ok {
			out = append(out, ImagePart{Image: img})
		} else if strings.TrimSpace(c) != "" {
			out = append(out, TextPart{Text: c})
		}
	case []any:
		for _, p := range c {
			pobj, _ := p.(map[string]any)
			if pobj == nil {
				continue
			}
			switch t, _ := pobj["type"].(string); t {
			case "text", "output_text":
				if s, _ := pobj["text"].(string); s != "" {
					out = append(out, TextPart{Text: s})
				}
			case "image_url", "image", "output_image":
				if img, ok := imageFromObject(pobj); ok {
					out = append(out, ImagePart{Image: img})
				}
			}
		}
	}
	if imgs, _ := msg["images"].([]any); len(imgs) > 0 {
		for _, im := range imgs {
			if obj, _ := im.(map[string]any); obj != nil {
				if img, ok := imageFromObject(obj); ok {
					out = append(out, ImagePart{Image: img})
				}
			}
		}
	}
	return out
}

// imageFromObject understands the shapes providers use for image parts:
// image_url{url}, image{b64_json|b64|url}, or a bare b64_json.
func imageFromObject(obj map[string]any) (media.Image, bool) {
	if iu, ok := obj["image_url"].(map[string]any); ok {
		if u, _ := iu["url"].(string); u != "" {
			return imageFromURL(u)
		}
	}
	if img, ok := obj["image"].(map[string]any); ok {
		if b, ok := imageFromB64(img); ok {
			return b, true
		}
		if u, _ := img["url"].(string); u != "" {
			return imageFromURL(u)
		}
	}
	return imageFromB64(obj)
}

func imageFromB64(obj map[string]any) (media.Image, bool) {
	for _, k := range []string{"b64_json", "b64"} {
		if s, _ := obj[k].(string); s != "" {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil || len(b) == 0 {
				return media.Image{}, false
			}
			mime, _ := obj["mime_type"].(string)
			if mime == "" {
				mime = media.PNG
			}
			return media.Image{Data: b, MIMEType: mime}, true
		}
	}
	return media.Image{}, false
}

func imageFromURL(u string) (media.Image, bool) {
	if !strings.HasPrefix(u, "data:") {
		return media.Image{}, false
	}
	img, err := media.ParseDataURI(u)
	if err != nil || img.Empty() {
		return media.Image{}, false
	}
	return img, true
}
