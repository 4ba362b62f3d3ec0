package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rkirkendall/nano-canvas/internal/media"
	"google.golang.org/genai"
)

const defaultGeminiImageModel = "models/gemini-2.5-flash-image-preview"

// mapModelForGemini normalizes model names for the native Gemini SDK.
// Accepts inputs like:
//   - "gemini-2.5-flash-image-preview:free"
//   - "google/gemini-2.5-flash-image-preview"
//   - "models/imagen-4.0-generate-001"
//
// and returns a resource name like "models/gemini-2.5-flash-image-preview".
func mapModelForGemini(model string) string {
	m := strings.TrimSpace(model)
	if m == "" {
		return defaultGeminiImageModel
	}
	if strings.HasPrefix(m, "models/") {
		return m
	}
	m = strings.TrimPrefix(m, "google/")
	if i := strings.IndexByte(m, ':'); i >= 0 {
		m = m[:i]
	}
	return "models/" + m
}

// Gemini talks to the Gemini API through the official SDK.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini API client authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) GenerateImages(ctx context.Context, req ImageRequest) ([]media.Image, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: int32(max(req.Count, 1)),
		OutputMIMEType: req.OutputMIMEType,
		AspectRatio:    req.AspectRatio,
	}
	res, err := g.client.Models.GenerateImages(ctx, mapModelForGemini(req.Model), req.Prompt, cfg)
	if err != nil {
		return nil, err
	}
	return imagesFromGenai(res, req.OutputMIMEType), nil
}

func (g *Gemini) GenerateContent(ctx context.Context, req ContentRequest) ([]Part, error) {
	contents := []*genai.Content{genai.NewContentFromParts(toGenaiParts(req.Parts), genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	res, err := g.client.Models.GenerateContent(ctx, mapModelForGemini(req.Model), contents, cfg)
	if err != nil {
		return nil, err
	}
	return partsFromGenai(res), nil
}

func toGenaiParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case TextPart:
			out = append(out, genai.NewPartFromText(p.Text))
		case ImagePart:
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: p.Image.MIMEType, Data: p.Image.Data}})
		default:
			panic(fmt.Sprintf("ai: unknown part type %T", p))
		}
	}
	return out
}

// partsFromGenai flattens the first candidate. Text wins over inline data
// when a part carries both, and inline data needs bytes and a MIME type.
func partsFromGenai(res *genai.GenerateContentResponse) []Part {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil
	}
	var out []Part
	for _, part := range res.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		switch {
		case part.Text != "":
			out = append(out, TextPart{Text: part.Text})
		case part.InlineData != nil && len(part.InlineData.Data) > 0 && part.InlineData.MIMEType != "":
			out = append(out, ImagePart{Image: media.Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}})
		}
	}
	return out
}

func imagesFromGenai(res *genai.GenerateImagesResponse, fallbackMIME string) []media.Image {
	if res == nil {
		return nil
	}
	var out []media.Image
	for _, gi := range res.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mime := gi.Image.MIMEType
		if mime == "" {
			mime = fallbackMIME
		}
		out = append(out, media.Image{Data: gi.Image.ImageBytes, MIMEType: mime})
	}
	return out
}
