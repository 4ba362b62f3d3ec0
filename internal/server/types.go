package server

import (
	"github.com/rkirkendall/nano-canvas/internal/canvas"
	"github.com/rkirkendall/nano-canvas/internal/edit"
)

// Response is the envelope of every API answer.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *edit.Result `json:"data,omitempty"`
}

type GenerateRequest struct {
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	Quality     string `json:"quality"`
	AspectRatio string `json:"aspectRatio"`
}

type EditRequest struct {
	Prompt   string   `json:"prompt"`
	Image    string   `json:"image"`
	Creative bool     `json:"creative"`
	Strength *float64 `json:"strength"`
}

// InpaintRequest carries the strokes drawn over the displayed image; the
// mask is synthesised server-side at the image's native size.
type InpaintRequest struct {
	Prompt string          `json:"prompt"`
	Image  string          `json:"image"`
	Mask   *canvas.Drawing `json:"mask"`
}

type RemoveBackgroundRequest struct {
	Image string `json:"image"`
}

type SketchRequest struct {
	Prompt string          `json:"prompt"`
	Sketch *canvas.Drawing `json:"sketch"`
}
