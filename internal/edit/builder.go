package edit

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/rkirkendall/nano-canvas/internal/ai"
	"github.com/rkirkendall/nano-canvas/internal/canvas"
	"github.com/rkirkendall/nano-canvas/internal/generate"
	"github.com/rkirkendall/nano-canvas/internal/media"
)

// GeneratedMIMEType is the output format requested from text-to-image.
const GeneratedMIMEType = "image/jpeg"

// Models names the model used for each call kind.
type Models struct {
	Generation string
	Editing    string
}

// Layer is a drawn overlay together with its has-content flag.
type Layer struct {
	Surface    *canvas.Surface
	HasContent bool
}

// LayerOf copies the renderer's surface and flag, so later strokes do not
// reach a request already being built.
func LayerOf(r *canvas.StrokeRenderer) Layer {
	if r == nil {
		return Layer{}
	}
	return Layer{Surface: r.Surface().Clone(), HasContent: r.HasContent()}
}

func (l Layer) drawn() bool { return l.Surface != nil && l.HasContent }

// GenerateOptions are the text-to-image tags.
type GenerateOptions struct {
	Style       generate.Style
	Quality     generate.Quality
	AspectRatio string
}

// Builder turns user actions into model requests. It holds no per-session
// state; callers serialise operations themselves.
type Builder struct {
	svc     ai.Service
	models  Models
	maxSide int
}

func NewBuilder(svc ai.Service, models Models) *Builder {
	return &Builder{svc: svc, models: models, maxSide: canvas.MaxSide}
}

// SetMaxSide bounds the native size a mask may be synthesised at. Call it
// before the builder is shared.
func (b *Builder) SetMaxSide(n int) { b.maxSide = n }

// Generate creates an image from prompt and returns it as a data URI.
func (b *Builder) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if blank(prompt) {
		return "", invalid(OpGenerate, "Please enter a prompt.")
	}
	aspect := opts.AspectRatio
	if aspect == "" {
		aspect = generate.AspectSquare
	}
	req := ai.ImageRequest{
		Model:          b.models.Generation,
		Prompt:         generate.DecoratePrompt(prompt, opts.Style, opts.Quality),
		Count:          1,
		OutputMIMEType: GeneratedMIMEType,
		AspectRatio:    aspect,
	}
	res, err := b.send(ctx, OpGenerate, func(ctx context.Context) ([]ai.Part, error) {
		imgs, err := b.svc.GenerateImages(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(imgs) == 0 {
			return nil, nil
		}
		return []ai.Part{ai.Inline(imgs[0])}, nil
	})
	if err != nil {
		return "", err
	}
	return res.ImageURL, nil
}

// Edit applies a free-form instruction to original. strength in [0,1]
// selects how strongly the model should change the image.
func (b *Builder) Edit(ctx context.Context, instruction string, original media.Image, creative bool, strength float64) (Result, error) {
	if blank(instruction) {
		return Result{}, invalid(OpEdit, "Please enter an editing instruction.")
	}
	if original.Empty() {
		return Result{}, invalid(OpEdit, "Please upload an image to edit.")
	}
	return b.content(ctx, OpEdit,
		ai.Inline(original),
		ai.Text(generate.EditInstruction(instruction, strength, creative)),
	)
}

// Inpaint repaints the masked region of original. native is the original's
// pixel size; when zero it is read from the image header.
func (b *Builder) Inpaint(ctx context.Context, instruction string, original media.Image, native image.Point, mask Layer) (Result, error) {
	if blank(instruction) {
		return Result{}, invalid(OpInpaint, "Please enter a description for the area to inpaint.")
	}
	if original.Empty() {
		return Result{}, invalid(OpInpaint, "Please upload an image first.")
	}
	if !mask.drawn() {
		return Result{}, invalid(OpInpaint, "Please mask an area on the image to inpaint.")
	}
	if native.X <= 0 || native.Y <= 0 {
		sz, err := original.Size()
		if err != nil {
			return Result{}, invalid(OpInpaint, "Could not create the inpainting mask.")
		}
		native = sz
	}
	if err := canvas.CheckSize(native.X, native.Y, b.maxSide); err != nil {
		return Result{}, invalid(OpInpaint, "The image is too large to inpaint.")
	}
	payload, err := canvas.MaskPayload(mask.Surface, native)
	if err != nil {
		return Result{}, invalid(OpInpaint, "Could not create the inpainting mask.")
	}
	return b.content(ctx, OpInpaint,
		ai.Text(generate.InpaintInstruction(instruction)),
		ai.Inline(original),
		ai.Inline(payload),
	)
}

// RemoveBackground asks for original with a transparent background.
func (b *Builder) RemoveBackground(ctx context.Context, original media.Image) (Result, error) {
	if original.Empty() {
		return Result{}, invalid(OpRemoveBackground, "Please upload an image first.")
	}
	return b.content(ctx, OpRemoveBackground,
		ai.Inline(original),
		ai.Text(generate.RemoveBackgroundInstruction),
	)
}

// SketchToImage turns a drawn sketch into a finished image.
func (b *Builder) SketchToImage(ctx context.Context, instruction string, sketch Layer) (Result, error) {
	if blank(instruction) {
		return Result{}, invalid(OpSketch, "Please describe what your sketch should become.")
	}
	if !sketch.drawn() {
		return Result{}, invalid(OpSketch, "Please draw something on the canvas first.")
	}
	payload, err := sketch.Surface.EncodePNG()
	if err != nil {
		return Result{}, fmt.Errorf("encode sketch: %w", err)
	}
	return b.content(ctx, OpSketch,
		ai.Inline(payload),
		ai.Text(generate.SketchInstruction(instruction)),
	)
}

func (b *Builder) content(ctx context.Context, op Op, parts ...ai.Part) (Result, error) {
	return b.send(ctx, op, func(ctx context.Context) ([]ai.Part, error) {
		return b.svc.GenerateContent(ctx, ai.ContentRequest{Model: b.models.Editing, Parts: parts})
	})
}

// send performs one model call and decodes its parts. A response without
// an image is always an error.
func (b *Builder) send(ctx context.Context, op Op, call func(context.Context) ([]ai.Part, error)) (Result, error) {
	parts, err := call(ctx)
	if err != nil {
		return Result{}, &ServiceError{Op: op, Err: err}
	}
	res := Decode(parts)
	if !res.HasImage() {
		if op == OpGenerate {
			return Result{}, &GenerationError{}
		}
		return Result{}, &EditError{Op: op, Text: res.Text}
	}
	return res, nil
}

func invalid(op Op, msg string) error { return &ValidationError{Op: op, Message: msg} }

func blank(s string) bool { return strings.TrimSpace(s) == "" }
