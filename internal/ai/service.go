package ai

import (
	"context"

	"github.com/rkirkendall/nano-canvas/internal/media"
)

// Part is one unit of a multi-modal request or response: either TextPart or
// ImagePart.
type Part interface {
	isPart()
}

// TextPart is plain text.
type TextPart struct {
	Text string
}

// ImagePart is inline image bytes with their MIME type.
type ImagePart struct {
	Image media.Image
}

func (TextPart) isPart()  {}
func (ImagePart) isPart() {}

// Text is shorthand for a TextPart.
func Text(s string) Part { return TextPart{Text: s} }

// Inline is shorthand for an ImagePart.
func Inline(img media.Image) Part { return ImagePart{Image: img} }

// ImageRequest is a text-to-image call.
type ImageRequest struct {
	Model          string
	Prompt         string
	Count          int
	OutputMIMEType string
	AspectRatio    string
}

// ContentRequest is a multi-modal call asking for image and text back.
type ContentRequest struct {
	Model string
	Parts []Part
}

// Service is the hosted generative-image model.
type Service interface {
	// GenerateImages returns the generated images in order; an empty slice
	// means the model produced nothing.
	GenerateImages(ctx context.Context, req ImageRequest) ([]media.Image, error)
	// GenerateContent returns the parts of the first response candidate.
	GenerateContent(ctx context.Context, req ContentRequest) ([]Part, error)
}
