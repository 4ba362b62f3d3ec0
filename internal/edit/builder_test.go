package edit

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/rkirkendall/nano-canvas/internal/ai"
	"github.com/rkirkendall/nano-canvas/internal/canvas"
	"github.com/rkirkendall/nano-canvas/internal/generate"
	"github.com/rkirkendall/nano-canvas/internal/media"
)

var testModels = Models{Generation: "imagen-test", Editing: "editor-test"}

func encodePNG(t *testing.T, w, h int) media.Image {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return media.New(buf.Bytes(), media.PNG)
}

func drawnLayer(w, h int, from, to canvas.Point, width float64) Layer {
	r := canvas.NewStrokeRenderer(canvas.NewSurface(w, h), canvas.Pen{Color: canvas.MaskColor, Width: width})
	r.Begin(from)
	r.Move(to)
	r.End()
	return LayerOf(r)
}

func TestGenerateDecoratesPrompt(t *testing.T) {
	svc := &fakeService{images: []media.Image{otherJPEG}}
	b := NewBuilder(svc, testModels)

	uri, err := b.Generate(context.Background(), "a red fox", GenerateOptions{
		Style: generate.StyleAnime, Quality: generate.QualityHD, AspectRatio: "16:9",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if uri != otherJPEG.DataURI() {
		t.Fatalf("uri = %q", uri)
	}
	req := svc.imageReq[0]
	if !strings.Contains(req.Prompt, "anime style") || !strings.Contains(req.Prompt, "4k") {
		t.Fatalf("prompt = %q", req.Prompt)
	}
	if req.AspectRatio != "16:9" || req.Count != 1 || req.OutputMIMEType != "image/jpeg" || req.Model != "imagen-test" {
		t.Fatalf("request = %+v", req)
	}
}

func TestGenerateNoImagesIsGenerationError(t *testing.T) {
	b := NewBuilder(&fakeService{}, testModels)
	_, err := b.Generate(context.Background(), "a red fox", GenerateOptions{})
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestValidationHappensBeforeAnyCall(t *testing.T) {
	svc := &fakeService{parts: []ai.Part{ai.Inline(resultPNG)}}
	b := NewBuilder(svc, testModels)
	ctx := context.Background()
	orig := encodePNG(t, 4, 4)
	empty := Layer{Surface: canvas.NewSurface(4, 4)}

	checks := []struct {
		name string
		run  func() error
		msg  string
	}{
		{"generate prompt", func() error { _, err := b.Generate(ctx, "  ", GenerateOptions{}); return err }, "Please enter a prompt."},
		{"edit prompt", func() error { _, err := b.Edit(ctx, "", orig, false, 0.5); return err }, "Please enter an editing instruction."},
		{"edit image", func() error { _, err := b.Edit(ctx, "x", media.Image{}, false, 0.5); return err }, "Please upload an image to edit."},
		{"inpaint image", func() error { _, err := b.Inpaint(ctx, "x", media.Image{}, image.Point{}, empty); return err }, "Please upload an image first."},
		{"inpaint mask", func() error { _, err := b.Inpaint(ctx, "x", orig, image.Point{}, empty); return err }, "Please mask an area on the image to inpaint."},
		{"remove-bg image", func() error { _, err := b.RemoveBackground(ctx, media.Image{}); return err }, "Please upload an image first."},
		{"sketch prompt", func() error { _, err := b.SketchToImage(ctx, "", empty); return err }, "Please describe what your sketch should become."},
		{"sketch empty", func() error { _, err := b.SketchToImage(ctx, "x", empty); return err }, "Please draw something on the canvas first."},
	}
	for _, c := range checks {
		err := c.run()
		if !IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", c.name, err)
		}
		if UserMessage(err) != c.msg {
			t.Fatalf("%s: message = %q", c.name, UserMessage(err))
		}
	}
	if svc.calls() != 0 {
		t.Fatalf("validation failures reached the service %d times", svc.calls())
	}
}

func TestEditPartsAndInstruction(t *testing.T) {
	svc := &fakeService{parts: []ai.Part{ai.Text("done"), ai.Inline(resultPNG)}}
	b := NewBuilder(svc, testModels)
	orig := encodePNG(t, 2, 2)

	res, err := b.Edit(context.Background(), "make it night", orig, true, 0.3)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if res.ImageURL != resultPNG.DataURI() || res.Text != "done" {
		t.Fatalf("result = %+v", res)
	}
	req := svc.content[0]
	if req.Model != "editor-test" || len(req.Parts) != 2 {
		t.Fatalf("request = %+v", req)
	}
	if ip, ok := req.Parts[0].(ai.ImagePart); !ok || !bytes.Equal(ip.Image.Data, orig.Data) {
		t.Fatalf("part 0 = %+v", req.Parts[0])
	}
	tp, ok := req.Parts[1].(ai.TextPart)
	if !ok || !strings.HasPrefix(tp.Text, "Make a moderate adjustment to the image, applying a highly creative") {
		t.Fatalf("part 1 = %+v", req.Parts[1])
	}
}

func TestInpaintSendsTextImageMask(t *testing.T) {
	svc := &fakeService{parts: []ai.Part{ai.Inline(resultPNG)}}
	b := NewBuilder(svc, testModels)
	orig := encodePNG(t, 1200, 800)
	mask := drawnLayer(600, 400, canvas.Point{X: 110, Y: 125}, canvas.Point{X: 140, Y: 125}, 20)

	if _, err := b.Inpaint(context.Background(), "add a hat", orig, image.Point{}, mask); err != nil {
		t.Fatalf("inpaint: %v", err)
	}
	parts := svc.content[0].Parts
	if len(parts) != 3 {
		t.Fatalf("got %d parts", len(parts))
	}
	if tp, ok := parts[0].(ai.TextPart); !ok || !strings.Contains(tp.Text, `"add a hat"`) {
		t.Fatalf("part 0 = %+v", parts[0])
	}
	if ip, ok := parts[1].(ai.ImagePart); !ok || !bytes.Equal(ip.Image.Data, orig.Data) {
		t.Fatal("part 1 is not the original image")
	}
	mp, ok := parts[2].(ai.ImagePart)
	if !ok || mp.Image.MIMEType != "image/png" {
		t.Fatalf("part 2 = %+v", parts[2])
	}
	img, err := png.Decode(bytes.NewReader(mp.Image.Data))
	if err != nil {
		t.Fatalf("decode mask: %v", err)
	}
	if img.Bounds().Dx() != 1200 || img.Bounds().Dy() != 800 {
		t.Fatalf("mask bounds = %v", img.Bounds())
	}
	if r, _, _, _ := img.At(250, 250).RGBA(); r != 0xffff {
		t.Fatal("stroke centre should be white")
	}
	if r, _, _, a := img.At(10, 10).RGBA(); r != 0 || a != 0xffff {
		t.Fatal("untouched area should be opaque black")
	}
}

// pngHeader is a PNG signature and IHDR chunk claiming w x h pixels with no
// image data behind it.
func pngHeader(w, h uint32) media.Image {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 6
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return media.New(buf.Bytes(), media.PNG)
}

func TestInpaintRejectsOversizedImage(t *testing.T) {
	mask := drawnLayer(60, 40, canvas.Point{X: 10, Y: 10}, canvas.Point{X: 30, Y: 10}, 8)
	tests := []struct {
		name   string
		limit  int
		orig   media.Image
		native image.Point
	}{
		{"header past MaxSide", 0, pngHeader(60000, 60000), image.Point{}},
		{"header past configured limit", 1000, encodePNG(t, 1200, 800), image.Point{}},
		{"explicit native size", 0, encodePNG(t, 10, 10), image.Pt(16777216, 16777216)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{parts: []ai.Part{ai.Inline(resultPNG)}}
			b := NewBuilder(svc, testModels)
			if tc.limit > 0 {
				b.SetMaxSide(tc.limit)
			}
			_, err := b.Inpaint(context.Background(), "add a hat", tc.orig, tc.native, mask)
			if !IsValidation(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if UserMessage(err) != "The image is too large to inpaint." {
				t.Fatalf("message = %q", UserMessage(err))
			}
			if svc.calls() != 0 {
				t.Fatal("model must not be called")
			}
		})
	}
}

func TestPNGHeaderDeclaresSize(t *testing.T) {
	sz, err := pngHeader(60000, 30000).Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if sz != image.Pt(60000, 30000) {
		t.Fatalf("size = %v", sz)
	}
}

func TestRemoveBackgroundAndSketchOrdering(t *testing.T) {
	svc := &fakeService{parts: []ai.Part{ai.Inline(resultPNG)}}
	b := NewBuilder(svc, testModels)
	orig := encodePNG(t, 2, 2)

	if _, err := b.RemoveBackground(context.Background(), orig); err != nil {
		t.Fatalf("remove background: %v", err)
	}
	rb := svc.content[0].Parts
	if _, ok := rb[0].(ai.ImagePart); !ok {
		t.Fatalf("remove-bg part 0 = %+v", rb[0])
	}
	if tp, ok := rb[1].(ai.TextPart); !ok || tp.Text != generate.RemoveBackgroundInstruction {
		t.Fatalf("remove-bg part 1 = %+v", rb[1])
	}

	sketch := drawnLayer(40, 40, canvas.Point{X: 5, Y: 5}, canvas.Point{X: 30, Y: 30}, 4)
	if _, err := b.SketchToImage(context.Background(), "a castle", sketch); err != nil {
		t.Fatalf("sketch: %v", err)
	}
	sk := svc.content[1].Parts
	if ip, ok := sk[0].(ai.ImagePart); !ok || ip.Image.MIMEType != "image/png" {
		t.Fatalf("sketch part 0 = %+v", sk[0])
	}
	if tp, ok := sk[1].(ai.TextPart); !ok || !strings.Contains(tp.Text, `"a castle"`) {
		t.Fatalf("sketch part 1 = %+v", sk[1])
	}
}

func TestTextOnlyResponseFailsEveryImageOperation(t *testing.T) {
	svc := &fakeService{parts: []ai.Part{ai.Text("I cannot do that")}}
	b := NewBuilder(svc, testModels)
	ctx := context.Background()
	orig := encodePNG(t, 8, 8)
	layer := drawnLayer(8, 8, canvas.Point{X: 1, Y: 1}, canvas.Point{X: 6, Y: 6}, 2)

	ops := map[Op]struct {
		run func() error
		msg string
	}{
		OpEdit: {func() error { _, err := b.Edit(ctx, "x", orig, false, 0.1); return err },
			"Failed to edit image. Please try again."},
		OpInpaint: {func() error { _, err := b.Inpaint(ctx, "x", orig, image.Pt(8, 8), layer); return err },
			"Failed to inpaint image. Please try again."},
		OpRemoveBackground: {func() error { _, err := b.RemoveBackground(ctx, orig); return err },
			"Failed to remove background. Please try again."},
		OpSketch: {func() error { _, err := b.SketchToImage(ctx, "x", layer); return err },
			"Failed to generate image from sketch. Please try again."},
	}
	for op, c := range ops {
		var eerr *EditError
		err := c.run()
		if !errors.As(err, &eerr) || eerr.Op != op {
			t.Fatalf("%s: expected EditError, got %v", op, err)
		}
		if eerr.Text != "I cannot do that" {
			t.Fatalf("%s: text = %q", op, eerr.Text)
		}
		if got := UserMessage(err); got != c.msg {
			t.Fatalf("%s: message = %q, want %q", op, got, c.msg)
		}
	}
	_, err := b.Generate(ctx, "x", GenerateOptions{})
	if err == nil {
		t.Fatal("generate: expected failure without images")
	}
	if got := UserMessage(err); got != "Failed to generate image. Please try again." {
		t.Fatalf("generate: message = %q", got)
	}
}

func TestServiceErrorIsWrapped(t *testing.T) {
	cause := errors.New("connection reset")
	b := NewBuilder(&fakeService{err: cause}, testModels)

	_, err := b.RemoveBackground(context.Background(), encodePNG(t, 1, 1))
	var serr *ServiceError
	if !errors.As(err, &serr) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped service error, got %v", err)
	}
	if got := UserMessage(err); got != "Failed to remove background. Please try again." {
		t.Fatalf("message = %q", got)
	}
	if strings.Contains(UserMessage(err), "connection reset") {
		t.Fatal("user message leaked the diagnostic")
	}
}
