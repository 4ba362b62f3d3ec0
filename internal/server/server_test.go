package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rkirkendall/nano-canvas/internal/ai"
	"github.com/rkirkendall/nano-canvas/internal/canvas"
	"github.com/rkirkendall/nano-canvas/internal/config"
	"github.com/rkirkendall/nano-canvas/internal/edit"
	"github.com/rkirkendall/nano-canvas/internal/media"
)

type recordingService struct {
	images  []media.Image
	parts   []ai.Part
	err     error
	imgReqs []ai.ImageRequest
	content []ai.ContentRequest
}

func (r *recordingService) GenerateImages(_ context.Context, req ai.ImageRequest) ([]media.Image, error) {
	r.imgReqs = append(r.imgReqs, req)
	return r.images, r.err
}

func (r *recordingService) GenerateContent(_ context.Context, req ai.ContentRequest) ([]ai.Part, error) {
	r.content = append(r.content, req)
	return r.parts, r.err
}

var resultImage = media.Image{Data: []byte("result"), MIMEType: media.PNG}

func newTestServer(svc ai.Service) *Server {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Provider: config.ProviderGemini,
		Brush:    config.BrushConfig{Mask: 40, Sketch: 10},
		Canvas:   config.CanvasConfig{MaxSide: 1024},
		Server:   config.ServerConfig{MaxBodyBytes: 8 << 20},
	}
	return New(cfg, edit.NewBuilder(svc, edit.Models{Generation: "g", Editing: "e"}), nil)
}

func post(t *testing.T, s *Server, path string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s: %v (%s)", path, err, w.Body.String())
	}
	return w, resp
}

func uploadURI(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return media.New(buf.Bytes(), media.PNG).DataURI()
}

func TestHealthHasRequestID(t *testing.T) {
	s := newTestServer(&recordingService{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc" {
		t.Fatal("incoming request id should be echoed")
	}
}

func TestGenerateEndpoint(t *testing.T) {
	svc := &recordingService{images: []media.Image{{Data: []byte{1}, MIMEType: "image/jpeg"}}}
	s := newTestServer(svc)
	w, resp := post(t, s, "/api/v1/generate", GenerateRequest{Prompt: "a red fox", Style: "anime", Quality: "hd", AspectRatio: "16:9"})
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
	if resp.Data == nil || resp.Data.ImageURL != "data:image/jpeg;base64,AQ==" {
		t.Fatalf("data = %+v", resp.Data)
	}
	if svc.imgReqs[0].AspectRatio != "16:9" {
		t.Fatalf("aspect = %q", svc.imgReqs[0].AspectRatio)
	}

	w, resp = post(t, s, "/api/v1/generate", GenerateRequest{Prompt: "x", Style: "oil"})
	if w.Code != http.StatusBadRequest || resp.Success {
		t.Fatalf("unknown style: status=%d", w.Code)
	}
}

func TestValidationIs400(t *testing.T) {
	s := newTestServer(&recordingService{})
	cases := []struct {
		path string
		body any
		msg  string
	}{
		{"/api/v1/generate", GenerateRequest{}, "Please enter a prompt."},
		{"/api/v1/edit", EditRequest{Prompt: "x"}, "Please upload an image to edit."},
		{"/api/v1/remove-background", RemoveBackgroundRequest{}, "Please upload an image first."},
		{"/api/v1/sketch", SketchRequest{Prompt: "castle"}, "Please draw something on the canvas first."},
	}
	for _, c := range cases {
		w, resp := post(t, s, c.path, c.body)
		if w.Code != http.StatusBadRequest || resp.Message != c.msg {
			t.Fatalf("%s: status=%d message=%q", c.path, w.Code, resp.Message)
		}
	}
}

func TestInpaintEndpoint(t *testing.T) {
	svc := &recordingService{parts: []ai.Part{ai.Inline(resultImage), ai.Text("done")}}
	s := newTestServer(svc)
	w, resp := post(t, s, "/api/v1/inpaint", InpaintRequest{
		Prompt: "add a hat",
		Image:  uploadURI(t, 120, 80),
		Mask: &canvas.Drawing{Width: 60, Height: 40, Strokes: [][]canvas.Point{
			{{X: 10, Y: 10}, {X: 15, Y: 15}},
		}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
	if resp.Data.ImageURL != resultImage.DataURI() || resp.Data.Text != "done" {
		t.Fatalf("data = %+v", resp.Data)
	}
	parts := svc.content[0].Parts
	if len(parts) != 3 {
		t.Fatalf("got %d parts", len(parts))
	}
	mask := parts[2].(ai.ImagePart).Image
	cfg, err := png.DecodeConfig(bytes.NewReader(mask.Data))
	if err != nil || cfg.Width != 120 || cfg.Height != 80 {
		t.Fatalf("mask config = %+v err=%v", cfg, err)
	}

	w, resp = post(t, s, "/api/v1/inpaint", InpaintRequest{Prompt: "add a hat", Image: uploadURI(t, 8, 8)})
	if w.Code != http.StatusBadRequest || resp.Message != "Please mask an area on the image to inpaint." {
		t.Fatalf("no mask: status=%d message=%q", w.Code, resp.Message)
	}
}

func TestServiceFailureIs502(t *testing.T) {
	s := newTestServer(&recordingService{err: errors.New("upstream exploded")})
	w, resp := post(t, s, "/api/v1/edit", EditRequest{Prompt: "brighter", Image: uploadURI(t, 4, 4)})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Message != "Failed to edit image. Please try again." {
		t.Fatalf("message = %q", resp.Message)
	}

	s = newTestServer(&recordingService{parts: []ai.Part{ai.Text("refused")}})
	w, resp = post(t, s, "/api/v1/remove-background", RemoveBackgroundRequest{Image: uploadURI(t, 4, 4)})
	if w.Code != http.StatusBadGateway || resp.Data == nil || resp.Data.Text != "refused" {
		t.Fatalf("text-only: status=%d resp=%+v", w.Code, resp)
	}
	if resp.Message != "Failed to remove background. Please try again." {
		t.Fatalf("text-only message = %q", resp.Message)
	}
}

func TestOversizedSurfacesAre400(t *testing.T) {
	svc := &recordingService{parts: []ai.Part{ai.Inline(resultImage)}}
	s := newTestServer(svc)
	stroke := [][]canvas.Point{{{X: 1, Y: 1}, {X: 5, Y: 5}}}
	cases := []struct {
		name string
		path string
		body any
	}{
		{"huge sketch", "/api/v1/sketch", SketchRequest{Prompt: "castle",
			Sketch: &canvas.Drawing{Width: 16777216, Height: 16777216}}},
		{"sketch past limit", "/api/v1/sketch", SketchRequest{Prompt: "castle",
			Sketch: &canvas.Drawing{Width: 2048, Height: 10, Strokes: stroke}}},
		{"huge mask", "/api/v1/inpaint", InpaintRequest{Prompt: "add a hat", Image: uploadURI(t, 8, 8),
			Mask: &canvas.Drawing{Width: 16777216, Height: 16777216}}},
		{"mask past limit", "/api/v1/inpaint", InpaintRequest{Prompt: "add a hat", Image: uploadURI(t, 8, 8),
			Mask: &canvas.Drawing{Width: 10, Height: 2048, Strokes: stroke}}},
		{"upload past limit", "/api/v1/edit", EditRequest{Prompt: "brighter", Image: uploadURI(t, 1025, 1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := post(t, s, tc.path, tc.body)
			if w.Code != http.StatusBadRequest || resp.Success {
				t.Fatalf("status=%d resp=%+v", w.Code, resp)
			}
		})
	}
	if len(svc.content) != 0 {
		t.Fatalf("model called %d times", len(svc.content))
	}
}

func TestBadImageURI(t *testing.T) {
	s := newTestServer(&recordingService{})
	w, _ := post(t, s, "/api/v1/remove-background", RemoveBackgroundRequest{Image: "not-a-uri"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
