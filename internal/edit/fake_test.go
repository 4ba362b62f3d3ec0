package edit

import (
	"context"
	"sync"

	"github.com/rkirkendall/nano-canvas/internal/ai"
	"github.com/rkirkendall/nano-canvas/internal/media"
)

// fakeService records requests and replays canned answers.
type fakeService struct {
	mu       sync.Mutex
	images   []media.Image
	parts    []ai.Part
	err      error
	imageReq []ai.ImageRequest
	content  []ai.ContentRequest
}

func (f *fakeService) GenerateImages(_ context.Context, req ai.ImageRequest) ([]media.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageReq = append(f.imageReq, req)
	return f.images, f.err
}

func (f *fakeService) GenerateContent(_ context.Context, req ai.ContentRequest) ([]ai.Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = append(f.content, req)
	return f.parts, f.err
}

func (f *fakeService) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.imageReq) + len(f.content)
}

var (
	resultPNG = media.Image{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: media.PNG}
	otherJPEG = media.Image{Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}
)
