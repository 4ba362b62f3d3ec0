// Package cache memoises model responses so an identical request (same
// model, same prompt, same image bytes) is answered without a second call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"hash"

	"github.com/rkirkendall/nano-canvas/internal/ai"
	"github.com/rkirkendall/nano-canvas/internal/logging"
	"github.com/rkirkendall/nano-canvas/internal/media"
	"go.uber.org/zap"
)

const keyPrefix = "nano-canvas:"

// Service wraps an ai.Service with a Store. Store failures are logged and
// the call goes to the wrapped service.
type Service struct {
	next  ai.Service
	store Store
	log   *zap.Logger
}

func Wrap(next ai.Service, store Store, log *zap.Logger) *Service {
	return &Service{next: next, store: store, log: logging.OrNop(log)}
}

func (s *Service) GenerateImages(ctx context.Context, req ai.ImageRequest) ([]media.Image, error) {
	key := imagesKey(req)
	if data, ok := s.lookup(ctx, key); ok {
		var imgs []media.Image
		if err := json.Unmarshal(data, &imgs); err == nil && len(imgs) > 0 {
			s.log.Debug("cache hit", zap.String("key", key))
			return imgs, nil
		}
	}
	imgs, err := s.next.GenerateImages(ctx, req)
	if err != nil || len(imgs) == 0 {
		return imgs, err
	}
	s.remember(ctx, key, imgs)
	return imgs, nil
}

func (s *Service) GenerateContent(ctx context.Context, req ai.ContentRequest) ([]ai.Part, error) {
	key := contentKey(req)
	if data, ok := s.lookup(ctx, key); ok {
		var stored []storedPart
		if err := json.Unmarshal(data, &stored); err == nil && len(stored) > 0 {
			s.log.Debug("cache hit", zap.String("key", key))
			return fromStored(stored), nil
		}
	}
	parts, err := s.next.GenerateContent(ctx, req)
	if err != nil || !hasImage(parts) {
		return parts, err
	}
	s.remember(ctx, key, toStored(parts))
	return parts, nil
}

func (s *Service) lookup(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, ok
}

func (s *Service) remember(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// storedPart is the JSON form of ai.Part.
type storedPart struct {
	Text  string       `json:"text,omitempty"`
	Image *media.Image `json:"image,omitempty"`
}

func toStored(parts []ai.Part) []storedPart {
	out := make([]storedPart, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case ai.TextPart:
			out = append(out, storedPart{Text: p.Text})
		case ai.ImagePart:
			img := p.Image
			out = append(out, storedPart{Image: &img})
		}
	}
	return out
}

func fromStored(stored []storedPart) []ai.Part {
	out := make([]ai.Part, 0, len(stored))
	for _, sp := range stored {
		if sp.Image != nil {
			out = append(out, ai.ImagePart{Image: *sp.Image})
			continue
		}
		out = append(out, ai.TextPart{Text: sp.Text})
	}
	return out
}

// Responses without an image are failures and are never cached.
func hasImage(parts []ai.Part) bool {
	for _, p := range parts {
		if _, ok := p.(ai.ImagePart); ok {
			return true
		}
	}
	return false
}

func imagesKey(req ai.ImageRequest) string {
	h := sha256.New()
	writeField(h, "images")
	writeField(h, req.Model)
	writeField(h, req.Prompt)
	writeField(h, req.OutputMIMEType)
	writeField(h, req.AspectRatio)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(req.Count))
	h.Write(n[:])
	return keyPrefix + "images:" + hex.EncodeToString(h.Sum(nil))
}

func contentKey(req ai.ContentRequest) string {
	h := sha256.New()
	writeField(h, "content")
	writeField(h, req.Model)
	for _, p := range req.Parts {
		switch p := p.(type) {
		case ai.TextPart:
			writeField(h, "text")
			writeField(h, p.Text)
		case ai.ImagePart:
			writeField(h, "image")
			writeField(h, p.Image.MIMEType)
			h.Write(lengthOf(len(p.Image.Data)))
			h.Write(p.Image.Data)
		}
	}
	return keyPrefix + "content:" + hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes s so adjacent fields cannot run together.
func writeField(h hash.Hash, s string) {
	h.Write(lengthOf(len(s)))
	h.Write([]byte(s))
}

func lengthOf(n int) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	return b[:]
}
