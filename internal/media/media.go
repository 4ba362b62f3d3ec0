// Package media holds encoded image payloads as they move between the
// canvas, the request builder and the model service.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// PNG is the MIME type used for every mask and sketch payload.
const PNG = "image/png"

// Image is encoded image bytes plus the declared MIME type. Treat it as
// immutable once constructed.
type Image struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mimeType"`
}

// New copies data so later writes by the caller cannot leak into the payload.
func New(data []byte, mimeType string) Image {
	b := make([]byte, len(data))
	copy(b, data)
	return Image{Data: b, MIMEType: mimeType}
}

// Empty reports whether the payload carries no bytes.
func (i Image) Empty() bool { return len(i.Data) == 0 }

// DataURI renders the payload as a data: URI suitable for display.
func (i Image) DataURI() string {
	return toDataURL(i.MIMEType, i.Data)
}

// Size decodes only the image header and returns the native pixel dimensions.
func (i Image) Size() (image.Point, error) {
	if i.Empty() {
		return image.Point{}, errors.New("empty image payload")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(i.Data))
	if err != nil {
		return image.Point{}, fmt.Errorf("decode %s header: %w", i.MIMEType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Point{}, fmt.Errorf("image has invalid size %dx%d", cfg.Width, cfg.Height)
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

func toDataURL(mime string, b []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(b))
}

// ParseDataURI is the inverse of DataURI. Only base64 data URIs are accepted.
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, errors.New("not a data URI")
	}
	i := strings.IndexByte(rest, ',')
	if i < 0 {
		return Image{}, errors.New("malformed data URI: missing comma")
	}
	meta, payload := rest[:i], rest[i+1:]
	mime, isB64 := strings.CutSuffix(meta, ";base64")
	if !isB64 {
		return Image{}, errors.New("malformed data URI: only base64 payloads are supported")
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("malformed data URI: %w", err)
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return Image{Data: b, MIMEType: mime}, nil
}

// GuessMIME maps a file extension to an image MIME type, defaulting to PNG.
func GuessMIME(p string) string {
	mime := PNG
	switch strings.ToLower(filepath.Ext(p)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".webp":
		mime = "image/webp"
	case ".gif":
		mime = "image/gif"
	case ".bmp":
		mime = "image/bmp"
	}
	return mime
}

// Extension is the conventional file extension for a MIME type.
func Extension(mime string) string {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	}
	return ".png"
}

// ReadFile loads an upload from disk, trusting the extension for its MIME type.
func ReadFile(path string) (Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Image{}, err
	}
	if len(b) == 0 {
		return Image{}, fmt.Errorf("image file is empty: %s", path)
	}
	return Image{Data: b, MIMEType: GuessMIME(path)}, nil
}

// Save writes a displayable image URI to path, creating parent directories.
func Save(path, uri string) error {
	img, err := ParseDataURI(uri)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, img.Data, 0o644)
}
