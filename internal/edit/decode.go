package edit

import "github.com/rkirkendall/nano-canvas/internal/ai"

// Result is the decoded outcome of an image operation.
type Result struct {
	ImageURL string `json:"imageUrl,omitempty"`
	Text     string `json:"text,omitempty"`
}

func (r Result) HasImage() bool { return r.ImageURL != "" }

// Decode walks parts in order. The last text part wins for Text and the
// last non-empty image part wins for ImageURL.
func Decode(parts []ai.Part) Result {
	var res Result
	for _, p := range parts {
		switch p := p.(type) {
		case ai.TextPart:
			if p.Text != "" {
				res.Text = p.Text
			}
		case ai.ImagePart:
			if !p.Image.Empty() && p.Image.MIMEType != "" {
				res.ImageURL = p.Image.DataURI()
			}
		}
	}
	return res
}
