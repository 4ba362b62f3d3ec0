package generate

import (
	"fmt"
	"strings"
)

// Style is a text-to-image style tag.
type Style string

const (
	StyleRealistic Style = "realistic"
	StyleAnime     Style = "anime"
	StyleFantasy   Style = "fantasy"
)

// Quality is a text-to-image quality tag.
type Quality string

const (
	QualityStandard Quality = "standard"
	QualityHD       Quality = "hd"
)

// Aspect ratios accepted by the image models.
const (
	AspectSquare   = "1:1"
	AspectPortrait = "9:16"
	AspectWide     = "16:9"
)

// Strength band boundaries. A value equal to a boundary belongs to the
// upper band.
const (
	ModerateThreshold    = 0.3
	SignificantThreshold = 0.7
)

const (
	subtlePrefix      = "Make a very subtle and minor adjustment to the image"
	moderatePrefix    = "Make a moderate adjustment to the image"
	significantPrefix = "Make a significant and noticeable change to the image"
	creativeClause    = ", applying a highly creative and dramatic interpretation"
	hdSuffix          = ", 4k, high resolution, sharp focus"
)

// RemoveBackgroundInstruction is sent verbatim with the image to clear.
const RemoveBackgroundInstruction = "Remove the background from this image, leaving only the main subject. The new background should be transparent."

// BuildEffectivePrompt joins the main prompt and non-empty fragments with blank lines
func BuildEffectivePrompt(main string, frags []string) string {
	parts := make([]string, 0, 1+len(frags))
	if strings.TrimSpace(main) != "" {
		parts = append(parts, main)
	}
	for _, f := range frags {
		f = strings.TrimSpace(f)
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ParseStyle accepts a style tag case-insensitively; empty means realistic.
func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StyleRealistic, nil
	case StyleRealistic, StyleAnime, StyleFantasy:
		return st, nil
	default:
		return "", fmt.Errorf("unknown style %q (want realistic, anime or fantasy)", s)
	}
}

// ParseQuality accepts a quality tag case-insensitively; empty means standard.
func ParseQuality(s string) (Quality, error) {
	switch q := Quality(strings.ToLower(strings.TrimSpace(s))); q {
	case "":
		return QualityStandard, nil
	case QualityStandard, QualityHD:
		return q, nil
	default:
		return "", fmt.Errorf("unknown quality %q (want standard or hd)", s)
	}
}

// ParseAspectRatio validates an aspect ratio tag; empty means 1:1.
func ParseAspectRatio(s string) (string, error) {
	switch a := strings.TrimSpace(s); a {
	case "":
		return AspectSquare, nil
	case AspectSquare, AspectPortrait, AspectWide:
		return a, nil
	default:
		return "", fmt.Errorf("unknown aspect ratio %q (want 1:1, 9:16 or 16:9)", s)
	}
}

// DecoratePrompt prefixes style phrasing and, for hd, appends quality
// phrasing. Unknown styles leave the prompt undecorated.
func DecoratePrompt(prompt string, style Style, quality Quality) string {
	out := prompt
	switch style {
	case StyleRealistic:
		out = "ultra-realistic photo, cinematic lighting, " + prompt
	case StyleAnime:
		out = "anime style, vibrant colors, detailed, " + prompt
	case StyleFantasy:
		out = "fantasy art, epic, magical, intricate details, " + prompt
	}
	if quality == QualityHD {
		out += hdSuffix
	}
	return out
}

// StrengthPrefix maps strength in [0,1] onto one of three bands and adds the
// creative clause when creative is set.
func StrengthPrefix(strength float64, creative bool) string {
	var prefix string
	switch {
	case strength < ModerateThreshold:
		prefix = subtlePrefix
	case strength < SignificantThreshold:
		prefix = moderatePrefix
	default:
		prefix = significantPrefix
	}
	if creative {
		prefix += creativeClause
	}
	return prefix
}

// EditInstruction is the free-form edit prompt.
func EditInstruction(instruction string, strength float64, creative bool) string {
	return StrengthPrefix(strength, creative) + ", based on the following instruction: " + instruction
}

// InpaintInstruction asks the model to repaint only the white area of the
// mask sent after the original image.
func InpaintInstruction(instruction string) string {
	return `Using the provided white mask on the second image, replace only the masked area of the first (original) image with the following description: "` +
		instruction + `". The rest of the image (the black area in the mask) should remain completely unchanged.`
}

// SketchInstruction asks the model to turn a sketch into a finished image.
func SketchInstruction(instruction string) string {
	return `Transform this rough sketch into a photorealistic, high-quality image. The user wants to see: "` +
		instruction + `". Interpret the shapes and composition in the sketch to create a realistic and detailed final image.`
}
