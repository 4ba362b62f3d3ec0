// Package session holds the state of one image tool session. A session runs
// at most one model call at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/rkirkendall/nano-canvas/internal/canvas"
	"github.com/rkirkendall/nano-canvas/internal/edit"
	"github.com/rkirkendall/nano-canvas/internal/logging"
	"github.com/rkirkendall/nano-canvas/internal/media"
	"go.uber.org/zap"
)

// ErrBusy is returned when an operation starts while another is pending.
var ErrBusy = errors.New("session: an operation is already in progress")

// Tool is the active tool of the session.
type Tool string

const (
	ToolSelect   Tool = "select"
	ToolGenerate Tool = "generate"
	ToolEdit     Tool = "edit"
	ToolSketch   Tool = "sketch"
)

// EditMode is the sub-mode of the edit tool.
type EditMode string

const (
	EditNone    EditMode = "none"
	EditInpaint EditMode = "inpaint"
)

// Brush limits and defaults.
const (
	DefaultMaskBrush   = 40
	MinMaskBrush       = 10
	MaxMaskBrush       = 100
	DefaultSketchBrush = 10
	MinSketchBrush     = 2
	MaxSketchBrush     = 50
	DefaultStrength    = 0.5
)

// Settings are the user-adjustable parameters of the edit operations.
type Settings struct {
	Creative bool
	Strength float64
}

// Session is a single client's tool state. All methods are safe for
// concurrent use, but only one model call can be in flight at a time.
type Session struct {
	builder *edit.Builder
	log     *zap.Logger

	mu       sync.Mutex
	busy     bool
	epoch    uint64
	tool     Tool
	editMode EditMode
	original media.Image
	native   image.Point
	image    string
	errMsg   string
	text     string
	settings Settings

	maskBrush   float64
	sketchBrush float64
	maxSide     int
	overlay     *canvas.StrokeRenderer
	sketch      *canvas.StrokeRenderer
}

// New returns an idle session using builder for model calls.
func New(builder *edit.Builder, log *zap.Logger) *Session {
	return &Session{
		builder:     builder,
		log:         logging.OrNop(log),
		tool:        ToolSelect,
		editMode:    EditNone,
		settings:    Settings{Strength: DefaultStrength},
		maskBrush:   DefaultMaskBrush,
		sketchBrush: DefaultSketchBrush,
		maxSide:     canvas.MaxSide,
	}
}

// Snapshot is a copy of the user-visible state.
type Snapshot struct {
	Tool     Tool     `json:"tool"`
	EditMode EditMode `json:"editMode"`
	Busy     bool     `json:"busy"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Text     string   `json:"text,omitempty"`
	Error    string   `json:"error,omitempty"`
	HasImage bool     `json:"hasOriginal"`
	HasMask  bool     `json:"hasMask"`
	HasDraft bool     `json:"hasSketch"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Tool:     s.tool,
		EditMode: s.editMode,
		Busy:     s.busy,
		ImageURL: s.image,
		Text:     s.text,
		Error:    s.errMsg,
		HasImage: !s.original.Empty(),
		HasMask:  s.overlay != nil && s.overlay.HasContent(),
		HasDraft: s.sketch != nil && s.sketch.HasContent(),
	}
}

func (s *Session) Tool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

func (s *Session) EditMode() EditMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

// Image is the data URI currently on display.
func (s *Session) Image() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Err is the message of the last failed operation, or "".
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) SetSettings(st Settings) {
	if st.Strength < 0 {
		st.Strength = 0
	}
	if st.Strength > 1 {
		st.Strength = 1
	}
	s.mu.Lock()
	s.settings = st
	s.mu.Unlock()
}

// SelectTool switches tools and clears both drawing surfaces. While an
// original image is loaded the session stays on the edit tool.
func (s *Session) SelectTool(t Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSurfaces()
	if !s.original.Empty() {
		t = ToolEdit
	}
	s.tool = t
}

// Upload starts over with img as the original and switches to the edit tool.
func (s *Session) Upload(img media.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	sz, sizeErr := img.Size()
	if sizeErr == nil {
		if err := canvas.CheckSize(sz.X, sz.Y, s.maxSide); err != nil {
			return fmt.Errorf("uploaded image: %w", err)
		}
	}
	s.reset(true)
	s.original = img
	s.image = img.DataURI()
	s.tool = ToolEdit
	// The overlay was laid out and scaled for the previous image.
	s.overlay = nil
	if sizeErr == nil {
		s.native = sz
	} else {
		s.log.Warn("could not read uploaded image size", zap.String("mime", img.MIMEType), zap.Error(sizeErr))
	}
	return nil
}

// Reset clears images, messages and surfaces. keepTool keeps the current
// tool instead of returning to select. A pending call still finishes but its
// result is dropped.
func (s *Session) Reset(keepTool bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(keepTool)
}

func (s *Session) reset(keepTool bool) {
	s.epoch++
	s.image = ""
	s.text = ""
	s.original = media.Image{}
	s.native = image.Point{}
	s.errMsg = ""
	s.editMode = EditNone
	s.clearSurfaces()
	if !keepTool {
		s.tool = ToolSelect
	}
}

// ToggleInpaint flips the edit sub-mode and clears the mask.
func (s *Session) ToggleInpaint() EditMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editMode == EditInpaint {
		s.editMode = EditNone
	} else {
		s.editMode = EditInpaint
	}
	if s.overlay != nil {
		s.overlay.Clear()
	}
	return s.editMode
}

// Generate creates an image from prompt. The current image is cleared
// before the call starts.
func (s *Session) Generate(ctx context.Context, prompt string, opts edit.GenerateOptions) error {
	epoch, err := s.begin(edit.OpGenerate)
	if err != nil {
		return err
	}
	defer s.end()

	if strings.TrimSpace(prompt) != "" {
		s.mu.Lock()
		s.image = ""
		s.original = media.Image{}
		s.native = image.Point{}
		s.mu.Unlock()
	}
	uri, err := s.builder.Generate(ctx, prompt, opts)
	return s.finish(edit.OpGenerate, epoch, edit.Result{ImageURL: uri}, err)
}

// Edit applies instruction to the uploaded image.
func (s *Session) Edit(ctx context.Context, instruction string) error {
	epoch, err := s.begin(edit.OpEdit)
	if err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	original, st := s.original, s.settings
	s.mu.Unlock()
	res, err := s.builder.Edit(ctx, instruction, original, st.Creative, st.Strength)
	return s.finish(edit.OpEdit, epoch, res, err)
}

// Inpaint repaints the masked area of the uploaded image. A successful call
// leaves inpaint mode.
func (s *Session) Inpaint(ctx context.Context, instruction string) error {
	epoch, err := s.begin(edit.OpInpaint)
	if err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	original, native := s.original, s.native
	mask := edit.LayerOf(s.overlay)
	s.mu.Unlock()
	res, err := s.builder.Inpaint(ctx, instruction, original, native, mask)
	if err := s.finish(edit.OpInpaint, epoch, res, err); err != nil {
		return err
	}
	s.mu.Lock()
	if s.epoch == epoch {
		s.editMode = EditNone
	}
	s.mu.Unlock()
	return nil
}

// RemoveBackground asks for the uploaded image without its background.
func (s *Session) RemoveBackground(ctx context.Context) error {
	epoch, err := s.begin(edit.OpRemoveBackground)
	if err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	original := s.original
	s.mu.Unlock()
	res, err := s.builder.RemoveBackground(ctx, original)
	return s.finish(edit.OpRemoveBackground, epoch, res, err)
}

// SketchToImage turns the sketch pad into an image.
func (s *Session) SketchToImage(ctx context.Context, instruction string) error {
	epoch, err := s.begin(edit.OpSketch)
	if err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	sketch := edit.LayerOf(s.sketch)
	s.mu.Unlock()
	res, err := s.builder.SketchToImage(ctx, instruction, sketch)
	return s.finish(edit.OpSketch, epoch, res, err)
}

// Result is the outcome of the last successful operation.
func (s *Session) Result() edit.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return edit.Result{ImageURL: s.image, Text: s.text}
}

func (s *Session) begin(op edit.Op) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		s.log.Debug("rejected operation while busy", zap.String("op", string(op)))
		return 0, ErrBusy
	}
	s.busy = true
	s.errMsg = ""
	return s.epoch, nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// finish stores the outcome unless the session was reset meanwhile. Errors
// become the user-visible message and are logged with their cause.
func (s *Session) finish(op edit.Op, epoch uint64, res edit.Result, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.log.Debug("dropping result of reset session", zap.String("op", string(op)))
		return err
	}
	if err != nil {
		s.errMsg = edit.UserMessage(err)
		if edit.IsValidation(err) {
			s.log.Debug("operation rejected", zap.String("op", string(op)), zap.String("reason", s.errMsg))
		} else {
			s.log.Error("operation failed", zap.String("op", string(op)), zap.Error(err))
		}
		return err
	}
	s.image = res.ImageURL
	s.text = res.Text
	s.log.Info("operation succeeded", zap.String("op", string(op)), zap.Bool("text", res.Text != ""))
	return nil
}
