package edit

import (
	"errors"
	"fmt"
)

// Op names one of the builder's operations.
type Op string

const (
	OpGenerate         Op = "generate"
	OpEdit             Op = "edit"
	OpInpaint          Op = "inpaint"
	OpRemoveBackground Op = "remove-background"
	OpSketch           Op = "sketch"
)

// ValidationError reports missing user input. It is returned before any
// call reaches the model and its message is meant for the user.
type ValidationError struct {
	Op      Op
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// GenerationError means text-to-image returned no images.
type GenerationError struct{}

func (e *GenerationError) Error() string { return "No image was generated." }

// EditError means the model answered an image operation without an image
// part. Text carries whatever explanation the model gave instead.
type EditError struct {
	Op   Op
	Text string
}

func (e *EditError) Error() string {
	switch e.Op {
	case OpInpaint:
		return "Inpainting did not produce a new image."
	case OpRemoveBackground:
		return "Background removal did not produce a new image."
	case OpSketch:
		return "Sketch-to-image did not produce a new image."
	default:
		return "Editing did not produce a new image."
	}
}

// ServiceError wraps a failed call to the model service.
type ServiceError struct {
	Op  Op
	Err error
}

func (e *ServiceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *ServiceError) Unwrap() error { return e.Err }

// UserMessage turns any builder error into the single line shown to the
// user. A missing image reads the same as a failed call; underlying service
// diagnostics are not included.
func UserMessage(err error) string {
	var (
		verr *ValidationError
		gerr *GenerationError
		eerr *EditError
		serr *ServiceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &gerr):
		return failureMessage(OpGenerate)
	case errors.As(err, &eerr):
		return failureMessage(eerr.Op)
	case errors.As(err, &serr):
		return failureMessage(serr.Op)
	default:
		return "An unexpected error occurred."
	}
}

func failureMessage(op Op) string {
	switch op {
	case OpGenerate:
		return "Failed to generate image. Please try again."
	case OpInpaint:
		return "Failed to inpaint image. Please try again."
	case OpRemoveBackground:
		return "Failed to remove background. Please try again."
	case OpSketch:
		return "Failed to generate image from sketch. Please try again."
	default:
		return "Failed to edit image. Please try again."
	}
}

// IsValidation reports whether err was caused by missing user input.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
