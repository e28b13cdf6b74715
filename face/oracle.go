// Package face owns the biometric side of the house: the oracle
// capability boundary, the distance matcher and template enrollment.
package face

import (
	"context"

	"github.com/canteen-pay/meal-go/model"
)

// Frame is an opaque decoded image handle produced by the oracle
type Frame interface{}

// Oracle - the injectable vision capabilities. Implementations run the
// actual models out of process; tests supply deterministic stubs.
type Oracle interface {
	// DecodeFrame turns raw image bytes into a Frame
	DecodeFrame(ctx context.Context, image []byte) (Frame, error)
	// DetectAndEncode finds exactly one face and returns its embedding
	DetectAndEncode(ctx context.Context, frame Frame) (model.Embedding, error)
	// EstimatePoseAndBlink returns head pose in degrees and a blink observation
	EstimatePoseAndBlink(ctx context.Context, frame Frame) (model.Pose, bool, error)
	// ModelName labels templates produced from this oracle's embeddings
	ModelName() string
}

// FrameError - a frame-quality failure from the oracle. These are
// surfaced to the caller but never advance or terminate a session.
type FrameError struct {
	Code    string
	Message string
}

func (e *FrameError) Error() string {
	return e.Message
}

var (
	// ErrFaceNotFound - no face detected in the frame
	ErrFaceNotFound = &FrameError{Code: "FACE_NOT_FOUND", Message: "no face detected"}
	// ErrMultipleFaces - more than one face detected
	ErrMultipleFaces = &FrameError{Code: "MULTIPLE_FACES", Message: "more than one face detected"}
	// ErrFaceTooSmall - the detected face is too small to encode
	ErrFaceTooSmall = &FrameError{Code: "FACE_TOO_SMALL", Message: "detected face is too small"}
	// ErrLowLight - the frame is too dark
	ErrLowLight = &FrameError{Code: "LOW_LIGHT", Message: "frame is too dark"}
	// ErrBlurry - the frame is too blurry
	ErrBlurry = &FrameError{Code: "BLURRY", Message: "frame is too blurry"}
	// ErrNoFaceEncoding - the face could not be encoded
	ErrNoFaceEncoding = &FrameError{Code: "NO_FACE_ENCODING", Message: "failed to encode face"}
)
