// Package vision is the HTTP client for the face analysis sidecar. One
// analyze call per frame produces the embedding, head pose and blink
// observation the liveness flow consumes.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/canteen-pay/meal-go/face"
	"github.com/canteen-pay/meal-go/middleware"
	"github.com/canteen-pay/meal-go/model"
)

// DefaultModelName labels templates when the sidecar does not report one
const DefaultModelName = "face_recognition"

// Client implements face.Oracle against the analysis sidecar
type Client struct {
	baseURL   string
	modelName string
	client    *http.Client
}

// New creates a vision Client
func New(baseURL, modelName string) *Client {
	if modelName == "" {
		modelName = DefaultModelName
	}
	return &Client{
		baseURL:   baseURL,
		modelName: modelName,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: middleware.InstrumentRoundTripper(http.DefaultTransport, "vision"),
		},
	}
}

// analysis is the opaque frame handle: one sidecar round trip, consumed
// by the capability methods
type analysis struct {
	Embedding model.Embedding `json:"embedding"`
	Yaw       float64         `json:"yaw"`
	Pitch     float64         `json:"pitch"`
	Roll      float64         `json:"roll"`
	Blink     bool            `json:"blink"`
}

type analyzeRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type analyzeResponse struct {
	OK      bool      `json:"ok"`
	Data    *analysis `json:"data"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

var frameErrors = map[string]*face.FrameError{
	"FACE_NOT_FOUND":   face.ErrFaceNotFound,
	"MULTIPLE_FACES":   face.ErrMultipleFaces,
	"FACE_TOO_SMALL":   face.ErrFaceTooSmall,
	"LOW_LIGHT":        face.ErrLowLight,
	"BLURRY":           face.ErrBlurry,
	"NO_FACE_ENCODING": face.ErrNoFaceEncoding,
}

// DecodeFrame runs the analysis round trip and returns the result as an
// opaque handle
func (c *Client) DecodeFrame(ctx context.Context, image []byte) (face.Frame, error) {
	body, err := json.Marshal(analyzeRequest{ImageBase64: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analyze request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call analyze: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode analyze response: %w", err)
	}

	if !parsed.OK || parsed.Data == nil {
		if frameErr, ok := frameErrors[parsed.Code]; ok {
			return nil, frameErr
		}
		return nil, fmt.Errorf("analyze failed: %s %s", parsed.Code, parsed.Message)
	}

	return parsed.Data, nil
}

// DetectAndEncode returns the embedding from the analyzed frame
func (c *Client) DetectAndEncode(ctx context.Context, frame face.Frame) (model.Embedding, error) {
	a, ok := frame.(*analysis)
	if !ok {
		return nil, face.ErrNoFaceEncoding
	}
	if err := a.Embedding.Validate(); err != nil {
		return nil, face.ErrNoFaceEncoding
	}
	return a.Embedding, nil
}

// EstimatePoseAndBlink returns the pose and blink from the analyzed frame
func (c *Client) EstimatePoseAndBlink(ctx context.Context, frame face.Frame) (model.Pose, bool, error) {
	a, ok := frame.(*analysis)
	if !ok {
		return model.Pose{}, false, face.ErrNoFaceEncoding
	}
	return model.Pose{Yaw: a.Yaw, Pitch: a.Pitch, Roll: a.Roll}, a.Blink, nil
}

// ModelName labels templates produced from this oracle's embeddings
func (c *Client) ModelName() string {
	return c.modelName
}
