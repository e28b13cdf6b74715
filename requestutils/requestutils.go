package requestutils

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/ioutil"
)

type requestID string

var (
	payloadLimit10MB = int64(1024 * 1024 * 10)
	// RequestIDHeaderKey is the request header key
	RequestIDHeaderKey = "x-request-id"
	// RequestID holds the type for request ids
	RequestID = requestID(RequestIDHeaderKey)
	// TerminalTokenHeaderKey is the header carrying the terminal api token
	TerminalTokenHeaderKey = "X-Terminal-Token"
)

// ReadWithLimit reads an io reader with a limit
func ReadWithLimit(ctx context.Context, body io.Reader, limit int64) ([]byte, error) {
	return ioutil.ReadAll(io.LimitReader(body, limit))
}

// Read an io reader, limited to 10MB
func Read(ctx context.Context, body io.Reader) ([]byte, error) {
	b, err := ReadWithLimit(ctx, body, payloadLimit10MB)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ReadJSON reads a request body into v and limits the size to 10MB
func ReadJSON(ctx context.Context, body io.Reader, v interface{}) error {
	if body == nil {
		return errors.New("error reading body: body is nil")
	}
	b, err := Read(ctx, body)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// GetRequestID from the context
func GetRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(RequestID).(string); ok {
		return reqID
	}
	return ""
}
