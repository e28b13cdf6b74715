package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/canteen-pay/meal-go/requestutils"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// Envelope is the uniform JSON response body: {ok, data?, code?, message?, details?}
type Envelope struct {
	OK      bool        `json:"ok"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// AppError is the error type for json HTTP responses
type AppError struct {
	Cause     error       `json:"-"`
	ErrorCode string      `json:"code,omitempty"`
	Message   string      `json:"message"`
	Code      int         `json:"-"`
	Data      interface{} `json:"details,omitempty"`
}

// Error makes app error an error
func (e *AppError) Error() string {
	msg := "error: " + e.Message
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	return msg
}

// ServeHTTP responds according to the passed AppError
func (e *AppError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(e.Code)
	if err := json.NewEncoder(w).Encode(Envelope{
		OK:      false,
		Code:    e.ErrorCode,
		Message: e.Message,
		Details: e.Data,
	}); err != nil {
		panic(err)
	}
}

// CodedError creates an AppError with a stable string code
func CodedError(cause error, errorCode string, message string, status int) *AppError {
	return &AppError{
		Cause:     cause,
		ErrorCode: errorCode,
		Message:   message,
		Code:      status,
	}
}

// WrapError with an additional message as an AppError
func WrapError(err error, msg string, passedCode int) *AppError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		code := passedCode
		if code == 0 {
			code = http.StatusBadRequest
		}
		return &AppError{
			Cause:   err,
			Message: msg,
			Code:    code,
		}
	}
	code := appErr.Code
	if code == 0 {
		code = passedCode
	}
	if len(msg) != 0 {
		msg = fmt.Sprintf("%s: ", msg)
	}
	return &AppError{
		Cause:     appErr.Cause,
		ErrorCode: appErr.ErrorCode,
		Message:   fmt.Sprintf("%s%s", msg, appErr.Message),
		Code:      code,
		Data:      appErr.Data,
	}
}

// RenderContent wraps v in the success envelope and writes it out
func RenderContent(ctx context.Context, v interface{}, w http.ResponseWriter, status int) *AppError {
	var b bytes.Buffer

	if err := json.NewEncoder(&b).Encode(Envelope{OK: true, Data: v}); err != nil {
		return WrapError(err, "Error encoding JSON", http.StatusInternalServerError)
	}

	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b.Bytes()); err != nil {
		return WrapError(err, "Error writing a response", http.StatusInternalServerError)
	}

	return nil
}

// ValidationError creates an error to communicate a bad request was formed
func ValidationError(message string, validationErrors interface{}) *AppError {
	return &AppError{
		ErrorCode: "BAD_REQUEST",
		Message:   "Error validating " + message,
		Code:      http.StatusBadRequest,
		Data: map[string]interface{}{
			"validationErrors": validationErrors,
		},
	}
}

// AppHandler is an http.Handler with JSON requests / responses
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// ServeHTTP responds via the passed handler and handles returned errors
func (fn AppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "*/*") || r.Header.Get("Accept") == "" {
		w.Header().Set("content-type", "application/json")
	} else {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if e := fn(w, r); e != nil {
		if e.Code >= 500 && e.Code <= 599 {
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetTags(map[string]string{
					"reqID": requestutils.GetRequestID(r.Context()),
				})
				sentry.CaptureException(e)
			})
		}

		l := zerolog.Ctx(r.Context())
		l.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Err(e)
		})

		if e.Cause != nil {
			e.Message = fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}

		e.ServeHTTP(w, r)
	}
}
