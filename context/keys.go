package context

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// CTXKey - a type for context keys
type CTXKey string

const (
	// EnvironmentCTXKey - the context key for environment
	EnvironmentCTXKey CTXKey = "environment"
	// DebugLoggingCTXKey - the context key for debug logging
	DebugLoggingCTXKey CTXKey = "debug_logging"
	// LogLevelCTXKey - the context key for logging level
	LogLevelCTXKey CTXKey = "log_level"
	// LogWriterCTXKey - the context key for the log writer
	LogWriterCTXKey CTXKey = "log_writer"
	// VersionCTXKey - the context key for the version
	VersionCTXKey CTXKey = "version"
	// CommitCTXKey - the context key for the commit
	CommitCTXKey CTXKey = "commit"
	// BuildTimeCTXKey - the context key for the build time
	BuildTimeCTXKey CTXKey = "build_time"
	// RateLimiterBurstCTXKey - the context key for the rate limiter burst
	RateLimiterBurstCTXKey CTXKey = "rate_limiter_burst"
	// AppTimezoneCTXKey - the context key for the application timezone
	AppTimezoneCTXKey CTXKey = "app_timezone"
)

var (
	// ErrNotInContext - error you get when you ask for something not in the context
	ErrNotInContext = errors.New("failed to get value from context: not found")
	// ErrValueWrongType - error you get when you ask for a value of the wrong type
	ErrValueWrongType = errors.New("failed to get value from context: wrong type")
	// ErrLoggerNotFound - no logger associated with the context
	ErrLoggerNotFound = errors.New("no logger found in context")
)

// GetStringFromContext - given a CTXKey return the string value from the context if it exists
func GetStringFromContext(ctx context.Context, key CTXKey) (string, error) {
	v := ctx.Value(key)
	if v == nil {
		return "", ErrNotInContext
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrValueWrongType
	}
	return s, nil
}

// GetLogLevelFromContext - given a CTXKey return the zerolog.Level from the context
func GetLogLevelFromContext(ctx context.Context, key CTXKey) (zerolog.Level, error) {
	v := ctx.Value(key)
	if v == nil {
		return zerolog.InfoLevel, ErrNotInContext
	}
	l, ok := v.(zerolog.Level)
	if !ok {
		return zerolog.InfoLevel, ErrValueWrongType
	}
	return l, nil
}

// GetLogger - get the logger value from the context
func GetLogger(ctx context.Context) (*zerolog.Logger, error) {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		return nil, ErrLoggerNotFound
	}
	return logger, nil
}
