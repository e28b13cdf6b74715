package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/canteen-pay/meal-go/handlers"
	"github.com/canteen-pay/meal-go/model"
	"github.com/canteen-pay/meal-go/requestutils"
)

type terminalCTXKey string

const terminalKey terminalCTXKey = "terminal"

// TerminalLookup resolves a terminal by the sha256 hash of its api token
type TerminalLookup interface {
	GetTerminalByTokenHash(ctx context.Context, tokenHash string) (*model.Terminal, error)
}

// TerminalTransfer resolves the X-Terminal-Token header to an active
// terminal and transfers it onto the context. It never rejects, so it
// can run ahead of the rate limiter the way the bearer token extractor
// runs ahead of throttling; enforcement is TerminalAuthorizedOnly's job.
func TerminalTransfer(lookup TerminalLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(requestutils.TerminalTokenHeaderKey)
			if token != "" {
				hash := sha256.Sum256([]byte(token))
				terminal, err := lookup.GetTerminalByTokenHash(r.Context(), hex.EncodeToString(hash[:]))
				if err == nil && terminal != nil && terminal.Status == model.TerminalStatusActive {
					ctx := context.WithValue(r.Context(), terminalKey, terminal)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TerminalAuthorizedOnly requires a valid X-Terminal-Token header on
// every request and puts the resolved terminal on the context
func TerminalAuthorizedOnly(lookup TerminalLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isTerminalInContext(r.Context()) {
				// already resolved by TerminalTransfer
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(requestutils.TerminalTokenHeaderKey)
			if token == "" {
				(&handlers.AppError{
					ErrorCode: "TERMINAL_UNAUTHORIZED",
					Message:   "missing terminal token",
					Code:      http.StatusUnauthorized,
				}).ServeHTTP(w, r)
				return
			}

			hash := sha256.Sum256([]byte(token))
			terminal, err := lookup.GetTerminalByTokenHash(r.Context(), hex.EncodeToString(hash[:]))
			if err != nil {
				(&handlers.AppError{
					Cause:     err,
					ErrorCode: "TECHNICAL_ERROR",
					Message:   "failed to authorize terminal",
					Code:      http.StatusInternalServerError,
				}).ServeHTTP(w, r)
				return
			}
			if terminal == nil {
				(&handlers.AppError{
					ErrorCode: "TERMINAL_UNAUTHORIZED",
					Message:   "unknown terminal token",
					Code:      http.StatusUnauthorized,
				}).ServeHTTP(w, r)
				return
			}
			if terminal.Status != model.TerminalStatusActive {
				(&handlers.AppError{
					ErrorCode: "TERMINAL_BLOCKED",
					Message:   "terminal is blocked",
					Code:      http.StatusForbidden,
				}).ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), terminalKey, terminal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTerminal returns the authenticated terminal from the context, nil if absent
func GetTerminal(ctx context.Context) *model.Terminal {
	terminal, ok := ctx.Value(terminalKey).(*model.Terminal)
	if !ok {
		return nil
	}
	return terminal
}

func isTerminalInContext(ctx context.Context) bool {
	return GetTerminal(ctx) != nil
}
