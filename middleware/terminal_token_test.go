package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canteen-pay/meal-go/handlers"
	"github.com/canteen-pay/meal-go/model"
	"github.com/canteen-pay/meal-go/requestutils"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTerminalLookup struct {
	terminals map[string]*model.Terminal
}

func (l *stubTerminalLookup) GetTerminalByTokenHash(ctx context.Context, tokenHash string) (*model.Terminal, error) {
	return l.terminals[tokenHash], nil
}

func hashOf(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func TestTerminalAuthorizedOnly(t *testing.T) {
	active := &model.Terminal{ID: uuid.NewV4(), Name: "Terminal #1", Status: model.TerminalStatusActive}
	blocked := &model.Terminal{ID: uuid.NewV4(), Name: "Terminal #2", Status: model.TerminalStatusBlocked}

	lookup := &stubTerminalLookup{terminals: map[string]*model.Terminal{
		hashOf("good-token"):    active,
		hashOf("blocked-token"): blocked,
	}}

	var seen *model.Terminal
	handler := TerminalAuthorizedOnly(lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTerminal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name     string
		token    string
		status   int
		code     string
		terminal *model.Terminal
	}{
		{"missing token", "", http.StatusUnauthorized, "TERMINAL_UNAUTHORIZED", nil},
		{"unknown token", "bad-token", http.StatusUnauthorized, "TERMINAL_UNAUTHORIZED", nil},
		{"blocked terminal", "blocked-token", http.StatusForbidden, "TERMINAL_BLOCKED", nil},
		{"active terminal", "good-token", http.StatusOK, "", active},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest("GET", "/api/employee_info", nil)
			if tc.token != "" {
				req.Header.Set(requestutils.TerminalTokenHeaderKey, tc.token)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.status, rr.Code)
			if tc.code != "" {
				var envelope handlers.Envelope
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
				assert.False(t, envelope.OK)
				assert.Equal(t, tc.code, envelope.Code)
			}
			assert.Equal(t, tc.terminal, seen)
		})
	}
}
