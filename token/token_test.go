package token

import (
	"strings"
	"testing"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceRejectsEmptySecret(t *testing.T) {
	_, err := NewService("", time.Minute)
	assert.Error(t, err)
}

func TestMintVerifyRoundTrip(t *testing.T) {
	service, err := NewService("test-secret", time.Minute)
	require.NoError(t, err)

	sessionID := uuid.NewV4()
	terminalID := uuid.NewV4()
	now := time.Now()

	tok, err := service.Mint(42, sessionID, terminalID, now)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(tok, ".")))

	claims, err := service.Verify(tok, now)
	require.NoError(t, err)

	employeeID, err := claims.EmployeeID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), employeeID)

	sid, err := claims.SessionID()
	require.NoError(t, err)
	assert.Equal(t, sessionID, sid)

	tid, err := claims.TerminalID()
	require.NoError(t, err)
	assert.Equal(t, terminalID, tid)

	assert.Equal(t, now.Unix(), claims.Iat)
	assert.Equal(t, now.Add(time.Minute).Unix(), claims.Exp)
}

func TestVerifyExpired(t *testing.T) {
	service, err := NewService("test-secret", time.Minute)
	require.NoError(t, err)

	now := time.Now()
	tok, err := service.Mint(42, uuid.NewV4(), uuid.NewV4(), now)
	require.NoError(t, err)

	_, err = service.Verify(tok, now.Add(59*time.Second))
	assert.NoError(t, err)

	_, err = service.Verify(tok, now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	service, err := NewService("test-secret", time.Minute)
	require.NoError(t, err)
	other, err := NewService("other-secret", time.Minute)
	require.NoError(t, err)

	now := time.Now()
	tok, err := service.Mint(42, uuid.NewV4(), uuid.NewV4(), now)
	require.NoError(t, err)

	_, err = other.Verify(tok, now)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyTampered(t *testing.T) {
	service, err := NewService("test-secret", time.Minute)
	require.NoError(t, err)

	now := time.Now()
	tok, err := service.Mint(42, uuid.NewV4(), uuid.NewV4(), now)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	// flip the payload, signature no longer covers it
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	_, err = service.Verify(strings.Join(parts, "."), now)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = service.Verify("not-a-token", now)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
