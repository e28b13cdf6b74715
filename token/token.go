// Package token mints and verifies the short-lived liveness tokens that
// bridge a passed liveness session to a payment authorization.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	uuid "github.com/satori/go.uuid"
	jose "gopkg.in/square/go-jose.v2"
)

var (
	// ErrTokenExpired - the token exp claim is in the past
	ErrTokenExpired = errors.New("liveness token has expired")
	// ErrTokenInvalid - the token failed signature or structural checks
	ErrTokenInvalid = errors.New("liveness token is invalid")
)

// Claims carried by a liveness token
type Claims struct {
	Sub string `json:"sub"`
	Sid string `json:"sid"`
	Tid string `json:"tid"`
	Iat int64  `json:"iat"`
	Exp int64  `json:"exp"`
}

// EmployeeID parses the sub claim
func (c *Claims) EmployeeID() (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(c.Sub, "%d", &id); err != nil {
		return 0, fmt.Errorf("%w: bad sub claim", ErrTokenInvalid)
	}
	return id, nil
}

// SessionID parses the sid claim
func (c *Claims) SessionID() (uuid.UUID, error) {
	sid, err := uuid.FromString(c.Sid)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad sid claim", ErrTokenInvalid)
	}
	return sid, nil
}

// TerminalID parses the tid claim
func (c *Claims) TerminalID() (uuid.UUID, error) {
	tid, err := uuid.FromString(c.Tid)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad tid claim", ErrTokenInvalid)
	}
	return tid, nil
}

// Service signs and verifies tokens with a shared HMAC secret
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token Service. The secret must be non-empty, a
// service signing tokens with a blank key is worse than one that will
// not start.
func NewService(secret string, ttl time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Service{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured token lifetime
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Mint creates a compact JWS token binding the employee, session and terminal
func (s *Service) Mint(employeeID int64, sessionID, terminalID uuid.UUID, now time.Time) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: s.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create token signer: %w", err)
	}

	claims := Claims{
		Sub: fmt.Sprintf("%d", employeeID),
		Sid: sessionID.String(),
		Tid: terminalID.String(),
		Iat: now.Unix(),
		Exp: now.Add(s.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token claims: %w", err)
	}

	jws, err := signer.Sign(payload)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return jws.CompactSerialize()
}

// Verify parses a compact JWS token, checks the signature, algorithm and
// expiry, and returns the claims
func (s *Service) Verify(token string, now time.Time) (*Claims, error) {
	jws, err := jose.ParseSigned(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	for _, sig := range jws.Signatures {
		if sig.Header.Algorithm != string(jose.HS256) {
			return nil, ErrTokenInvalid
		}
	}

	payload, err := jws.Verify(s.secret)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrTokenInvalid
	}

	if now.Unix() >= claims.Exp {
		return nil, ErrTokenExpired
	}

	return &claims, nil
}
