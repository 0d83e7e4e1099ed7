package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	domain "meetup/internal/domain/session"
)

// Store persists sessions keyed by an opaque cookie token.
type Store interface {
	Create(ctx context.Context, s domain.Session) (string, error)
	Get(ctx context.Context, token string) (domain.Session, error)
	Update(ctx context.Context, token string, s domain.Session) error
	Delete(ctx context.Context, token string) error
}

// newToken returns 32 random bytes hex-encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
