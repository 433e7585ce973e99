//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_revocation_store.go -package=mocks
package revocation

import (
	"context"
	"time"
)

// Store maps a token identifier (jti) to its remaining validity window so
// that explicitly invalidated tokens are rejected before their natural
// expiry. Entries self-expire: once a token would have expired anyway, the
// entry is redundant and the backend may drop it.
type Store interface {
	// Revoke inserts the jti with a time-to-live of expiresAt - now,
	// clamped to zero. It returns true on first revocation and false when
	// the jti was already revoked (idempotent no-op).
	Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error)

	// IsRevoked reports whether the jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func clampTTL(expiresAt time.Time) time.Duration {
	ttl := time.Until(expiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
