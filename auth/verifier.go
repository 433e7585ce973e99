package auth

import (
	"context"

	apperrors "chat-relay/errors"
	"chat-relay/revocation"
)

// Verifier composes signature verification with the revocation check.
// Every place a token gates access (in-band WebSocket binding, HTTP logout)
// goes through Verify; the codec alone is never enough because a logged-out
// token still carries a valid signature.
type Verifier struct {
	codec *Codec
	store revocation.Store
}

func NewVerifier(codec *Codec, store revocation.Store) *Verifier {
	return &Verifier{codec: codec, store: store}
}

// Verify returns the claims of a token that is well-formed, correctly
// signed, unexpired and not revoked. Any other token is unauthenticated.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := v.codec.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := v.store.IsRevoked(ctx, claims.JTI())
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}
