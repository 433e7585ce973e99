//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"time"

	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/repositories"
	"chat-relay/revocation"
)

// Session is what a successful login hands back to the client: the signed
// bearer token plus what the client needs to display and schedule a refresh.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expire"`
	Username  string    `json:"username"`
}

type IAuthService interface {
	Register(username, email, password string) (Session, error)
	Login(usernameOrEmail, password string) (Session, error)
	Logout(ctx context.Context, rawToken string) (bool, error)
}

type AuthService struct {
	accounts repositories.IAccountRepository
	codec    *auth.Codec
	revoked  revocation.Store
	tokenTTL time.Duration
}

func NewAuthService(accounts repositories.IAccountRepository, codec *auth.Codec,
	revoked revocation.Store, tokenTTL time.Duration) IAuthService {
	return &AuthService{accounts: accounts, codec: codec, revoked: revoked, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(username, email, password string) (Session, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}

	// Validate business rules before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return Session{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing happens in the service layer to keep the repository unaware
	// of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	id, err := s.accounts.Create(username, email, hashedPassword)
	if err != nil {
		return Session{}, err // Propagates ErrAccountExists if the name or email is taken.
	}

	return s.issueSession(id, username, []string{"user"})
}

func (s *AuthService) Login(usernameOrEmail, password string) (Session, error) {
	account, err := s.accounts.FindByNameOrEmail(usernameOrEmail)
	if err != nil {
		// Generic error to prevent account enumeration.
		return Session{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, account.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	return s.issueSession(account.ID, account.Username, account.Authorities)
}

// Logout revokes the token's jti for the remainder of its natural lifetime.
// It returns false when the token is invalid or was already revoked, so a
// repeated logout is a visible no-op rather than an error.
func (s *AuthService) Logout(ctx context.Context, rawToken string) (bool, error) {
	claims, err := s.codec.Verify(rawToken)
	if err != nil {
		return false, nil
	}
	return s.revoked.Revoke(ctx, claims.JTI(), claims.ExpiresAt.Time)
}

func (s *AuthService) issueSession(id int, username string, authorities []string) (Session, error) {
	token, claims, err := s.codec.Issue(id, username, authorities, s.tokenTTL)
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}
	return Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Username:  username,
	}, nil
}
