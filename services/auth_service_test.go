package services_test

import (
	"context"
	"testing"
	"time"

	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/repositories"
	"chat-relay/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestCodec(t *testing.T) *auth.Codec {
	codec, err := auth.NewCodec([]byte("service_test_signing_key"), "chat-relay-test")
	require.NoError(t, err)
	return codec
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIAccountRepository(ctrl)
	mockStore := mocks.NewMockStore(ctrl)
	svc := services.NewAuthService(mockRepo, newTestCodec(t), mockStore, 24*time.Hour)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		password := "ComplexPass123!" // Must satisfy the complexity rules

		// Expect Create to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			Create("alice", "test@example.com", gomock.Not(gomock.Eq(password))).
			Return(7, nil).
			Times(1)

		session, err := svc.Register("alice", "test@example.com", password)

		req.NoError(err)
		req.NotEmpty(session.Token)
		req.Equal("alice", session.Username)
		req.True(session.ExpiresAt.After(time.Now()))
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		session, err := svc.Register("alice", "test@example.com", "simple")

		req.Error(err)
		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(session.Token)
	})

	t.Run("should fail when the account already exists", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			Create("alice", "duplicate@example.com", gomock.Any()).
			Return(0, errors.ErrAccountExists).
			Times(1)

		_, err := svc.Register("alice", "duplicate@example.com", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrAccountExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	codec := newTestCodec(t)
	mockRepo := mocks.NewMockIAccountRepository(ctrl)
	mockStore := mocks.NewMockStore(ctrl)
	svc := services.NewAuthService(mockRepo, codec, mockStore, 24*time.Hour)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		password := "Secret123456!"

		hashedPassword, _ := auth.HashPassword(password)
		stored := repositories.Account{
			ID:           42,
			Username:     "alice",
			Email:        "user@example.com",
			PasswordHash: hashedPassword,
			Authorities:  []string{"user", "admin"},
		}

		mockRepo.EXPECT().
			FindByNameOrEmail("user@example.com").
			Return(stored, nil).
			Times(1)

		session, err := svc.Login("user@example.com", password)

		req.NoError(err)
		req.NotEmpty(session.Token)
		req.Equal("alice", session.Username)

		claims, err := codec.Verify(session.Token)
		req.NoError(err)
		req.Equal(42, claims.UserID)
		req.Equal([]string{"user", "admin"}, claims.Authorities)
		req.Equal(session.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("should return invalid credentials for a wrong password", func(t *testing.T) {
		req := require.New(t)

		hashedPassword, _ := auth.HashPassword("CorrectPassword123!")
		stored := repositories.Account{
			Username:     "alice",
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			FindByNameOrEmail("alice").
			Return(stored, nil).
			Times(1)

		_, err := svc.Login("alice", "WrongPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when the account is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			FindByNameOrEmail("unknown@example.com").
			Return(repositories.Account{}, errors.ErrAccountNotFound).
			Times(1)

		_, err := svc.Login("unknown@example.com", "anyPassword")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	codec := newTestCodec(t)
	mockRepo := mocks.NewMockIAccountRepository(ctrl)
	mockStore := mocks.NewMockStore(ctrl)
	svc := services.NewAuthService(mockRepo, codec, mockStore, 24*time.Hour)
	ctx := context.Background()

	t.Run("should revoke the token's jti until its natural expiry", func(t *testing.T) {
		req := require.New(t)
		token, claims, err := codec.Issue(42, "alice", []string{"user"}, time.Hour)
		req.NoError(err)

		mockStore.EXPECT().
			Revoke(ctx, claims.JTI(), gomock.Any()).
			Return(true, nil).
			Times(1)

		revoked, err := svc.Logout(ctx, token)
		req.NoError(err)
		req.True(revoked)
	})

	t.Run("should be a visible no-op on a second logout", func(t *testing.T) {
		req := require.New(t)
		token, claims, err := codec.Issue(42, "alice", []string{"user"}, time.Hour)
		req.NoError(err)

		mockStore.EXPECT().
			Revoke(ctx, claims.JTI(), gomock.Any()).
			Return(false, nil).
			Times(1)

		revoked, err := svc.Logout(ctx, token)
		req.NoError(err)
		req.False(revoked)
	})

	t.Run("should refuse to revoke a token that does not verify", func(t *testing.T) {
		req := require.New(t)

		mockStore.EXPECT().Revoke(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		revoked, err := svc.Logout(ctx, "garbage-token")
		req.NoError(err)
		req.False(revoked)
	})
}
