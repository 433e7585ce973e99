package repositories

import (
	"testing"

	apperrors "chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// setupTestRepo initializes a repository over a temporary in-memory Badger.
func setupTestRepo(t *testing.T) *AccountRepository {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)

	repo, err := NewAccountRepository(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = repo.Close()
		_ = db.Close()
	})
	return repo
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	req := require.New(t)
	repo := setupTestRepo(t)

	id, err := repo.Create("alice", "alice@example.com", "$argon2id$fake-hash")
	req.NoError(err)
	req.Positive(id)

	t.Run("should find the account by username", func(t *testing.T) {
		account, err := repo.FindByNameOrEmail("alice")
		req.NoError(err)
		req.Equal(id, account.ID)
		req.Equal("alice@example.com", account.Email)
		req.Equal([]string{"user"}, account.Authorities)
		req.False(account.CreatedAt.IsZero())
	})

	t.Run("should find the same account by email", func(t *testing.T) {
		account, err := repo.FindByNameOrEmail("alice@example.com")
		req.NoError(err)
		req.Equal(id, account.ID)
		req.Equal("alice", account.Username)
	})

	t.Run("should report an unknown account", func(t *testing.T) {
		_, err := repo.FindByNameOrEmail("nobody")
		req.ErrorIs(err, apperrors.ErrAccountNotFound)
	})
}

func TestAccountRepository_DistinctIDs(t *testing.T) {
	req := require.New(t)
	repo := setupTestRepo(t)

	first, err := repo.Create("alice", "alice@example.com", "hash")
	req.NoError(err)
	second, err := repo.Create("bob", "bob@example.com", "hash")
	req.NoError(err)

	req.NotEqual(first, second)
}

func TestAccountRepository_DuplicateRejected(t *testing.T) {
	req := require.New(t)
	repo := setupTestRepo(t)

	_, err := repo.Create("alice", "alice@example.com", "hash")
	req.NoError(err)

	t.Run("should reject a duplicate username", func(t *testing.T) {
		_, err := repo.Create("alice", "other@example.com", "hash")
		req.ErrorIs(err, apperrors.ErrAccountExists)
	})

	t.Run("should reject a duplicate email", func(t *testing.T) {
		_, err := repo.Create("alice2", "alice@example.com", "hash")
		req.ErrorIs(err, apperrors.ErrAccountExists)
	})
}
