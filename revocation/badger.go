package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const revokedKeyPrefix = "revoked:"

// BadgerStore keeps revocation entries in the embedded BadgerDB, using the
// store's native entry TTL so expired entries disappear on their own.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Revoke(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	key := []byte(revokedKeyPrefix + jti)
	revoked := false

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			// Already revoked: keep the original entry and its TTL.
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		entry := badger.NewEntry(key, nil).WithTTL(clampTTL(expiresAt))
		if err := txn.SetEntry(entry); err != nil {
			return err
		}
		revoked = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("revoking token %s: %w", jti, err)
	}
	return revoked, nil
}

func (s *BadgerStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(revokedKeyPrefix + jti))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
