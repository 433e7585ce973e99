//go:generate go run go.uber.org/mock/mockgen -source=account.go -destination=../mocks/mock_account_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"strconv"
	"time"

	"chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
)

type IAccountRepository interface {
	Create(username, email, hashedPassword string) (int, error)
	FindByNameOrEmail(text string) (Account, error)
	Close() error
}

// Account is the stored identity record. ID is the durable identity key a
// WebSocket connection adopts after binding.
type Account struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Authorities  []string  `json:"authorities"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	accountKeyPrefix = "account:id:"
	nameIndexPrefix  = "account:name:"
	emailIndexPrefix = "account:email:"
	accountSequence  = "account:seq"
)

type AccountRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewAccountRepository(db *badger.DB) (*AccountRepository, error) {
	seq, err := db.GetSequence([]byte(accountSequence), 64)
	if err != nil {
		return nil, fmt.Errorf("opening account sequence: %w", err)
	}
	return &AccountRepository{db: db, seq: seq}, nil
}

// Close releases the unused tail of the id sequence back to the store.
func (r *AccountRepository) Close() error {
	return r.seq.Release()
}

// Create persists a new account with a fresh numeric id. The username and
// email each get a secondary index entry; a clash on either one fails the
// whole transaction with ErrAccountExists.
func (r *AccountRepository) Create(username, email, hashedPassword string) (int, error) {
	next, err := r.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("allocating account id: %w", err)
	}
	// Sequence values start at 0; ids start at 1.
	id := int(next) + 1

	account := Account{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Authorities:  []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(account)
	if err != nil {
		return 0, fmt.Errorf("marshal failed: %w", err)
	}

	idKey := []byte(accountKeyPrefix + strconv.Itoa(id))
	err = r.db.Update(func(txn *badger.Txn) error {
		for _, index := range [][]byte{
			[]byte(nameIndexPrefix + username),
			[]byte(emailIndexPrefix + email),
		} {
			if _, err := txn.Get(index); err == nil {
				return errors.ErrAccountExists
			} else if !goerrors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(index, idKey); err != nil {
				return err
			}
		}
		return txn.Set(idKey, data)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByNameOrEmail resolves the text through the name index first, then the
// email index, and loads the account record.
func (r *AccountRepository) FindByNameOrEmail(text string) (Account, error) {
	var account Account

	err := r.db.View(func(txn *badger.Txn) error {
		idKey, err := lookupIndex(txn, []byte(nameIndexPrefix+text))
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			idKey, err = lookupIndex(txn, []byte(emailIndexPrefix+text))
		}
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrAccountNotFound
		}
		if err != nil {
			return err
		}

		item, err := txn.Get(idKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &account)
		})
	})
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

func lookupIndex(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
