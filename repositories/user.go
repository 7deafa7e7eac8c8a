//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/errors"
)

// DefaultStatus is what an identity reports before ever setting one.
const DefaultStatus = "online"

type IUserRepository interface {
	SaveStatus(identity, status string) error
	FindStatus(identity string) (string, error)
	SaveAvatar(identity, ref string) error
	FindAvatar(identity string) (string, error)
}

// UserRepository keeps per-identity profile fields that outlive connections:
// the free-form status line and the avatar reference.
type UserRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewUserRepository(db *badger.DB, log *slog.Logger) UserRepository {
	return UserRepository{db: db, log: log}
}

func statusKey(identity string) []byte {
	return []byte("user:status:" + identity)
}

func avatarKey(identity string) []byte {
	return []byte("user:avatar:" + identity)
}

func (u UserRepository) SaveStatus(identity, status string) error {
	return u.set(statusKey(identity), status)
}

// FindStatus returns the stored status, or DefaultStatus when the identity
// never set one.
func (u UserRepository) FindStatus(identity string) (string, error) {
	return u.get(statusKey(identity), DefaultStatus)
}

func (u UserRepository) SaveAvatar(identity, ref string) error {
	return u.set(avatarKey(identity), ref)
}

func (u UserRepository) FindAvatar(identity string) (string, error) {
	return u.get(avatarKey(identity), "")
}

func (u UserRepository) set(key []byte, value string) error {
	err := u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(value))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	return nil
}

func (u UserRepository) get(key []byte, fallback string) (string, error) {
	var value string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	return value, nil
}
