//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/domain"
	"chat-relay/errors"
)

type IRoomRepository interface {
	Create(name string) error
	List() ([]string, error)
}

// RoomRepository tracks the set of named rooms. Direct-message rooms are
// derived from identity pairs and never stored here.
type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) RoomRepository {
	return RoomRepository{db: db, log: log}
}

func roomKey(name string) []byte {
	return []byte("room:" + name)
}

// Create registers a named room. ErrRoomAlreadyExists when the name is
// taken, ErrInvalidRoomName when it fails validation.
func (r RoomRepository) Create(name string) error {
	if err := domain.ValidateRoomName(name); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(roomKey(name))
		if err == nil {
			return errors.ErrRoomAlreadyExists
		}
		if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(roomKey(name), []byte{})
	})
	if stderrors.Is(err, errors.ErrRoomAlreadyExists) || stderrors.Is(err, errors.ErrInvalidRoomName) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	return nil
}

// List returns all named rooms sorted alphabetically, the default room
// included whether or not it was ever written.
func (r RoomRepository) List() ([]string, error) {
	names := map[string]struct{}{domain.DefaultRoom: {}}

	prefix := []byte("room:")
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names[string(it.Item().Key()[len(prefix):])] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	return sorted, nil
}
