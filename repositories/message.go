//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/errors"
)

// updateRetries bounds the optimistic-concurrency loop on in-place updates.
const updateRetries = 3

type IMessageRepository interface {
	Append(message domain.Message) (domain.Message, error)
	FindByRoom(room domain.RoomID, limit int) ([]domain.Message, error)
	FindByID(id uuid.UUID) (domain.Message, error)
	Edit(id uuid.UUID, author, content string) (domain.Message, error)
	Delete(id uuid.UUID) error
	ToggleReaction(id uuid.UUID, emoji, identity string) (domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// DiskMessage is the storage-level representation of a message.
type DiskMessage struct {
	ID        uuid.UUID          `json:"id"`
	Room      string             `json:"room"`
	Author    string             `json:"author"`
	Content   string             `json:"content"`
	AvatarRef string             `json:"avatar_ref,omitempty"`
	At        time.Time          `json:"at"`
	Edited    bool               `json:"edited,omitempty"`
	Reactions map[string][]string `json:"reactions,omitempty"`
	ReplyTo   *DiskReplyRef      `json:"reply_to,omitempty"`
}

type DiskReplyRef struct {
	MessageID uuid.UUID `json:"message_id"`
	Author    string    `json:"author"`
	Excerpt   string    `json:"excerpt"`
}

// Two keys per message:
//   - "msg:{room}:{timestamp_padded}:{uuid}" holds the payload. The 19-digit
//     zero padding makes a lexicographic prefix scan return chronological
//     order, and the UUID disambiguates same-nanosecond arrivals.
//   - "msgid:{uuid}" maps the message id back to the payload key so lookups,
//     edits, deletions, and reaction toggles don't need the room or time.
func messageKey(room string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", room, at.UnixNano(), id))
}

func idKey(id uuid.UUID) []byte {
	return []byte("msgid:" + id.String())
}

// Append persists a new message, assigning its id and creation timestamp.
// The returned message is the stored one; callers broadcast that, never
// their own copy.
func (m MessageRepository) Append(message domain.Message) (domain.Message, error) {
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()
	if message.Reactions == nil {
		message.Reactions = domain.Reactions{}
	}

	disk := fromMessage(message)
	data, err := json.Marshal(disk)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}

	key := messageKey(disk.Room, disk.At, disk.ID)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(idKey(disk.ID), key)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	return toMessage(disk), nil
}

// FindByRoom retrieves the most recent messages of a room, capped to limit,
// in ascending creation order. It scans the room prefix backwards from the
// newest possible key and reverses the collected slice.
func (m MessageRepository) FindByRoom(room domain.RoomID, limit int) ([]domain.Message, error) {
	var raw [][]byte
	prefix := []byte(fmt.Sprintf("msg:%s:", room))

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(raw) == limit {
				break
			}
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			raw = append(raw, value)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}

	messages := make([]domain.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var disk DiskMessage
		if err := json.Unmarshal(raw[i], &disk); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrStore, err)
		}
		messages = append(messages, toMessage(disk))
	}
	return messages, nil
}

func (m MessageRepository) FindByID(id uuid.UUID) (domain.Message, error) {
	var disk DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		return m.load(txn, id, &disk)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(disk), nil
}

// Edit rewrites a message's content in place. The load and the write share
// one transaction, so a reaction toggle committing in between aborts the
// edit instead of being overwritten by its stale copy. Only the stored
// author may edit; the storage key is derived from the original room and
// creation time, both immutable, so a message never moves within history.
func (m MessageRepository) Edit(id uuid.UUID, author, content string) (domain.Message, error) {
	return m.mutate(id, func(disk *DiskMessage) error {
		if disk.Author != author {
			return errors.ErrNotAuthorized
		}
		disk.Content = content
		disk.Edited = true
		return nil
	})
}

func (m MessageRepository) Delete(id uuid.UUID) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		key, err := m.resolve(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(idKey(id))
	})
	if stderrors.Is(err, errors.ErrMessageNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	return nil
}

// ToggleReaction flips the identity's membership on the emoji's reactor
// set: conditional removal first, addition when nothing was removed.
func (m MessageRepository) ToggleReaction(id uuid.UUID, emoji, identity string) (domain.Message, error) {
	return m.mutate(id, func(disk *DiskMessage) error {
		reactions := domain.Reactions(disk.Reactions)
		if reactions == nil {
			reactions = domain.Reactions{}
		}
		if !reactions.Remove(emoji, identity) {
			reactions.Add(emoji, identity)
		}
		disk.Reactions = reactions
		return nil
	})
}

// mutate applies an in-place change to a stored message inside one
// serializable transaction. Badger aborts conflicting transactions with
// ErrConflict, so concurrent mutators retry against the fresh payload
// instead of clobbering each other — the optimistic substitute for a
// native conditional update.
func (m MessageRepository) mutate(id uuid.UUID, apply func(*DiskMessage) error) (domain.Message, error) {
	var updated domain.Message

	for attempt := 0; attempt < updateRetries; attempt++ {
		err := m.db.Update(func(txn *badger.Txn) error {
			var disk DiskMessage
			if err := m.load(txn, id, &disk); err != nil {
				return err
			}
			if err := apply(&disk); err != nil {
				return err
			}

			data, err := json.Marshal(disk)
			if err != nil {
				return err
			}
			key, err := m.resolve(txn, id)
			if err != nil {
				return err
			}
			if err := txn.Set(key, data); err != nil {
				return err
			}
			updated = toMessage(disk)
			return nil
		})

		switch {
		case err == nil:
			return updated, nil
		case stderrors.Is(err, errors.ErrMessageNotFound), stderrors.Is(err, errors.ErrNotAuthorized):
			return domain.Message{}, err
		case stderrors.Is(err, badger.ErrConflict):
			m.log.Debug("message update conflict, retrying",
				"message_id", id, "attempt", attempt+1)
			continue
		default:
			return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStore, err)
		}
	}
	return domain.Message{}, fmt.Errorf("%w: message update kept conflicting", errors.ErrStore)
}

// resolve follows the id index to the payload key.
func (m MessageRepository) resolve(txn *badger.Txn, id uuid.UUID) ([]byte, error) {
	item, err := txn.Get(idKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (m MessageRepository) load(txn *badger.Txn, id uuid.UUID, disk *DiskMessage) error {
	key, err := m.resolve(txn, id)
	if err != nil {
		return err
	}
	item, err := txn.Get(key)
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		// Dangling index entry: treat as absent.
		return errors.ErrMessageNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, disk)
	})
}

func fromMessage(message domain.Message) DiskMessage {
	disk := DiskMessage{
		ID:        message.ID,
		Room:      message.Room.String(),
		Author:    message.Author,
		Content:   message.Content,
		AvatarRef: message.AvatarRef,
		At:        message.CreatedAt,
		Edited:    message.Edited,
		Reactions: message.Reactions.Clone(),
	}
	if message.ReplyTo != nil {
		disk.ReplyTo = lo.ToPtr(DiskReplyRef(*message.ReplyTo))
	}
	return disk
}

func toMessage(disk DiskMessage) domain.Message {
	message := domain.Message{
		ID:        disk.ID,
		Room:      domain.ParseRoomID(disk.Room),
		Author:    disk.Author,
		Content:   disk.Content,
		AvatarRef: disk.AvatarRef,
		CreatedAt: disk.At,
		Edited:    disk.Edited,
		Reactions: domain.Reactions(disk.Reactions),
	}
	if disk.ReplyTo != nil {
		message.ReplyTo = lo.ToPtr(domain.ReplyRef(*disk.ReplyTo))
	}
	return message
}
