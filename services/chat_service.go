package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/search"
)

// HistoryLimit caps the replay sent to a joining connection. Older messages
// stay on disk; only the tail is pushed.
const HistoryLimit = 50

type IChatService interface {
	Connect(ctx context.Context, identity domain.Identity, sink contract.EventSink) (runtime.ConnID, error)
	Disconnect(id runtime.ConnID) (domain.Identity, bool)
	Join(ctx context.Context, id runtime.ConnID, room domain.RoomID) error
	Submit(ctx context.Context, id runtime.ConnID, content string, replyTo *domain.ReplyRef) error
	Edit(ctx context.Context, id runtime.ConnID, messageID uuid.UUID, content string) error
	Delete(ctx context.Context, id runtime.ConnID, messageID uuid.UUID) error
	ToggleReaction(ctx context.Context, id runtime.ConnID, messageID uuid.UUID, emoji string) error
	Typing(ctx context.Context, id runtime.ConnID) error
	CreateRoom(ctx context.Context, id runtime.ConnID, name string) error
	Search(ctx context.Context, id runtime.ConnID, raw string) error
}

// ChatService owns the message path: sanitize, persist, fan out. Ordering
// is persist-then-broadcast, so no client ever renders a message the store
// did not accept.
type ChatService struct {
	registry  *runtime.Registry
	messages  repositories.IMessageRepository
	rooms     repositories.IRoomRepository
	users     repositories.IUserRepository
	moderator *moderation.Moderator
	index     search.IIndex
	indexJobs chan workers.IndexJob
	log       *slog.Logger
}

func NewChatService(
	registry *runtime.Registry,
	messages repositories.IMessageRepository,
	rooms repositories.IRoomRepository,
	users repositories.IUserRepository,
	moderator *moderation.Moderator,
	index search.IIndex,
	indexJobs chan workers.IndexJob,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		registry:  registry,
		messages:  messages,
		rooms:     rooms,
		users:     users,
		moderator: moderator,
		index:     index,
		indexJobs: indexJobs,
		log:       log,
	}
}

// Connect admits an authenticated connection, places it in the default
// room, replays that room's history, and pushes the room directory. A
// failure on any of those steps unregisters the session again: a
// connection that never finished connecting must not linger as a
// broadcast target.
func (s *ChatService) Connect(ctx context.Context, identity domain.Identity, sink contract.EventSink) (runtime.ConnID, error) {
	id := s.registry.Register(identity, sink)
	if err := s.replay(ctx, sink, domain.NamedRoom(domain.DefaultRoom)); err != nil {
		s.registry.Unregister(id)
		return "", err
	}
	names, err := s.rooms.List()
	if err != nil {
		s.registry.Unregister(id)
		return "", err
	}
	if err := sink.Consume(ctx, event.RoomListLoaded{Rooms: names}); err != nil {
		s.registry.Unregister(id)
		return "", err
	}
	return id, nil
}

// Disconnect removes the connection and reports whether it was the
// identity's last one.
func (s *ChatService) Disconnect(id runtime.ConnID) (domain.Identity, bool) {
	return s.registry.Unregister(id)
}

// Join moves the connection into a room, then replays the room's tail and
// confirms with a private notice. A connection is always in exactly one
// room; the previous membership ends in the same step. Rooms come into
// being by joining them: an unknown name just replays empty history.
func (s *ChatService) Join(ctx context.Context, id runtime.ConnID, room domain.RoomID) error {
	if room.IsDirect() {
		// Direct rooms are only enterable by their two participants;
		// anyone else asking for the identifier gets nothing.
		identity, ok := s.registry.Identity(id)
		if !ok {
			return errors.ErrNotAuthorized
		}
		if _, ok := room.Counterpart(identity.Name); !ok {
			s.log.Warn("direct room join refused, caller is not a participant",
				"room", room, "identity", identity.Name)
			return errors.ErrNotAuthorized
		}
	} else if err := domain.ValidateRoomName(room.String()); err != nil {
		return err
	}

	if _, ok := s.registry.Move(id, room); !ok {
		return errors.ErrNotAuthorized
	}

	sink, ok := s.registry.Sink(id)
	if !ok {
		return errors.ErrNotAuthorized
	}
	if err := s.replay(ctx, sink, room); err != nil {
		return err
	}
	return sink.Consume(ctx, event.Notice{Text: fmt.Sprintf("You joined #%s", room)})
}

// Submit runs the full message path: censor, persist, broadcast to the
// room, and for direct rooms alert the counterpart on every one of their
// connections. A store failure drops the message entirely; nothing is
// broadcast that was not persisted first.
func (s *ChatService) Submit(ctx context.Context, id runtime.ConnID, content string, replyTo *domain.ReplyRef) error {
	identity, ok := s.registry.Identity(id)
	if !ok {
		return errors.ErrNotAuthorized
	}
	room, _ := s.registry.Room(id)

	sanitized, _ := s.moderator.Censor(content)

	avatar, err := s.users.FindAvatar(identity.Name)
	if err != nil {
		s.log.Warn("avatar lookup failed", "identity", identity.Name, "err", err)
	}

	message, err := s.messages.Append(domain.Message{
		Room:      room,
		Author:    identity.Name,
		Content:   sanitized,
		AvatarRef: avatar,
		ReplyTo:   replyTo,
	})
	if err != nil {
		s.log.Error("message dropped, store rejected it", "room", room, "author", identity.Name, "err", err)
		if sink, ok := s.registry.Sink(id); ok {
			_ = sink.Consume(ctx, event.Notice{Text: "Your message could not be delivered, please retry"})
		}
		return err
	}

	s.broadcast(ctx, s.registry.SinksForRoom(room), event.MessagePosted{Message: message})

	if counterpart, ok := room.Counterpart(identity.Name); ok {
		s.broadcast(ctx, s.registry.SinksForIdentity(counterpart),
			event.DirectNotification{Sender: identity.Name})
	}

	s.enqueueIndex(workers.IndexJob{Message: message})
	return nil
}

// Edit rewrites a message's content. Only the author may edit; requests by
// anyone else are dropped without feedback. Authorship is checked inside
// the store transaction, so the edit never lands on a message it did not
// read. Edits never change the author or the position in history.
func (s *ChatService) Edit(ctx context.Context, id runtime.ConnID, messageID uuid.UUID, content string) error {
	identity, ok := s.registry.Identity(id)
	if !ok {
		return errors.ErrNotAuthorized
	}

	sanitized, _ := s.moderator.Censor(content)

	message, err := s.messages.Edit(messageID, identity.Name, sanitized)
	if stderrors.Is(err, errors.ErrMessageNotFound) {
		return nil
	}
	if stderrors.Is(err, errors.ErrNotAuthorized) {
		s.log.Debug("edit refused, not the author", "message_id", messageID, "identity", identity.Name)
		return nil
	}
	if err != nil {
		return err
	}

	s.broadcast(ctx, s.registry.Sinks(), event.MessageUpdated{Message: message})
	s.enqueueIndex(workers.IndexJob{Message: message})
	return nil
}

// Delete removes a message. Allowed for the author and for any identity
// holding the moderator role; anyone else is ignored without feedback.
func (s *ChatService) Delete(ctx context.Context, id runtime.ConnID, messageID uuid.UUID) error {
	identity, ok := s.registry.Identity(id)
	if !ok {
		return errors.ErrNotAuthorized
	}

	message, err := s.messages.FindByID(messageID)
	if stderrors.Is(err, errors.ErrMessageNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if message.Author != identity.Name && !identity.HasRole(domain.RoleModerator) {
		s.log.Debug("delete refused", "message_id", messageID, "identity", identity.Name)
		return nil
	}

	if err := s.messages.Delete(messageID); err != nil {
		return err
	}

	s.broadcast(ctx, s.registry.Sinks(), event.MessageDeleted{ID: messageID})
	s.enqueueIndex(workers.IndexJob{Remove: true, ID: messageID})
	return nil
}

// ToggleReaction flips the caller's reaction on a message and broadcasts
// the updated message. A missing message is a silent no-op.
func (s *ChatService) ToggleReaction(ctx context.Context, id runtime.ConnID, messageID uuid.UUID, emoji string) error {
	identity, ok := s.registry.Identity(id)
	if !ok {
		return errors.ErrNotAuthorized
	}

	message, err := s.messages.ToggleReaction(messageID, emoji, identity.Name)
	if stderrors.Is(err, errors.ErrMessageNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.broadcast(ctx, s.registry.Sinks(), event.MessageUpdated{Message: message})
	return nil
}

// Typing tells the other members of the caller's room that they are
// composing. The caller never receives their own indicator.
func (s *ChatService) Typing(ctx context.Context, id runtime.ConnID) error {
	identity, ok := s.registry.Identity(id)
	if !ok {
		return errors.ErrNotAuthorized
	}
	room, _ := s.registry.Room(id)

	s.broadcast(ctx, s.registry.SinksForRoomExcept(room, id),
		event.TypingDisplayed{User: identity.Name, Room: room.String()})
	return nil
}

// CreateRoom registers a named channel and announces it to everyone.
func (s *ChatService) CreateRoom(ctx context.Context, id runtime.ConnID, name string) error {
	if _, ok := s.registry.Identity(id); !ok {
		return errors.ErrNotAuthorized
	}
	if err := s.rooms.Create(name); err != nil {
		return err
	}
	s.broadcast(ctx, s.registry.Sinks(), event.RoomCreated{Name: name})
	return nil
}

// Search answers a full-text query scoped to the caller's room. Results go
// back to the requesting connection only.
func (s *ChatService) Search(ctx context.Context, id runtime.ConnID, raw string) error {
	sink, ok := s.registry.Sink(id)
	if !ok {
		return errors.ErrNotAuthorized
	}
	room, _ := s.registry.Room(id)

	query := search.ParseQuery(raw)
	ids, err := s.index.Search(ctx, room, query.Terms)
	if err != nil {
		return err
	}

	messages := make([]domain.Message, 0, len(ids))
	for _, messageID := range ids {
		if len(messages) == query.Limit {
			break
		}
		message, err := s.messages.FindByID(messageID)
		if stderrors.Is(err, errors.ErrMessageNotFound) {
			// Indexed but deleted since: skip.
			continue
		}
		if err != nil {
			return err
		}
		if query.Author != "" && message.Author != query.Author {
			continue
		}
		messages = append(messages, message)
	}

	return sink.Consume(ctx, event.SearchResults{Query: query.Terms, Messages: messages})
}

func (s *ChatService) replay(ctx context.Context, sink contract.EventSink, room domain.RoomID) error {
	messages, err := s.messages.FindByRoom(room, HistoryLimit)
	if err != nil {
		return err
	}
	return sink.Consume(ctx, event.HistoryLoaded{Room: room, Messages: messages})
}

func (s *ChatService) broadcast(ctx context.Context, sinks []contract.EventSink, evt event.Event) {
	for _, sink := range sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			s.log.Warn("sink refused event", "event", evt.EventName(), "err", err)
		}
	}
}

func (s *ChatService) enqueueIndex(job workers.IndexJob) {
	select {
	case s.indexJobs <- job:
	default:
		s.log.Warn("index queue full, dropping job")
	}
}
