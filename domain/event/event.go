// Package event defines the outbound events fanned out to connected clients.
// Event names match the wire-level protocol verbs.
package event

import (
	"github.com/google/uuid"

	"chat-relay/domain"
)

type Event interface {
	EventName() string
}

// HistoryLoaded replays a room's persisted tail to a single requester,
// ordered by creation time ascending.
type HistoryLoaded struct {
	Room     domain.RoomID
	Messages []domain.Message
}

func (HistoryLoaded) EventName() string { return "load-history" }

type MessagePosted struct {
	Message domain.Message
}

func (MessagePosted) EventName() string { return "chat-message" }

// Notice is a non-persisted system line delivered to one connection only.
// On the wire it travels as a chat message authored by "System".
type Notice struct {
	Text string
}

func (Notice) EventName() string { return "chat-message" }

type TypingDisplayed struct {
	User string
	Room string
}

func (TypingDisplayed) EventName() string { return "display-typing" }

type UserListUpdated struct {
	Users []string
}

func (UserListUpdated) EventName() string { return "update-user-list" }

type StatusUpdated struct {
	User   string
	Status string
}

func (StatusUpdated) EventName() string { return "status-update" }

// DirectNotification alerts a direct-message counterpart on their private
// per-identity channel, regardless of which room they currently watch.
type DirectNotification struct {
	Sender string
}

func (DirectNotification) EventName() string { return "dm-notification" }

type MessageUpdated struct {
	Message domain.Message
}

func (MessageUpdated) EventName() string { return "update-message" }

type MessageDeleted struct {
	ID uuid.UUID
}

func (MessageDeleted) EventName() string { return "delete-message" }

type RoomCreated struct {
	Name string
}

func (RoomCreated) EventName() string { return "new-room" }

// RoomListLoaded carries the room directory, pushed once per connection.
type RoomListLoaded struct {
	Rooms []string
}

func (RoomListLoaded) EventName() string { return "update-room-list" }

type VoicePeerConnected struct {
	Room   string
	PeerID string
}

func (VoicePeerConnected) EventName() string { return "user-connected-voice" }

type VoicePeerDisconnected struct {
	Room   string
	PeerID string
}

func (VoicePeerDisconnected) EventName() string { return "user-disconnected-voice" }

type SearchResults struct {
	Query    string
	Messages []domain.Message
}

func (SearchResults) EventName() string { return "search-results" }
