package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// systemAuthor is the author stamped on notices so clients render them as
// regular chat lines.
const systemAuthor = "System"

// Envelope is the wire frame in both directions: a verb plus a
// verb-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads.

type JoinPayload struct {
	Room string `json:"room"`
}

type JoinDirectPayload struct {
	User string `json:"user"`
}

type SubmitPayload struct {
	Content string           `json:"content"`
	ReplyTo *ReplyRefPayload `json:"reply_to,omitempty"`
}

type ReplyRefPayload struct {
	MessageID uuid.UUID `json:"message_id"`
	Author    string    `json:"author"`
	Excerpt   string    `json:"excerpt"`
}

type EditPayload struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
}

type DeletePayload struct {
	ID uuid.UUID `json:"id"`
}

type ReactionPayload struct {
	ID    uuid.UUID `json:"id"`
	Emoji string    `json:"emoji"`
}

type StatusPayload struct {
	Status string `json:"status"`
}

type RoomPayload struct {
	Name string `json:"name"`
}

type SearchPayload struct {
	Query string `json:"query"`
}

type VoicePayload struct {
	PeerID string `json:"peer_id"`
}

// Outbound payloads.

type WireMessage struct {
	ID        uuid.UUID           `json:"id"`
	Room      string              `json:"room"`
	Author    string              `json:"author"`
	Content   string              `json:"content"`
	AvatarRef string              `json:"avatar_ref,omitempty"`
	At        time.Time           `json:"at"`
	Edited    bool                `json:"edited,omitempty"`
	Reactions map[string][]string `json:"reactions,omitempty"`
	ReplyTo   *ReplyRefPayload    `json:"reply_to,omitempty"`
}

func toWireMessage(m domain.Message) WireMessage {
	wire := WireMessage{
		ID:        m.ID,
		Room:      m.Room.String(),
		Author:    m.Author,
		Content:   m.Content,
		AvatarRef: m.AvatarRef,
		At:        m.CreatedAt,
		Edited:    m.Edited,
		Reactions: m.Reactions,
	}
	if m.ReplyTo != nil {
		wire.ReplyTo = lo.ToPtr(ReplyRefPayload(*m.ReplyTo))
	}
	return wire
}

func toWireMessages(messages []domain.Message) []WireMessage {
	return lo.Map(messages, func(m domain.Message, _ int) WireMessage {
		return toWireMessage(m)
	})
}

// EncodeEvent maps a domain event onto its wire envelope. Notices travel
// as system-authored chat messages, matching what clients already render.
func EncodeEvent(evt event.Event) ([]byte, error) {
	var payload any

	switch e := evt.(type) {
	case event.HistoryLoaded:
		payload = struct {
			Room     string        `json:"room"`
			Messages []WireMessage `json:"messages"`
		}{Room: e.Room.String(), Messages: toWireMessages(e.Messages)}
	case event.MessagePosted:
		payload = toWireMessage(e.Message)
	case event.Notice:
		payload = WireMessage{
			Author:  systemAuthor,
			Content: e.Text,
			At:      time.Now().UTC(),
		}
	case event.MessageUpdated:
		payload = toWireMessage(e.Message)
	case event.MessageDeleted:
		payload = struct {
			ID uuid.UUID `json:"id"`
		}{ID: e.ID}
	case event.TypingDisplayed:
		payload = struct {
			User string `json:"user"`
			Room string `json:"room"`
		}{User: e.User, Room: e.Room}
	case event.UserListUpdated:
		payload = struct {
			Users []string `json:"users"`
		}{Users: e.Users}
	case event.StatusUpdated:
		payload = struct {
			User   string `json:"user"`
			Status string `json:"status"`
		}{User: e.User, Status: e.Status}
	case event.DirectNotification:
		payload = struct {
			Sender string `json:"sender"`
		}{Sender: e.Sender}
	case event.RoomCreated:
		payload = struct {
			Name string `json:"name"`
		}{Name: e.Name}
	case event.RoomListLoaded:
		payload = struct {
			Rooms []string `json:"rooms"`
		}{Rooms: e.Rooms}
	case event.VoicePeerConnected:
		payload = struct {
			Room   string `json:"room"`
			PeerID string `json:"peer_id"`
		}{Room: e.Room, PeerID: e.PeerID}
	case event.VoicePeerDisconnected:
		payload = struct {
			Room   string `json:"room"`
			PeerID string `json:"peer_id"`
		}{Room: e.Room, PeerID: e.PeerID}
	case event.SearchResults:
		payload = struct {
			Query    string        `json:"query"`
			Messages []WireMessage `json:"messages"`
		}{Query: e.Query, Messages: toWireMessages(e.Messages)}
	default:
		return nil, fmt.Errorf("unknown event type %T", evt)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: evt.EventName(), Data: data})
}
