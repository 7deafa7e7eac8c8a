// Package ws exposes the relay over WebSocket: one goroutine reads client
// verbs, another drains the connection's sink into the socket.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
	"chat-relay/services"
	"chat-relay/sink"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxMessageSize = 16 * 1024
)

// Inbound verbs.
const (
	verbJoin       = "join-room"
	verbJoinDirect = "join-direct"
	verbSubmit     = "chat-message"
	verbEdit       = "edit-message"
	verbDelete     = "delete-message"
	verbReaction   = "toggle-reaction"
	verbTyping     = "typing"
	verbNewRoom    = "new-room"
	verbAnnounce   = "new-user"
	verbUserList   = "get-user-list"
	verbStatus     = "status-update"
	verbSearch     = "search"
	verbJoinVoice  = "join-voice"
	verbLeaveVoice = "leave-voice"
)

type Server struct {
	verifier contract.ITokenVerifier
	chat     services.IChatService
	presence services.IPresenceService
	voice    services.IVoiceService
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewServer(
	verifier contract.ITokenVerifier,
	chat services.IChatService,
	presence services.IPresenceService,
	voice services.IVoiceService,
	log *slog.Logger,
) *Server {
	return &Server{
		verifier: verifier,
		chat:     chat,
		presence: presence,
		voice:    voice,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Handler upgrades an authenticated request to a relay connection.
// Verification happens before the upgrade: a bad token never creates any
// connection state.
func (s *Server) Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "WebSocket endpoint only accepts GET requests", http.StatusMethodNotAllowed)
		return
	}

	identity, err := s.verifier.Verify(bearerToken(r))
	if err != nil {
		s.log.Warn("connection refused", "remote", r.RemoteAddr, "err", err)
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("WebSocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	s.serve(r.Context(), conn, identity)
}

// bearerToken accepts the token from the Authorization header or, for
// browser clients that cannot set headers on WebSocket dials, the "token"
// query parameter.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn, identity domain.Identity) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	connectionSink := sink.NewConnectionSink(s.log)

	id, err := s.chat.Connect(ctx, identity, connectionSink)
	if err != nil {
		s.log.Error("connection setup failed", "identity", identity.Name, "err", err)
		_ = conn.Close()
		return
	}

	go s.writePump(ctx, conn, connectionSink)
	s.readPump(ctx, conn, id, identity.Name)

	// Read loop ended: tear everything down.
	cancel()
	_ = s.voice.LeaveVoice(context.Background(), id)
	who, last := s.chat.Disconnect(id)
	s.presence.Disconnected(context.Background(), who.Name, last)
}

func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, id runtime.ConnID, self string) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				s.log.Warn("unexpected WebSocket error", "err", err)
			}
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			s.log.Debug("invalid frame, skipping", "err", err)
			continue
		}
		if err := s.dispatch(ctx, id, self, envelope); err != nil {
			s.log.Debug("verb failed", "verb", envelope.Event, "err", err)
		}
	}
}

func (s *Server) dispatch(ctx context.Context, id runtime.ConnID, self string, envelope Envelope) error {
	switch envelope.Event {
	case verbJoin:
		var p JoinPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		return s.chat.Join(ctx, id, domain.ParseRoomID(p.Room))
	case verbJoinDirect:
		var p JoinDirectPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		return s.chat.Join(ctx, id, domain.DirectRoom(self, p.User))
	case verbSubmit:
		var p SubmitPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		var replyTo *domain.ReplyRef
		if p.ReplyTo != nil {
			replyTo = lo.ToPtr(domain.ReplyRef(*p.ReplyTo))
		}
		return s.chat.Submit(ctx, id, p.Content, replyTo)
	case verbEdit:
		var p EditPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		return s.chat.Edit(ctx, id, p.ID, p.Content)
	case verbDelete:
		var p DeletePayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		return s.chat.Delete(ctx, id, p.ID)
	case verbReaction:
		var p ReactionPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		return s.chat.ToggleReaction(ctx, id, p.ID, p.Emoji)
	case verbTyping:
		return s.chat.Typing(ctx, id)
	case verbNewRoom:
		var p RoomPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		return s.chat.CreateRoom(ctx, id, p.Name)
	case verbAnnounce:
		return s.presence.Announce(ctx, id)
	case verbUserList:
		return s.presence.Request(ctx, id)
	case verbStatus:
		var p StatusPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		return s.presence.SetStatus(ctx, id, p.Status)
	case verbSearch:
		var p SearchPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		return s.chat.Search(ctx, id, p.Query)
	case verbJoinVoice:
		var p VoicePayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return err
		}
		return s.voice.JoinVoice(ctx, id, p.PeerID)
	case verbLeaveVoice:
		return s.voice.LeaveVoice(ctx, id)
	default:
		s.log.Debug("unknown verb, skipping", "verb", envelope.Event)
		return nil
	}
}

func (s *Server) writePump(ctx context.Context, conn *websocket.Conn, connectionSink *sink.ConnectionSink) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-connectionSink.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frame, err := EncodeEvent(evt)
			if err != nil {
				s.log.Error("failed to encode event", "event", evt.EventName(), "err", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
