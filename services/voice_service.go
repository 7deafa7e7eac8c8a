package services

import (
	"context"
	"log/slog"
	"sync"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/runtime"
)

type IVoiceService interface {
	JoinVoice(ctx context.Context, id runtime.ConnID, peerID string) error
	LeaveVoice(ctx context.Context, id runtime.ConnID) error
}

// VoiceService relays voice signaling: it tracks which peer id each
// connection announced and tells the rest of the room when peers come and
// go. Media never touches the relay; clients negotiate it between
// themselves.
type VoiceService struct {
	mu       sync.Mutex
	peers    map[runtime.ConnID]string
	registry *runtime.Registry
	log      *slog.Logger
}

func NewVoiceService(registry *runtime.Registry, log *slog.Logger) *VoiceService {
	return &VoiceService{
		peers:    make(map[runtime.ConnID]string),
		registry: registry,
		log:      log,
	}
}

func (s *VoiceService) JoinVoice(ctx context.Context, id runtime.ConnID, peerID string) error {
	if _, ok := s.registry.Identity(id); !ok {
		return errors.ErrNotAuthorized
	}
	room, _ := s.registry.Room(id)

	s.mu.Lock()
	s.peers[id] = peerID
	s.mu.Unlock()

	s.announce(ctx, room, id, event.VoicePeerConnected{Room: room.String(), PeerID: peerID})
	return nil
}

// LeaveVoice withdraws the connection's peer, if any. Safe to call on
// every disconnect.
func (s *VoiceService) LeaveVoice(ctx context.Context, id runtime.ConnID) error {
	s.mu.Lock()
	peerID, ok := s.peers[id]
	delete(s.peers, id)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	room, _ := s.registry.Room(id)
	s.announce(ctx, room, id, event.VoicePeerDisconnected{Room: room.String(), PeerID: peerID})
	return nil
}

func (s *VoiceService) announce(ctx context.Context, room domain.RoomID, except runtime.ConnID, evt event.Event) {
	for _, sink := range s.registry.SinksForRoomExcept(room, except) {
		if err := sink.Consume(ctx, evt); err != nil {
			s.log.Warn("sink refused event", "event", evt.EventName(), "err", err)
		}
	}
}
