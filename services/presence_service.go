package services

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/repositories"
	"chat-relay/runtime"
)

type IPresenceService interface {
	Announce(ctx context.Context, id runtime.ConnID) error
	Request(ctx context.Context, id runtime.ConnID) error
	SetStatus(ctx context.Context, id runtime.ConnID, status string) error
	Disconnected(ctx context.Context, identity string, last bool)
}

// PresenceService tracks which identities are visible online and their
// status lines. Presence is connection-scoped: an identity stays listed
// until its last connection closes.
type PresenceService struct {
	registry *runtime.Registry
	users    repositories.IUserRepository
	log      *slog.Logger
}

func NewPresenceService(registry *runtime.Registry, users repositories.IUserRepository, log *slog.Logger) *PresenceService {
	return &PresenceService{registry: registry, users: users, log: log}
}

// Announce marks the connection visible and pushes the refreshed roster to
// everyone, along with the identity's persisted status line.
func (s *PresenceService) Announce(ctx context.Context, id runtime.ConnID) error {
	identity, ok := s.registry.Identity(id)
	if !ok {
		return nil
	}
	s.registry.MarkActive(id)

	status, err := s.users.FindStatus(identity.Name)
	if err != nil {
		return err
	}
	s.broadcast(ctx, s.registry.Sinks(), event.StatusUpdated{User: identity.Name, Status: status})
	s.broadcastRoster(ctx, s.registry.Sinks())
	return nil
}

// Request replays the current roster to the asking connection only.
func (s *PresenceService) Request(ctx context.Context, id runtime.ConnID) error {
	sink, ok := s.registry.Sink(id)
	if !ok {
		return nil
	}
	return sink.Consume(ctx, event.UserListUpdated{Users: s.registry.ActiveSnapshot()})
}

// SetStatus persists the identity's status line and broadcasts the change.
func (s *PresenceService) SetStatus(ctx context.Context, id runtime.ConnID, status string) error {
	identity, ok := s.registry.Identity(id)
	if !ok {
		return nil
	}
	if err := s.users.SaveStatus(identity.Name, status); err != nil {
		return err
	}
	s.broadcast(ctx, s.registry.Sinks(), event.StatusUpdated{User: identity.Name, Status: status})
	return nil
}

// Disconnected refreshes the roster after a connection closed. Only the
// identity's last connection changes the roster, so it only rebroadcasts
// then.
func (s *PresenceService) Disconnected(ctx context.Context, identity string, last bool) {
	if !last {
		return
	}
	s.log.Debug("identity went offline", "identity", identity)
	s.broadcastRoster(ctx, s.registry.Sinks())
}

func (s *PresenceService) broadcastRoster(ctx context.Context, sinks []contract.EventSink) {
	s.broadcast(ctx, sinks, event.UserListUpdated{Users: s.registry.ActiveSnapshot()})
}

func (s *PresenceService) broadcast(ctx context.Context, sinks []contract.EventSink, evt event.Event) {
	for _, sink := range sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			s.log.Warn("sink refused event", "event", evt.EventName(), "err", err)
		}
	}
}
