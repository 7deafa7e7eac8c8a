package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/runtime"
)

func TestVoiceService_Announces_To_Room_Except_Self(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	registry := runtime.NewRegistry(log)
	service := NewVoiceService(registry, log)
	ctx := context.Background()

	aliceSink := &recordingSink{}
	alice := registry.Register(domain.Identity{Name: "alice"}, aliceSink)
	bobSink := &recordingSink{}
	registry.Register(domain.Identity{Name: "bob"}, bobSink)

	req.NoError(service.JoinVoice(ctx, alice, "peer-alice"))

	req.Zero(countEvents[event.VoicePeerConnected](aliceSink.Events()))
	connected := lastEvent[event.VoicePeerConnected](t, bobSink.Events())
	req.Equal("peer-alice", connected.PeerID)
	req.Equal(domain.DefaultRoom, connected.Room)

	req.NoError(service.LeaveVoice(ctx, alice))

	disconnected := lastEvent[event.VoicePeerDisconnected](t, bobSink.Events())
	req.Equal("peer-alice", disconnected.PeerID)
}

func TestVoiceService_Leave_Without_Join_Is_Noop(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	registry := runtime.NewRegistry(log)
	service := NewVoiceService(registry, log)

	aliceSink := &recordingSink{}
	alice := registry.Register(domain.Identity{Name: "alice"}, aliceSink)
	bobSink := &recordingSink{}
	registry.Register(domain.Identity{Name: "bob"}, bobSink)

	req.NoError(service.LeaveVoice(context.Background(), alice))
	req.Zero(countEvents[event.VoicePeerDisconnected](bobSink.Events()))
}
