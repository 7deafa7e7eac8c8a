package runtime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

type nopSink struct{}

func (nopSink) Consume(ctx context.Context, e event.Event) error {
	return nil
}

func TestRegistry_Register_Places_In_Default_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	id := registry.Register(domain.Identity{Name: "alice"}, nopSink{})

	room, ok := registry.Room(id)
	req.True(ok)
	req.Equal(domain.NamedRoom(domain.DefaultRoom), room)

	req.Len(registry.SinksForRoom(room), 1)
}

func TestRegistry_Move_Is_Exclusive(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	id := registry.Register(domain.Identity{Name: "alice"}, nopSink{})
	general := domain.NamedRoom(domain.DefaultRoom)
	war := domain.NamedRoom("warRoom")

	previous, ok := registry.Move(id, war)
	req.True(ok)
	req.Equal(general, previous)

	// The connection is a member of the new room and only the new room.
	req.Empty(registry.SinksForRoom(general))
	req.Len(registry.SinksForRoom(war), 1)

	room, ok := registry.Room(id)
	req.True(ok)
	req.Equal(war, room)
}

func TestRegistry_Move_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	_, ok := registry.Move(NewConnID(), domain.NamedRoom("warRoom"))
	req.False(ok)
}

func TestRegistry_Unregister_Reports_Last_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	// Two tabs of the same identity.
	first := registry.Register(domain.Identity{Name: "alice"}, nopSink{})
	second := registry.Register(domain.Identity{Name: "alice"}, nopSink{})

	identity, last := registry.Unregister(first)
	req.Equal("alice", identity.Name)
	req.False(last)

	identity, last = registry.Unregister(second)
	req.Equal("alice", identity.Name)
	req.True(last)

	// Unknown connections never report as last.
	_, last = registry.Unregister(first)
	req.False(last)
}

func TestRegistry_ActiveSnapshot_Requires_Announce(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	alice := registry.Register(domain.Identity{Name: "alice"}, nopSink{})
	registry.Register(domain.Identity{Name: "bob"}, nopSink{})

	// Connected but not announced: invisible.
	req.Empty(registry.ActiveSnapshot())

	registry.MarkActive(alice)
	req.Equal([]string{"alice"}, registry.ActiveSnapshot())
}

func TestRegistry_Active_Survives_The_Announcing_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	announced := registry.Register(domain.Identity{Name: "alice"}, nopSink{})
	sibling := registry.Register(domain.Identity{Name: "alice"}, nopSink{})
	registry.MarkActive(announced)

	// The announced tab closes while a silent sibling stays open: the
	// identity remains rostered.
	_, last := registry.Unregister(announced)
	req.False(last)
	req.Equal([]string{"alice"}, registry.ActiveSnapshot())

	// Only the last connection clears the flag.
	_, last = registry.Unregister(sibling)
	req.True(last)
	req.Empty(registry.ActiveSnapshot())
}

func TestRegistry_SinksForIdentity_Covers_All_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	first := registry.Register(domain.Identity{Name: "alice"}, nopSink{})
	registry.Register(domain.Identity{Name: "alice"}, nopSink{})
	registry.Register(domain.Identity{Name: "bob"}, nopSink{})

	// Both of alice's connections are reachable, whatever room they watch.
	registry.Move(first, domain.NamedRoom("warRoom"))
	req.Len(registry.SinksForIdentity("alice"), 2)
	req.Len(registry.SinksForIdentity("bob"), 1)
	req.Empty(registry.SinksForIdentity("mallory"))
}

func TestRegistry_SinksForRoomExcept(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	alice := registry.Register(domain.Identity{Name: "alice"}, nopSink{})
	registry.Register(domain.Identity{Name: "bob"}, nopSink{})

	room := domain.NamedRoom(domain.DefaultRoom)
	req.Len(registry.SinksForRoom(room), 2)
	req.Len(registry.SinksForRoomExcept(room, alice), 1)
}
