package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/repositories"
	"chat-relay/runtime"
)

type presenceFixture struct {
	service  *PresenceService
	registry *runtime.Registry
	users    repositories.UserRepository
}

func newPresenceFixture(t *testing.T) *presenceFixture {
	t.Helper()
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := runtime.NewRegistry(log)
	users := repositories.NewUserRepository(db, log)
	return &presenceFixture{
		service:  NewPresenceService(registry, users, log),
		registry: registry,
		users:    users,
	}
}

func (f *presenceFixture) register(name string) (runtime.ConnID, *recordingSink) {
	sink := &recordingSink{}
	id := f.registry.Register(domain.Identity{Name: name}, sink)
	return id, sink
}

func TestPresenceService_Announce_Broadcasts_Roster(t *testing.T) {
	req := require.New(t)
	f := newPresenceFixture(t)
	ctx := context.Background()

	alice, aliceSink := f.register("alice")
	bob, bobSink := f.register("bob")

	req.NoError(f.service.Announce(ctx, alice))
	req.NoError(f.service.Announce(ctx, bob))

	// Both connections end up with the full two-name roster.
	for _, sink := range []*recordingSink{aliceSink, bobSink} {
		roster := lastEvent[event.UserListUpdated](t, sink.Events())
		req.Equal([]string{"alice", "bob"}, roster.Users)
	}

	// A fresh identity announces with the default status.
	status := lastEvent[event.StatusUpdated](t, aliceSink.Events())
	req.Equal(repositories.DefaultStatus, status.Status)
}

func TestPresenceService_Roster_Deduplicates_Connections(t *testing.T) {
	req := require.New(t)
	f := newPresenceFixture(t)
	ctx := context.Background()

	first, sink := f.register("alice")
	second, _ := f.register("alice")

	req.NoError(f.service.Announce(ctx, first))
	req.NoError(f.service.Announce(ctx, second))

	roster := lastEvent[event.UserListUpdated](t, sink.Events())
	req.Equal([]string{"alice"}, roster.Users)
}

func TestPresenceService_Request_Answers_Caller_Only(t *testing.T) {
	req := require.New(t)
	f := newPresenceFixture(t)
	ctx := context.Background()

	alice, aliceSink := f.register("alice")
	_, bobSink := f.register("bob")
	req.NoError(f.service.Announce(ctx, alice))
	aliceSink.Reset()
	bobSink.Reset()

	req.NoError(f.service.Request(ctx, alice))

	roster := lastEvent[event.UserListUpdated](t, aliceSink.Events())
	req.Equal([]string{"alice"}, roster.Users)
	req.Empty(bobSink.Events())
}

func TestPresenceService_SetStatus_Persists_And_Broadcasts(t *testing.T) {
	req := require.New(t)
	f := newPresenceFixture(t)
	ctx := context.Background()

	alice, _ := f.register("alice")
	_, bobSink := f.register("bob")

	req.NoError(f.service.SetStatus(ctx, alice, "away"))

	update := lastEvent[event.StatusUpdated](t, bobSink.Events())
	req.Equal("alice", update.User)
	req.Equal("away", update.Status)

	status, err := f.users.FindStatus("alice")
	req.NoError(err)
	req.Equal("away", status)
}

func TestPresenceService_Roster_Holds_When_The_Announcing_Tab_Closes(t *testing.T) {
	req := require.New(t)
	f := newPresenceFixture(t)
	ctx := context.Background()

	announced, _ := f.register("alice")
	f.register("alice") // silent sibling tab
	bob, bobSink := f.register("bob")
	req.NoError(f.service.Announce(ctx, announced))

	// The announced tab closes; the sibling keeps alice online and every
	// later snapshot still lists her.
	identity, last := f.registry.Unregister(announced)
	req.False(last)
	f.service.Disconnected(ctx, identity.Name, last)

	bobSink.Reset()
	req.NoError(f.service.Request(ctx, bob))
	roster := lastEvent[event.UserListUpdated](t, bobSink.Events())
	req.Contains(roster.Users, "alice")
}

func TestPresenceService_Disconnected_Only_On_Last_Connection(t *testing.T) {
	req := require.New(t)
	f := newPresenceFixture(t)
	ctx := context.Background()

	first, _ := f.register("alice")
	second, _ := f.register("alice")
	_, bobSink := f.register("bob")
	req.NoError(f.service.Announce(ctx, first))
	req.NoError(f.service.Announce(ctx, second))

	// First tab closes: alice still has one connection, no rebroadcast.
	identity, last := f.registry.Unregister(first)
	req.Equal("alice", identity.Name)
	req.False(last)
	bobSink.Reset()
	f.service.Disconnected(ctx, identity.Name, last)
	req.Empty(bobSink.Events())

	// Last tab closes: alice drops off the roster everyone sees.
	identity, last = f.registry.Unregister(second)
	req.True(last)
	f.service.Disconnected(ctx, identity.Name, last)

	roster := lastEvent[event.UserListUpdated](t, bobSink.Events())
	req.NotContains(roster.Users, "alice")
}
