package runtime

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"chat-relay/contract"
	"chat-relay/domain"
)

// ConnID identifies one live connection. One identity may hold several.
type ConnID string

func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

type session struct {
	identity domain.Identity
	sink     contract.EventSink
	room     domain.RoomID
}

// Registry is the in-memory map of live connections: who is connected,
// through which sink, and in which room. Every connection is a member of
// exactly one room at any time; Move swaps membership under a single lock
// so no interleaving can observe a connection in two rooms or none.
type Registry struct {
	mu sync.RWMutex

	sessions map[ConnID]*session
	// roomMembers is keyed by RoomID.String().
	roomMembers map[string]map[ConnID]struct{}
	// identityConns tracks every live connection per identity name, for
	// direct-notification routing and last-connection presence.
	identityConns map[string]map[ConnID]struct{}
	// active holds presence-announced identities. Keyed by identity, not
	// connection: any one announced connection keeps the identity rostered
	// until its last connection closes.
	active map[string]struct{}

	log *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		sessions:      make(map[ConnID]*session),
		roomMembers:   make(map[string]map[ConnID]struct{}),
		identityConns: make(map[string]map[ConnID]struct{}),
		active:        make(map[string]struct{}),
		log:           log,
	}
}

// Register admits an authenticated connection and places it in the default
// room.
func (r *Registry) Register(identity domain.Identity, sink contract.EventSink) ConnID {
	id := NewConnID()
	room := domain.NamedRoom(domain.DefaultRoom)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = &session{identity: identity, sink: sink, room: room}
	r.joinLocked(id, room)

	conns, ok := r.identityConns[identity.Name]
	if !ok {
		conns = make(map[ConnID]struct{})
		r.identityConns[identity.Name] = conns
	}
	conns[id] = struct{}{}

	r.log.Debug("connection registered", "conn_id", id, "identity", identity.Name)
	return id
}

// Unregister removes a connection from all structures and reports whether
// it was the identity's last one, which is what presence removal keys on.
func (r *Registry) Unregister(id ConnID) (domain.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.Identity{}, false
	}
	delete(r.sessions, id)
	r.leaveLocked(id, s.room)

	conns := r.identityConns[s.identity.Name]
	delete(conns, id)
	last := len(conns) == 0
	if last {
		delete(r.identityConns, s.identity.Name)
		delete(r.active, s.identity.Name)
	}

	r.log.Debug("connection unregistered", "conn_id", id, "identity", s.identity.Name, "last", last)
	return s.identity, last
}

// Move switches a connection to another room atomically and returns the
// room it left.
func (r *Registry) Move(id ConnID, room domain.RoomID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.RoomID{}, false
	}
	previous := s.room
	r.leaveLocked(id, previous)
	r.joinLocked(id, room)
	s.room = room
	return previous, true
}

// Room reports the connection's current room.
func (r *Registry) Room(id ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.RoomID{}, false
	}
	return s.room, true
}

// Identity reports the identity bound to the connection.
func (r *Registry) Identity(id ConnID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.Identity{}, false
	}
	return s.identity, true
}

// MarkActive flags the connection's identity as presence-announced so it
// shows up in ActiveSnapshot. The flag outlives the announcing connection
// as long as the identity keeps any connection open.
func (r *Registry) MarkActive(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		r.active[s.identity.Name] = struct{}{}
	}
}

// ActiveSnapshot returns the sorted presence-announced identity names.
func (r *Registry) ActiveSnapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SinksForRoom snapshots the sinks of every member of the room. The slice
// is safe to range over without the lock.
func (r *Registry) SinksForRoom(room domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.roomMembers[room.String()]
	sinks := make([]contract.EventSink, 0, len(members))
	for id := range members {
		if s, ok := r.sessions[id]; ok {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}

// Sink returns the sink of one connection.
func (r *Registry) Sink(id ConnID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

// SinksForRoomExcept is SinksForRoom minus one connection, for broadcasts
// the originator should not receive.
func (r *Registry) SinksForRoomExcept(room domain.RoomID, except ConnID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.roomMembers[room.String()]
	sinks := make([]contract.EventSink, 0, len(members))
	for id := range members {
		if id == except {
			continue
		}
		if s, ok := r.sessions[id]; ok {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}

// Sinks snapshots every live connection's sink.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, s := range r.sessions {
		sinks = append(sinks, s.sink)
	}
	return sinks
}

// SinksForIdentity snapshots the sinks of every connection the identity
// currently holds, regardless of room.
func (r *Registry) SinksForIdentity(name string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.identityConns[name]
	sinks := make([]contract.EventSink, 0, len(conns))
	for id := range conns {
		if s, ok := r.sessions[id]; ok {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}

func (r *Registry) joinLocked(id ConnID, room domain.RoomID) {
	key := room.String()
	members, ok := r.roomMembers[key]
	if !ok {
		members = make(map[ConnID]struct{})
		r.roomMembers[key] = members
	}
	members[id] = struct{}{}
}

func (r *Registry) leaveLocked(id ConnID, room domain.RoomID) {
	key := room.String()
	members := r.roomMembers[key]
	delete(members, id)
	if len(members) == 0 {
		delete(r.roomMembers, key)
	}
}
