package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"chat-relay/errors"
)

const (
	// DefaultRoom is the room every connection starts in.
	DefaultRoom = "general"

	directPrefix    = "dm_"
	directDelimiter = "_"
)

// RoomID is a tagged room identifier: either a directory-registered named
// channel or a synthesized two-party direct-message room. Direct rooms keep
// their participants in canonical (lexicographic) order so that both sides
// resolve to the same identifier.
type RoomID struct {
	name string
	a, b string
}

func NamedRoom(name string) RoomID {
	return RoomID{name: name}
}

func DirectRoom(a, b string) RoomID {
	if b < a {
		a, b = b, a
	}
	return RoomID{a: a, b: b}
}

// ParseRoomID maps a wire-level room name onto a RoomID. A name of the form
// "dm_<a>_<b>" with exactly two participant tokens is a direct room; anything
// else is a named room. Identities containing the delimiter cannot be carried
// by the direct-message convention and fall back to a named room.
func ParseRoomID(raw string) RoomID {
	rest, ok := strings.CutPrefix(raw, directPrefix)
	if !ok {
		return NamedRoom(raw)
	}
	parts := strings.Split(rest, directDelimiter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return NamedRoom(raw)
	}
	return DirectRoom(parts[0], parts[1])
}

func (r RoomID) IsDirect() bool {
	return r.name == "" && r.a != ""
}

func (r RoomID) IsZero() bool {
	return r.name == "" && r.a == ""
}

// Counterpart returns the participant token that is not the sender. It
// reports false for named rooms and for senders that are not a participant.
func (r RoomID) Counterpart(sender string) (string, bool) {
	if !r.IsDirect() {
		return "", false
	}
	switch sender {
	case r.a:
		return r.b, true
	case r.b:
		return r.a, true
	default:
		return "", false
	}
}

func (r RoomID) String() string {
	if r.IsDirect() {
		return directPrefix + r.a + directDelimiter + r.b
	}
	return r.name
}

var validate = validator.New()

type roomNameRules struct {
	Name string `validate:"required,alphanum,max=32"`
}

// ValidateRoomName enforces the directory contract for named channels:
// non-empty, alphanumeric, bounded length. Direct-message identifiers are
// synthesized, never registered, and are rejected here.
func ValidateRoomName(name string) error {
	if err := validate.Struct(roomNameRules{Name: name}); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRoomName, err)
	}
	return nil
}
