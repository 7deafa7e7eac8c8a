package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/errors"
)

func TestRoomID_DirectCanonicalOrder(t *testing.T) {
	req := require.New(t)

	// Both sides of a conversation must resolve to the same room.
	req.Equal(DirectRoom("alice", "bob"), DirectRoom("bob", "alice"))
	req.Equal("dm_alice_bob", DirectRoom("bob", "alice").String())
}

func TestRoomID_Counterpart(t *testing.T) {
	req := require.New(t)
	room := DirectRoom("alice", "bob")

	other, ok := room.Counterpart("alice")
	req.True(ok)
	req.Equal("bob", other)

	other, ok = room.Counterpart("bob")
	req.True(ok)
	req.Equal("alice", other)

	// A non-participant has no counterpart.
	_, ok = room.Counterpart("mallory")
	req.False(ok)

	// Named rooms have no counterpart at all.
	_, ok = NamedRoom("general").Counterpart("alice")
	req.False(ok)
}

func TestParseRoomID(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		isDirect bool
		expected string
	}{
		{
			name:     "should parse a named room when no prefix",
			raw:      "general",
			isDirect: false,
			expected: "general",
		},
		{
			name:     "should parse a direct room when two participants",
			raw:      "dm_alice_bob",
			isDirect: true,
			expected: "dm_alice_bob",
		},
		{
			name:     "should fall back to named when too many tokens",
			raw:      "dm_a_b_c",
			isDirect: false,
			expected: "dm_a_b_c",
		},
		{
			name:     "should fall back to named when a participant is empty",
			raw:      "dm__bob",
			isDirect: false,
			expected: "dm__bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			room := ParseRoomID(tt.raw)
			req.Equal(tt.isDirect, room.IsDirect())
			req.Equal(tt.expected, room.String())
		})
	}
}

func TestParseRoomID_RoundTrip(t *testing.T) {
	req := require.New(t)
	room := DirectRoom("zoe", "adam")
	req.Equal(room, ParseRoomID(room.String()))
}

func TestValidateRoomName(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateRoomName("general"))
	req.NoError(ValidateRoomName("warRoom42"))

	req.ErrorIs(ValidateRoomName(""), errors.ErrInvalidRoomName)
	req.ErrorIs(ValidateRoomName("has space"), errors.ErrInvalidRoomName)
	req.ErrorIs(ValidateRoomName("dm_alice_bob"), errors.ErrInvalidRoomName)
	req.ErrorIs(ValidateRoomName("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), errors.ErrInvalidRoomName)
}
