package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReactions_AddRemove(t *testing.T) {
	req := require.New(t)
	reactions := Reactions{}

	// First add creates the set.
	req.True(reactions.Add("👍", "alice"))
	req.True(reactions.Has("👍", "alice"))

	// Adding twice is refused, the set stays a set.
	req.False(reactions.Add("👍", "alice"))
	req.Len(reactions["👍"], 1)

	// A second reactor joins the same emoji.
	req.True(reactions.Add("👍", "bob"))
	req.Len(reactions["👍"], 2)

	// Removing one reactor keeps the other.
	req.True(reactions.Remove("👍", "alice"))
	req.False(reactions.Has("👍", "alice"))
	req.True(reactions.Has("👍", "bob"))

	// Removing the last reactor drops the emoji entry entirely.
	req.True(reactions.Remove("👍", "bob"))
	req.NotContains(reactions, "👍")

	// Removing from an absent set reports false.
	req.False(reactions.Remove("🔥", "alice"))
}

func TestReactions_Clone(t *testing.T) {
	req := require.New(t)
	reactions := Reactions{"🎉": {"alice", "bob"}}

	clone := reactions.Clone()
	clone.Add("🎉", "carol")

	req.Len(reactions["🎉"], 2)
	req.Len(clone["🎉"], 3)

	req.Nil(Reactions(nil).Clone())
}
