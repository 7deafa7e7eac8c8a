// Package domain contains core concepts of the chat relay.
// This file defines Message state and reaction-set rules.
// The author is fixed at creation and never changes on edit.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReplyRef quotes the message a reply points at. The excerpt is a snapshot:
// later edits of the quoted message do not rewrite it.
type ReplyRef struct {
	MessageID uuid.UUID
	Author    string
	Excerpt   string
}

// Message represents a persisted chat message.
type Message struct {
	ID        uuid.UUID
	Room      RoomID
	Author    string
	Content   string
	AvatarRef string
	CreatedAt time.Time
	Edited    bool
	Reactions Reactions
	ReplyTo   *ReplyRef
}

// Reactions maps an emoji to the set of identities that applied it.
// The slice is a set: an identity appears at most once per emoji.
type Reactions map[string][]string

func (r Reactions) Has(emoji, identity string) bool {
	for _, who := range r[emoji] {
		if who == identity {
			return true
		}
	}
	return false
}

// Add inserts the identity into the emoji's reactor set.
// It reports false when the identity was already present.
func (r Reactions) Add(emoji, identity string) bool {
	if r.Has(emoji, identity) {
		return false
	}
	r[emoji] = append(r[emoji], identity)
	return true
}

// Remove deletes the identity from the emoji's reactor set.
// It reports false when the identity was not present.
// An emptied set drops the emoji entry entirely.
func (r Reactions) Remove(emoji, identity string) bool {
	reactors := r[emoji]
	for i, who := range reactors {
		if who != identity {
			continue
		}
		reactors = append(reactors[:i], reactors[i+1:]...)
		if len(reactors) == 0 {
			delete(r, emoji)
		} else {
			r[emoji] = reactors
		}
		return true
	}
	return false
}

func (r Reactions) Clone() Reactions {
	if r == nil {
		return nil
	}
	out := make(Reactions, len(r))
	for emoji, reactors := range r {
		out[emoji] = append([]string(nil), reactors...)
	}
	return out
}
