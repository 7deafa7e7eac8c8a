package repositories

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
)

func Test_Create_And_List_Rooms(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	req.NoError(repository.Create("warRoom"))
	req.NoError(repository.Create("random"))

	names, err := repository.List()
	req.NoError(err)
	// Alphabetical, with the default room always present.
	req.Equal([]string{domain.DefaultRoom, "random", "warRoom"}, names)
}

func Test_Create_Duplicate_Room(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	req.NoError(repository.Create("warRoom"))
	req.ErrorIs(repository.Create("warRoom"), errors.ErrRoomAlreadyExists)
}

func Test_Create_Invalid_Room_Name(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	req.ErrorIs(repository.Create(""), errors.ErrInvalidRoomName)
	req.ErrorIs(repository.Create("has space"), errors.ErrInvalidRoomName)
}
