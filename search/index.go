//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_index.go -package=mocks

// Package search maintains a full-text index over message content and
// answers in-room queries.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"chat-relay/domain"
)

const maxResults = 20

type IIndex interface {
	Index(message domain.Message) error
	Remove(id uuid.UUID) error
	Search(ctx context.Context, room domain.RoomID, query string) ([]uuid.UUID, error)
}

// Index wraps a bluge writer. Each message becomes one document keyed by
// its uuid, with the room stored as a keyword field so queries stay scoped
// to the room they were issued from.
type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(writer *bluge.Writer, log *slog.Logger) *Index {
	return &Index{writer: writer, log: log}
}

func (i *Index) Index(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content)).
		AddField(bluge.NewKeywordField("room", message.Room.String())).
		AddField(bluge.NewKeywordField("author", message.Author))

	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("indexing message %s: %w", message.ID, err)
	}
	return nil
}

// Remove drops a deleted message from the index so it stops matching.
func (i *Index) Remove(id uuid.UUID) error {
	doc := bluge.NewDocument(id.String())
	if err := i.writer.Delete(doc.ID()); err != nil {
		return fmt.Errorf("removing message %s from index: %w", id, err)
	}
	return nil
}

// Search returns the ids of the best-matching messages in the room, most
// relevant first. The caller rehydrates them from the message store.
func (i *Index) Search(ctx context.Context, room domain.RoomID, query string) ([]uuid.UUID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("content")).
		AddMust(bluge.NewTermQuery(room.String()).SetField("room"))

	it, err := reader.Search(ctx, bluge.NewTopNSearch(maxResults, q))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	match, err := it.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = it.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
