package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain"
	"chat-relay/mocks"
)

func TestSearchIndexerWorker(t *testing.T) {
	t.Run("should index and remove messages from the queue", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		index := mocks.NewMockIIndex(ctrl)

		message := domain.Message{ID: uuid.New(), Author: "alice", Content: "hello"}
		removedID := uuid.New()

		indexed := make(chan struct{})
		index.EXPECT().Index(message).Return(nil)
		index.EXPECT().Remove(removedID).DoAndReturn(func(uuid.UUID) error {
			close(indexed)
			return nil
		})

		jobs := make(chan IndexJob, 2)
		jobs <- IndexJob{Message: message}
		jobs <- IndexJob{Remove: true, ID: removedID}

		worker := NewSearchIndexerWorker(index, jobs, slog.Default())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- worker.Run(ctx) }()

		select {
		case <-indexed:
		case <-time.After(time.Second):
			t.Fatal("jobs were not drained")
		}

		cancel()
		req.ErrorIs(<-done, context.Canceled)
	})

	t.Run("should stop when the queue is closed", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		index := mocks.NewMockIIndex(ctrl)

		jobs := make(chan IndexJob)
		close(jobs)

		worker := NewSearchIndexerWorker(index, jobs, slog.Default())
		req.NoError(worker.Run(context.Background()))
	})

	t.Run("should keep draining after an index failure", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		index := mocks.NewMockIIndex(ctrl)

		first := domain.Message{ID: uuid.New(), Content: "broken"}
		second := domain.Message{ID: uuid.New(), Content: "fine"}

		index.EXPECT().Index(first).Return(context.DeadlineExceeded)
		index.EXPECT().Index(second).Return(nil)

		jobs := make(chan IndexJob, 2)
		jobs <- IndexJob{Message: first}
		jobs <- IndexJob{Message: second}
		close(jobs)

		worker := NewSearchIndexerWorker(index, jobs, slog.Default())
		req.NoError(worker.Run(context.Background()))
	})
}
