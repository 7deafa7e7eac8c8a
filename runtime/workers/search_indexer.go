package workers

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"chat-relay/domain"
	"chat-relay/search"
)

// IndexJob is one unit of indexing work: either (re)index a message or
// remove a deleted one.
type IndexJob struct {
	Message domain.Message
	Remove  bool
	ID      uuid.UUID
}

// SearchIndexerWorker drains indexing jobs off the hot message path.
// Producers enqueue with a non-blocking send, so a stalled index slows
// search freshness, never message delivery.
type SearchIndexerWorker struct {
	index search.IIndex
	jobs  chan IndexJob
	log   *slog.Logger
}

func NewSearchIndexerWorker(index search.IIndex, jobs chan IndexJob, log *slog.Logger) *SearchIndexerWorker {
	return &SearchIndexerWorker{index: index, jobs: jobs, log: log}
}

func (w *SearchIndexerWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case job, ok := <-w.jobs:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if job.Remove {
				if err := w.index.Remove(job.ID); err != nil {
					w.log.Error("Failed to remove message from index", "id", job.ID, "err", err)
				}
				continue
			}
			if err := w.index.Index(job.Message); err != nil {
				w.log.Error("Failed to index message", "id", job.Message.ID, "err", err)
			}
		}
	}
}
