package sink

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain/event"
)

const defaultBuffer = 64

// ConnectionSink bridges the services to one client connection through a
// buffered channel. Consume never blocks: when the client's writer can't
// keep up and the buffer fills, the event is dropped and logged, so one
// slow connection can't stall a room broadcast.
type ConnectionSink struct {
	events chan event.Event
	log    *slog.Logger
}

var _ contract.EventSink = (*ConnectionSink)(nil)

func NewConnectionSink(log *slog.Logger) *ConnectionSink {
	return &ConnectionSink{
		events: make(chan event.Event, defaultBuffer),
		log:    log,
	}
}

func (s *ConnectionSink) Consume(ctx context.Context, evt event.Event) error {
	select {
	case s.events <- evt:
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Warn("connection sink full, dropping event", "event", evt.EventName())
	}
	return nil
}

// Events exposes the receive side for the connection's write loop.
func (s *ConnectionSink) Events() <-chan event.Event {
	return s.events
}

// Close releases the channel once the write loop has stopped draining it.
func (s *ConnectionSink) Close() {
	close(s.events)
}
