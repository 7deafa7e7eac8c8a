package sink

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
)

func TestConnectionSink_Delivers_In_Order(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(slog.Default())
	ctx := context.Background()

	req.NoError(s.Consume(ctx, event.Notice{Text: "first"}))
	req.NoError(s.Consume(ctx, event.Notice{Text: "second"}))
	s.Close()

	var texts []string
	for evt := range s.Events() {
		texts = append(texts, evt.(event.Notice).Text)
	}
	req.Equal([]string{"first", "second"}, texts)
}

func TestConnectionSink_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(slog.Default())
	ctx := context.Background()

	for i := 0; i < defaultBuffer; i++ {
		req.NoError(s.Consume(ctx, event.Notice{Text: "fill"}))
	}

	// The buffer is full and nobody is draining: the overflow event is
	// dropped without blocking the broadcaster.
	req.NoError(s.Consume(ctx, event.Notice{Text: "overflow"}))
	req.Len(s.Events(), defaultBuffer)
}

func TestConnectionSink_Honors_Cancelled_Context(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// With buffer space available either branch may win; after filling the
	// buffer only cancellation remains.
	for i := 0; i < defaultBuffer; i++ {
		_ = s.Consume(context.Background(), event.Notice{Text: "fill"})
	}
	req.ErrorIs(s.Consume(ctx, event.Notice{Text: "late"}), context.Canceled)
}
