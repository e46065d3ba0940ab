package notification

import (
	"context"
	"sync"
)

type pending struct {
	userID  string
	event   string
	payload map[string]interface{}
}

// Buffer holds events emitted inside a transaction until the caller knows
// the transaction committed. Events queued under a rolled-back transaction
// are dropped with it.
type Buffer struct {
	mu     sync.Mutex
	events []pending
}

type bufferKey struct{}

// WithBuffer installs a fresh buffer on the context. Deliver calls made
// with the returned context queue instead of publishing.
func WithBuffer(ctx context.Context) (context.Context, *Buffer) {
	b := &Buffer{}
	return context.WithValue(ctx, bufferKey{}, b), b
}

func bufferFromContext(ctx context.Context) (*Buffer, bool) {
	b, ok := ctx.Value(bufferKey{}).(*Buffer)
	return b, ok
}

// Deliver hands the event to n immediately, or queues it when the context
// carries a buffer so nothing goes out before the enclosing commit.
func Deliver(ctx context.Context, n Notifier, userID, event string, payload map[string]interface{}) {
	if b, ok := bufferFromContext(ctx); ok {
		b.mu.Lock()
		b.events = append(b.events, pending{userID: userID, event: event, payload: payload})
		b.mu.Unlock()
		return
	}
	n.Notify(ctx, userID, event, payload)
}

// Flush publishes the queued events through n. The context passed here must
// be the one from before WithBuffer, or the events would just re-queue.
func (b *Buffer) Flush(ctx context.Context, n Notifier) {
	b.mu.Lock()
	queued := b.events
	b.events = nil
	b.mu.Unlock()

	for _, p := range queued {
		Deliver(ctx, n, p.userID, p.event, p.payload)
	}
}
