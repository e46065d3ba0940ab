package notification

import (
	"context"
	"log/slog"

	"github.com/kenzahr/workforce-ledger-go/internal/pkg/sse"
)

// SSENotifier delivers pipeline events over the SSE hub. Delivery is best
// effort; a user with no open stream simply misses the event.
type SSENotifier struct {
	hub    *sse.Hub
	logger *slog.Logger
}

func NewSSENotifier(hub *sse.Hub, logger *slog.Logger) *SSENotifier {
	return &SSENotifier{hub: hub, logger: logger}
}

// Notify implements notification.Notifier.
func (n *SSENotifier) Notify(ctx context.Context, userID string, event string, payload map[string]interface{}) {
	if userID == "" {
		return
	}

	n.hub.Publish(userID, sse.Event{
		UserID: userID,
		Event:  event,
		Data:   payload,
	})

	n.logger.DebugContext(ctx, "notification published",
		slog.String("user_id", userID),
		slog.String("event", event))
}
