package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	events []string
}

func (n *captureNotifier) Notify(ctx context.Context, userID string, event string, payload map[string]interface{}) {
	n.events = append(n.events, userID+":"+event)
}

func TestDeliverWithoutBufferIsImmediate(t *testing.T) {
	t.Parallel()

	n := &captureNotifier{}
	Deliver(context.Background(), n, "user-1", EventLeaveRequestApproved, nil)

	require.Len(t, n.events, 1)
	assert.Equal(t, "user-1:"+EventLeaveRequestApproved, n.events[0])
}

func TestBufferHoldsUntilFlush(t *testing.T) {
	t.Parallel()

	n := &captureNotifier{}
	ctx := context.Background()
	buffered, queued := WithBuffer(ctx)

	Deliver(buffered, n, "user-1", EventLeaveRequestApproved, nil)
	Deliver(buffered, n, "user-2", EventApprovalStepWaiting, nil)
	assert.Empty(t, n.events)

	queued.Flush(ctx, n)
	assert.Equal(t, []string{
		"user-1:" + EventLeaveRequestApproved,
		"user-2:" + EventApprovalStepWaiting,
	}, n.events)
}

func TestFlushDrainsTheBuffer(t *testing.T) {
	t.Parallel()

	n := &captureNotifier{}
	ctx := context.Background()
	buffered, queued := WithBuffer(ctx)

	Deliver(buffered, n, "user-1", EventPayrollRunComputed, nil)
	queued.Flush(ctx, n)
	queued.Flush(ctx, n)

	assert.Len(t, n.events, 1)
}

func TestDroppedBufferPublishesNothing(t *testing.T) {
	t.Parallel()

	n := &captureNotifier{}
	buffered, _ := WithBuffer(context.Background())

	Deliver(buffered, n, "user-1", EventLeaveRequestRejected, nil)
	assert.Empty(t, n.events)
}
