package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllUserSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch1, cleanup1 := hub.Subscribe("user-1")
	defer cleanup1()
	ch2, cleanup2 := hub.Subscribe("user-1")
	defer cleanup2()

	hub.Publish("user-1", Event{UserID: "user-1", Event: "ping"})

	for _, ch := range []chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, "ping", ev.Event)
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestPublishIsScopedToUser(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch, cleanup := hub.Subscribe("user-2")
	defer cleanup()

	hub.Publish("user-1", Event{UserID: "user-1", Event: "ping"})

	select {
	case <-ch:
		t.Fatal("event leaked to another user")
	default:
	}
}

func TestPublishSkipsFullChannels(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	_, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	// channel capacity is 10; further publishes must not block
	for i := 0; i < 25; i++ {
		hub.Publish("user-1", Event{UserID: "user-1", Event: "ping"})
	}
}

func TestCleanupRemovesSubscriber(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch, cleanup := hub.Subscribe("user-1")
	_, cleanup2 := hub.Subscribe("user-2")
	defer cleanup2()

	require.Equal(t, 2, hub.TotalSubscribers())

	cleanup()
	assert.Equal(t, 1, hub.TotalSubscribers())

	_, open := <-ch
	assert.False(t, open)
}
