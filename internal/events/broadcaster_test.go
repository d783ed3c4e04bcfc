package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishReachesOnlyOwner(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	defer b.Shutdown()

	chA := b.Subscribe(1)
	chB := b.Subscribe(2)

	b.Publish(Event{Type: UploadStarted, UserID: 1, ChannelID: "ch1", ClientID: "c1"})

	select {
	case evt := <-chA:
		assert.Equal(t, UploadStarted, evt.Type)
		assert.Equal(t, "c1", evt.ClientID)
		assert.NotEmpty(t, evt.ID)
		assert.False(t, evt.CreatedAt.IsZero())
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case evt := <-chB:
		t.Fatalf("unexpected event for other user: %+v", evt)
	default:
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	defer b.Shutdown()

	ch := b.Subscribe(1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer+10; i++ {
			b.Publish(Event{Type: UploadCompleted, UserID: 1})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on full subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	defer b.Shutdown()

	ch := b.Subscribe(1)
	b.Unsubscribe(1, ch)

	select {
	case _, open := <-ch:
		if open {
			// Drained event during teardown, keep reading until close.
			for range ch {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}
}

func TestShutdown(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	ch := b.Subscribe(1)
	b.Shutdown()

	_, open := <-ch
	require.False(t, open)

	// Subscribing after shutdown yields a closed channel.
	ch2 := b.Subscribe(1)
	_, open = <-ch2
	assert.False(t, open)

	// Publishing after shutdown is a no-op.
	b.Publish(Event{Type: UploadFailed, UserID: 1})
}
