package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Type string

const (
	UploadStarted   Type = "upload_started"
	UploadCompleted Type = "upload_completed"
	UploadFailed    Type = "upload_failed"
	PostScheduled   Type = "post_scheduled"
	PostDispatched  Type = "post_dispatched"
)

type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	UserID    int64     `json:"user_id"`
	ChannelID string    `json:"channel_id,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const subscriberBuffer = 100

// Broadcaster fans events out to per-user subscriber channels. Sends never
// block; a subscriber that cannot keep up drops events.
type Broadcaster struct {
	log *zap.Logger

	mu          sync.RWMutex
	subscribers map[int64][]chan Event
	closed      bool
}

func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		log:         logger.Named("events"),
		subscribers: make(map[int64][]chan Event),
	}
}

func (b *Broadcaster) Subscribe(userID int64) chan Event {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[userID] = append(b.subscribers[userID], ch)
	return ch
}

func (b *Broadcaster) Unsubscribe(userID int64, ch chan Event) {
	b.mu.Lock()
	if subs, ok := b.subscribers[userID]; ok {
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[userID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subscribers[userID]) == 0 {
			delete(b.subscribers, userID)
		}
	}
	b.mu.Unlock()

	// Drain briefly so a publisher racing with unsubscribe never blocks,
	// then close.
	go func() {
		timeout := time.After(100 * time.Millisecond)
		for {
			select {
			case <-ch:
			case <-timeout:
				close(ch)
				return
			}
		}
	}()
}

// Publish stamps the event with an id and timestamp and fans it out to the
// user's subscribers.
func (b *Broadcaster) Publish(evt Event) {
	evt.ID = uuid.New().String()
	evt.CreatedAt = time.Now().UTC()

	b.mu.RLock()
	subs := b.subscribers[evt.UserID]
	b.mu.RUnlock()

	for i, ch := range subs {
		select {
		case ch <- evt:
		default:
			b.log.Debug("subscriber channel full, dropping event",
				zap.String("id", evt.ID),
				zap.Int64("user_id", evt.UserID),
				zap.Int("subscriber", i))
		}
	}
}

// Shutdown closes every subscriber channel. Subsequent Subscribe calls get a
// closed channel and Publish calls are dropped.
func (b *Broadcaster) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for userID, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, userID)
	}
}
