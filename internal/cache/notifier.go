package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"grimoire/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// ReviewedChannel carries a ReviewedEvent for every status transition.
const ReviewedChannel = "requests:reviewed"

// ReviewedEvent is published after a request status changes.
type ReviewedEvent struct {
	RequestID  string    `json:"request_id"`
	Status     string    `json:"status"`
	GrimorioID *string   `json:"grimorio_id,omitempty"`
	ReviewerID string    `json:"reviewer_id,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// Notifier publishes request events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client makes every publish a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishReviewed sends ev on ReviewedChannel.
func (n *Notifier) PublishReviewed(ctx context.Context, ev ReviewedEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, ReviewedChannel, payload).Err()
}

// StartReviewedSubscriber calls onEvent for every event until ctx is done.
func (n *Notifier) StartReviewedSubscriber(ctx context.Context, onEvent func(ReviewedEvent)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ReviewedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", ReviewedChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev ReviewedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("dropping malformed reviewed event", "error", err.Error())
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in reviewed subscriber",
								"panic", fmt.Sprint(r), "stack", string(debug.Stack()))
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()
	return nil
}
