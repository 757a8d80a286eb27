// Package redisnotify carries player-change events over Redis pub/sub. It is
// the optional push channel on top of the polling baseline: a dropped or
// missing subscription only delays a refresh until the next poll.
package redisnotify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"quizlive/internal/store"
)

// Notifier publishes and subscribes on one channel per quiz.
type Notifier struct {
	client *redis.Client
}

func New(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) PublishPlayerChange(ctx context.Context, change store.PlayerChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, channel(change.QuizID), payload).Err()
}

func (n *Notifier) SubscribePlayerChanges(ctx context.Context, quizID string) (<-chan store.PlayerChange, func(), error) {
	sub := n.client.Subscribe(ctx, channel(quizID))
	// Force the subscription onto the wire before returning so callers never
	// miss events published right after subscribing.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan store.PlayerChange, 8)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change store.PlayerChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					continue
				}
				select {
				case out <- change:
				default:
					// Consumers only care that something changed; dropping a
					// burst loses nothing the next poll won't recover.
				}
			case <-done:
				return
			}
		}
	}()

	cancel := func() {
		close(done)
		_ = sub.Close()
	}
	return out, cancel, nil
}

func channel(quizID string) string {
	return "quizlive:players:" + quizID
}

var _ store.Notifier = (*Notifier)(nil)
