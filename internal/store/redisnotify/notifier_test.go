package redisnotify

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizlive/internal/store"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	notifier := New(client)
	ctx := context.Background()

	events, cancel, err := notifier.SubscribePlayerChanges(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	change := store.PlayerChange{QuizID: "quiz-1", PlayerID: "p1"}
	if err := notifier.PublishPlayerChange(ctx, change); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-events:
		if got != change {
			t.Fatalf("expected %+v, got %+v", change, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change received")
	}
}

func TestSubscriptionIsPerQuiz(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	notifier := New(client)
	ctx := context.Background()

	events, cancel, err := notifier.SubscribePlayerChanges(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if err := notifier.PublishPlayerChange(ctx, store.PlayerChange{QuizID: "quiz-2", PlayerID: "p9"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-events:
		t.Fatalf("received change for wrong quiz: %+v", got)
	case <-time.After(200 * time.Millisecond):
	}
}
