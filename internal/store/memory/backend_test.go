package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizlive/internal/domain"
	"quizlive/internal/store"
)

func testQuiz() domain.Quiz {
	return domain.Quiz{
		ID:         "quiz-1",
		Title:      "Capitals",
		MaxPlayers: 4,
		Lives:      3,
		Questions: []domain.Question{
			{Text: "Capital of France?", Options: []string{"Rome", "Paris"}, CorrectAnswer: 1},
		},
		Status: domain.StatusWaiting,
	}
}

func TestGetQuizNotFound(t *testing.T) {
	b := New()
	_, err := b.GetQuiz(context.Background(), "nope")
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRosterKeepsJoinOrder(t *testing.T) {
	ctx := context.Background()
	b := New()
	_, _ = b.CreateQuiz(ctx, testQuiz())

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		_, err := b.InsertPlayer(ctx, domain.Player{ID: "p-" + name, QuizID: "quiz-1", Name: name})
		if err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	quiz, err := b.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	for i, want := range []string{"Alice", "Bob", "Carol"} {
		if quiz.Players[i].Name != want {
			t.Fatalf("roster order broken: %+v", quiz.Players)
		}
	}
}

func TestRankingsSortByScoreOnly(t *testing.T) {
	ctx := context.Background()
	b := New()
	_, _ = b.CreateQuiz(ctx, testQuiz())
	_, _ = b.InsertPlayer(ctx, domain.Player{ID: "p1", QuizID: "quiz-1", Name: "Alice"})
	_, _ = b.InsertPlayer(ctx, domain.Player{ID: "p2", QuizID: "quiz-1", Name: "Bob"})
	_, _ = b.InsertPlayer(ctx, domain.Player{ID: "p3", QuizID: "quiz-1", Name: "Carol"})

	if err := b.UpdatePlayerScore(ctx, "p2", 200, 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := b.UpdatePlayerScore(ctx, "p3", 200, 3); err != nil {
		t.Fatalf("update: %v", err)
	}

	rankings, err := b.Rankings(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	// Score desc; ties keep join order because the sort is stable.
	if rankings[0].ID != "p2" || rankings[1].ID != "p3" || rankings[2].ID != "p1" {
		t.Fatalf("unexpected order: %+v", rankings)
	}
}

func TestUpdatePlayerScoreStampsClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	b := NewWithClock(func() time.Time { return now })
	_, _ = b.CreateQuiz(ctx, testQuiz())
	_, _ = b.InsertPlayer(ctx, domain.Player{ID: "p1", QuizID: "quiz-1", Name: "Alice"})

	if err := b.UpdatePlayerScore(ctx, "p1", 101, 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	quiz, _ := b.GetQuiz(ctx, "quiz-1")
	if !quiz.Players[0].UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at %v, got %v", now, quiz.Players[0].UpdatedAt)
	}

	if err := b.UpdatePlayerScore(ctx, "ghost", 1, 1); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected player not found, got %v", err)
	}
}

func TestAnswersAppendInOrder(t *testing.T) {
	ctx := context.Background()
	b := New()
	_, _ = b.CreateQuiz(ctx, testQuiz())

	for i := 0; i < 3; i++ {
		if err := b.InsertAnswer(ctx, domain.AnswerRecord{PlayerID: "p1", QuizID: "quiz-1", QuestionIndex: i}); err != nil {
			t.Fatalf("insert answer: %v", err)
		}
	}
	answers, err := b.ListAnswers(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(answers) != 3 || answers[0].QuestionIndex != 0 || answers[2].QuestionIndex != 2 {
		t.Fatalf("unexpected answer log: %+v", answers)
	}
}

func TestNotifierFanOut(t *testing.T) {
	ctx := context.Background()
	n := NewNotifier()

	events, cancel, err := n.SubscribePlayerChanges(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if err := n.PublishPlayerChange(ctx, store.PlayerChange{QuizID: "quiz-1", PlayerID: "p1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case change := <-events:
		if change.PlayerID != "p1" {
			t.Fatalf("unexpected change: %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("no change received")
	}
}
