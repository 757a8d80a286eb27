// Package store abstracts the shared record store that keeps quiz, player
// and answer records consistent across independently running clients.
package store

import (
	"context"

	"quizlive/internal/domain"
)

// Backend is the record store contract. The postgres implementation is the
// connected path; the memory implementation is the local-only fallback. Both
// are selected once at startup by a connectivity probe, never per call.
type Backend interface {
	// CreateQuiz persists a new quiz and returns the stored record.
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	// GetQuiz reads a quiz together with its full roster. Returns
	// domain.ErrQuizNotFound for unknown ids.
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	// InsertPlayer appends a player to a quiz's roster.
	InsertPlayer(ctx context.Context, player domain.Player) (domain.Player, error)
	// UpdatePlayerScore persists a score/lives change for a player id. Safe
	// to repeat with the same values.
	UpdatePlayerScore(ctx context.Context, playerID string, score, lives int) error
	// InsertAnswer appends one answer record.
	InsertAnswer(ctx context.Context, rec domain.AnswerRecord) error
	// ListAnswers returns a quiz's answer log in answered-at order.
	ListAnswers(ctx context.Context, quizID string) ([]domain.AnswerRecord, error)
	// Rankings returns the roster ordered for the live scoreboard. The
	// connected path orders by score desc then updated_at asc; the fallback
	// orders by score desc only.
	Rankings(ctx context.Context, quizID string) ([]domain.Player, error)
	// SetQuizStatus persists a quiz status transition.
	SetQuizStatus(ctx context.Context, quizID string, status domain.QuizStatus) error
}

// PlayerChange is the push-channel event emitted when any player record of a
// quiz changes.
type PlayerChange struct {
	QuizID   string `json:"quizId"`
	PlayerID string `json:"playerId"`
}

// Notifier is the optional push channel layered over the backend. Rankings
// correctness never depends on it; it only triggers extra refreshes.
type Notifier interface {
	PublishPlayerChange(ctx context.Context, change PlayerChange) error
	// SubscribePlayerChanges streams change events for one quiz. The cancel
	// func must be called when the consumer goes away.
	SubscribePlayerChanges(ctx context.Context, quizID string) (<-chan PlayerChange, func(), error)
}

// NopNotifier is the notifier used when no push channel is configured.
type NopNotifier struct{}

func (NopNotifier) PublishPlayerChange(context.Context, PlayerChange) error { return nil }

func (NopNotifier) SubscribePlayerChanges(context.Context, string) (<-chan PlayerChange, func(), error) {
	ch := make(chan PlayerChange)
	return ch, func() { close(ch) }, nil
}
