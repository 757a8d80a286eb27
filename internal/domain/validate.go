package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateQuizInput checks a quiz creation request before any persistence is
// attempted. Struct tags carry the per-field rules; cross-field rules (time
// configuration, correct-answer bounds) are checked here because they depend
// on sibling values.
func ValidateQuizInput(in QuizInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("quiz title must not be empty")
	}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid quiz: %w", err)
	}
	switch in.TimeType {
	case TimePerQuestion:
		if in.TimePerQuestion < 1 {
			return fmt.Errorf("time per question must be at least 1 second")
		}
	case TimeTotalQuiz:
		if in.TotalTime < 1 {
			return fmt.Errorf("total quiz time must be at least 1 minute")
		}
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %d: correct answer index %d out of range", i+1, q.CorrectAnswer)
		}
	}
	return nil
}

// ValidateJoin applies the join rules against the quiz's current roster and
// status. It never touches the store; the caller fetches the quiz first.
func ValidateJoin(quiz Quiz, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("player name must not be empty")
	}
	switch quiz.Status {
	case StatusPlaying:
		return ErrQuizInProgress
	case StatusFinished:
		return ErrQuizFinished
	}
	if len(quiz.Players) >= quiz.MaxPlayers {
		return ErrQuizFull
	}
	for _, p := range quiz.Players {
		if strings.EqualFold(p.Name, name) {
			return ErrNameTaken
		}
	}
	return nil
}
