package domain

import "time"

// QuizStatus tracks a quiz through its lifecycle. The same values describe
// the per-client game state, so the reducer and the stored record never
// disagree on vocabulary.
type QuizStatus string

const (
	StatusWaiting  QuizStatus = "waiting"
	StatusPlaying  QuizStatus = "playing"
	StatusFinished QuizStatus = "finished"
)

// TimeType selects how the question time budget is derived.
type TimeType string

const (
	// TimePerQuestion gives every question a fixed number of seconds.
	TimePerQuestion TimeType = "perQuestion"
	// TimeTotalQuiz divides a total quiz budget (minutes) evenly across questions.
	TimeTotalQuiz TimeType = "totalQuiz"
)

// Avatar is an immutable identity token assigned to a player at join time.
type Avatar struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Question is an MCQ question. CorrectAnswer indexes into Options and the
// whole struct is immutable once the quiz is created.
type Question struct {
	Text          string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer int      `json:"correctAnswer" validate:"gte=0"`
}

// Quiz is a configured set of questions plus play rules.
type Quiz struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	MaxPlayers      int        `json:"maxPlayers"`
	TimeType        TimeType   `json:"timeType"`
	TimePerQuestion int        `json:"timePerQuestion"` // seconds, used iff TimePerQuestion
	TotalTime       int        `json:"totalTime"`       // minutes, used iff TimeTotalQuiz
	Lives           int        `json:"lives"`
	ShuffleAnswers  bool       `json:"shuffleAnswers"`
	Questions       []Question `json:"questions"`
	Status          QuizStatus `json:"status"`
	Players         []Player   `json:"players,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Player is one participant in a quiz. Score only increases and lives only
// decrease, so a stale read of either is still a valid past state.
type Player struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quizId"`
	Name      string    `json:"name"`
	Avatar    Avatar    `json:"avatar"`
	Lives     int       `json:"lives"`
	Score     int       `json:"score"`
	JoinedAt  time.Time `json:"joinedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AnswerRecord is one append-only scoring event. AnswerIndex is nil when the
// question timed out before an answer was submitted.
type AnswerRecord struct {
	PlayerID      string    `json:"playerId"`
	QuizID        string    `json:"quizId"`
	QuestionIndex int       `json:"questionIndex"`
	AnswerIndex   *int      `json:"answerIndex"`
	Correct       bool      `json:"isCorrect"`
	TimeSpent     int       `json:"timeSpent"` // seconds, capped at the question budget
	AnsweredAt    time.Time `json:"answeredAt"`
}

// QuizInput is the user-supplied shape for quiz creation.
type QuizInput struct {
	Title           string     `json:"title" validate:"required"`
	Description     string     `json:"description"`
	MaxPlayers      int        `json:"maxPlayers" validate:"gte=2"`
	TimeType        TimeType   `json:"timeType" validate:"oneof=perQuestion totalQuiz"`
	TimePerQuestion int        `json:"timePerQuestion" validate:"gte=0"`
	TotalTime       int        `json:"totalTime" validate:"gte=0"`
	Lives           int        `json:"lives" validate:"gte=1"`
	ShuffleAnswers  bool       `json:"shuffleAnswers"`
	Questions       []Question `json:"questions" validate:"min=1,dive"`
}

// PlayerInput is the user-supplied shape for joining a quiz. Avatar is
// optional; the sync layer picks a random one when nil.
type PlayerInput struct {
	Name   string  `json:"name"`
	Avatar *Avatar `json:"avatar"`
}
