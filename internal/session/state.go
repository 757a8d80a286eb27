// Package session holds the per-client view of a running quiz: the active
// quiz, the local player, timing, accumulated answers and cached rankings.
// All mutation goes through Reduce so every transition is explicit and
// replayable.
package session

import "quizlive/internal/domain"

// State is the complete local session snapshot. Reduce never mutates a
// State in place; containers are copied on write.
type State struct {
	Quizzes         map[string]domain.Quiz
	CurrentQuiz     *domain.Quiz
	CurrentPlayer   *domain.Player
	GameState       domain.QuizStatus
	CurrentQuestion int
	TimeLeft        int
	Results         []domain.AnswerRecord
	Rankings        []domain.Player
	Connected       bool
}

// NewState returns the initial session state.
func NewState() State {
	return State{
		Quizzes:   map[string]domain.Quiz{},
		GameState: domain.StatusWaiting,
	}
}

// Action is one of the session transitions. The set is closed; unknown
// actions leave the state unchanged.
type Action interface{ isAction() }

// SetConnectionStatus records whether the shared state service is reachable.
// Gameplay fields are untouched.
type SetConnectionStatus struct{ Connected bool }

// CreateQuiz registers a quiz locally and makes it the active quiz.
type CreateQuiz struct{ Quiz domain.Quiz }

// SetCurrentQuiz replaces the active quiz reference (lobby load).
type SetCurrentQuiz struct{ Quiz domain.Quiz }

// JoinQuiz appends Player to the target quiz's roster, or replaces the
// existing entry when the id matches (the channel for local score/life
// mirroring). Quiz optionally carries a freshly fetched combined view.
type JoinQuiz struct {
	QuizID string
	Player domain.Player
	Quiz   *domain.Quiz
}

// UpdatePlayers replaces the active quiz's roster wholesale after a sync
// refresh.
type UpdatePlayers struct{ Players []domain.Player }

// StartGame moves to playing at question 0. Only valid from waiting.
type StartGame struct{ TimeLimit int }

// NextQuestion advances the question index and resets the clock. The caller
// checks bounds; past the last question EndGame applies instead.
type NextQuestion struct{ TimeLimit int }

// UpdateTime ticks the countdown down one second, floored at zero.
type UpdateTime struct{}

// SubmitAnswer appends a record to the local result log. No dedup here; the
// round controller guards at-most-one per question.
type SubmitAnswer struct{ Record domain.AnswerRecord }

// UpdateRankings replaces the cached rankings snapshot.
type UpdateRankings struct{ Rankings []domain.Player }

// EndGame moves to finished.
type EndGame struct{}

// ResetQuiz returns to waiting for a fresh play-through. The roster and its
// scores/lives deliberately survive; only progress and the result log reset.
type ResetQuiz struct{}

func (SetConnectionStatus) isAction() {}
func (CreateQuiz) isAction()          {}
func (SetCurrentQuiz) isAction()      {}
func (JoinQuiz) isAction()            {}
func (UpdatePlayers) isAction()       {}
func (StartGame) isAction()           {}
func (NextQuestion) isAction()        {}
func (UpdateTime) isAction()          {}
func (SubmitAnswer) isAction()        {}
func (UpdateRankings) isAction()      {}
func (EndGame) isAction()             {}
func (ResetQuiz) isAction()           {}

// Reduce applies one action and returns the resulting state. Every
// transition is total: inapplicable actions return the state unchanged.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case SetConnectionStatus:
		s.Connected = act.Connected
		return s

	case CreateQuiz:
		quizzes := cloneQuizzes(s.Quizzes)
		quizzes[act.Quiz.ID] = act.Quiz
		s.Quizzes = quizzes
		current := act.Quiz
		s.CurrentQuiz = &current
		return s

	case SetCurrentQuiz:
		current := act.Quiz
		s.CurrentQuiz = &current
		return s

	case JoinQuiz:
		quiz, ok := s.Quizzes[act.QuizID]
		if !ok {
			if act.Quiz == nil {
				return s
			}
			quiz = *act.Quiz
		}
		quiz.Players = upsertPlayer(quiz.Players, act.Player)
		quizzes := cloneQuizzes(s.Quizzes)
		quizzes[act.QuizID] = quiz
		s.Quizzes = quizzes
		current := quiz
		s.CurrentQuiz = &current
		player := act.Player
		s.CurrentPlayer = &player
		return s

	case UpdatePlayers:
		if s.CurrentQuiz == nil {
			return s
		}
		quiz := *s.CurrentQuiz
		quiz.Players = act.Players
		quizzes := cloneQuizzes(s.Quizzes)
		quizzes[quiz.ID] = quiz
		s.Quizzes = quizzes
		s.CurrentQuiz = &quiz
		return s

	case StartGame:
		if s.GameState != domain.StatusWaiting {
			return s
		}
		s.GameState = domain.StatusPlaying
		s.CurrentQuestion = 0
		s.TimeLeft = act.TimeLimit
		return s

	case NextQuestion:
		s.CurrentQuestion++
		s.TimeLeft = act.TimeLimit
		return s

	case UpdateTime:
		if s.TimeLeft > 0 {
			s.TimeLeft--
		}
		return s

	case SubmitAnswer:
		results := make([]domain.AnswerRecord, len(s.Results), len(s.Results)+1)
		copy(results, s.Results)
		s.Results = append(results, act.Record)
		return s

	case UpdateRankings:
		s.Rankings = act.Rankings
		return s

	case EndGame:
		s.GameState = domain.StatusFinished
		return s

	case ResetQuiz:
		s.GameState = domain.StatusWaiting
		s.CurrentQuestion = 0
		s.TimeLeft = 0
		s.Results = nil
		return s
	}
	return s
}

func cloneQuizzes(m map[string]domain.Quiz) map[string]domain.Quiz {
	out := make(map[string]domain.Quiz, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// upsertPlayer replaces the roster entry with a matching id, or appends.
func upsertPlayer(roster []domain.Player, p domain.Player) []domain.Player {
	out := make([]domain.Player, len(roster))
	copy(out, roster)
	for i := range out {
		if out[i].ID == p.ID {
			out[i] = p
			return out
		}
	}
	return append(out, p)
}
