// Package gamesync bridges the local session store to the shared record
// store: it persists quiz/player/answer records, polls for roster and score
// changes, and recomputes rankings when anything moves.
package gamesync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"quizlive/internal/avatar"
	"quizlive/internal/domain"
	"quizlive/internal/metrics"
	"quizlive/internal/session"
	"quizlive/internal/store"
)

// DefaultPollInterval is the rankings refresh cadence. Staleness is bounded
// by this interval whenever the push channel is absent or drops.
const DefaultPollInterval = 2 * time.Second

// Syncer runs the synchronization protocol for one client. The backend is
// chosen once at startup (connected postgres or local memory fallback);
// every operation goes through the same code path either way.
type Syncer struct {
	backend  store.Backend
	notifier store.Notifier
	session  *session.Store
	log      *logrus.Entry
	sf       singleflight.Group
	clock    func() time.Time
	newID    func() string
}

func New(backend store.Backend, notifier store.Notifier, sess *session.Store, log *logrus.Entry) *Syncer {
	return NewWithClock(backend, notifier, sess, log, time.Now)
}

// NewWithClock is for deterministic timestamps in tests.
func NewWithClock(backend store.Backend, notifier store.Notifier, sess *session.Store, log *logrus.Entry, clock func() time.Time) *Syncer {
	return &Syncer{
		backend:  backend,
		notifier: notifier,
		session:  sess,
		log:      log,
		clock:    clock,
		newID:    func() string { return uuid.NewString() },
	}
}

// Session exposes the local store for consumers that subscribe to snapshots.
func (s *Syncer) Session() *session.Store {
	return s.session
}

// CreateQuiz assigns an id, persists the quiz and registers it locally.
// Input validation happens before this call; a persistence failure
// propagates so the caller can offer a retry.
func (s *Syncer) CreateQuiz(ctx context.Context, in domain.QuizInput) (domain.Quiz, error) {
	now := s.clock()
	quiz := domain.Quiz{
		ID:              s.newID(),
		Title:           in.Title,
		Description:     in.Description,
		MaxPlayers:      in.MaxPlayers,
		TimeType:        in.TimeType,
		TimePerQuestion: in.TimePerQuestion,
		TotalTime:       in.TotalTime,
		Lives:           in.Lives,
		ShuffleAnswers:  in.ShuffleAnswers,
		Questions:       in.Questions,
		Status:          domain.StatusWaiting,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	stored, err := s.backend.CreateQuiz(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	s.session.Dispatch(session.CreateQuiz{Quiz: stored})
	return stored, nil
}

// JoinQuiz validates the join against the current roster, persists the new
// player, then re-fetches the quiz so the combined view stays consistent.
// Failures propagate; a join must never silently half-apply.
func (s *Syncer) JoinQuiz(ctx context.Context, quizID string, in domain.PlayerInput) (domain.Player, error) {
	quiz, err := s.backend.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Player{}, err
	}
	if err := domain.ValidateJoin(quiz, in.Name); err != nil {
		return domain.Player{}, err
	}

	chosen := avatar.PickRandom()
	if in.Avatar != nil {
		chosen = *in.Avatar
	}
	now := s.clock()
	player := domain.Player{
		ID:        s.newID(),
		QuizID:    quizID,
		Name:      in.Name,
		Avatar:    chosen,
		Lives:     quiz.Lives,
		Score:     0,
		JoinedAt:  now,
		UpdatedAt: now,
	}

	stored, err := s.backend.InsertPlayer(ctx, player)
	if err != nil {
		return domain.Player{}, err
	}

	refreshed, err := s.backend.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Player{}, err
	}
	s.session.Dispatch(session.JoinQuiz{QuizID: quizID, Player: stored, Quiz: &refreshed})

	if err := s.notifier.PublishPlayerChange(ctx, store.PlayerChange{QuizID: quizID, PlayerID: stored.ID}); err != nil {
		s.log.WithError(err).Warn("publish join event failed")
	}
	return stored, nil
}

// GetQuiz returns the quiz with its roster, or nil when the id is unknown.
// Concurrent fetches for the same quiz are coalesced.
func (s *Syncer) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	result, err, _ := s.sf.Do(quizID, func() (interface{}, error) {
		quiz, err := s.backend.GetQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}
		return quiz, nil
	})
	if errors.Is(err, domain.ErrQuizNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	quiz := result.(domain.Quiz)
	return &quiz, nil
}

// UpdatePlayerScore persists new score/lives for a player. The write is
// best-effort: a failure is logged and counted, never surfaced, and the
// local mirror always applies so gameplay is never blocked on the network.
func (s *Syncer) UpdatePlayerScore(ctx context.Context, playerID string, score, lives int) {
	if err := s.backend.UpdatePlayerScore(ctx, playerID, score, lives); err != nil {
		metrics.PersistFailures.WithLabelValues("update_score").Inc()
		s.log.WithError(err).WithField("playerId", playerID).Warn("score update not persisted")
	}

	snap := s.session.Snapshot()
	if snap.CurrentPlayer == nil || snap.CurrentPlayer.ID != playerID || snap.CurrentQuiz == nil {
		return
	}
	mirrored := *snap.CurrentPlayer
	mirrored.Score = score
	mirrored.Lives = lives
	mirrored.UpdatedAt = s.clock()
	s.session.Dispatch(session.JoinQuiz{QuizID: snap.CurrentQuiz.ID, Player: mirrored})

	if err := s.notifier.PublishPlayerChange(ctx, store.PlayerChange{QuizID: mirrored.QuizID, PlayerID: playerID}); err != nil {
		s.log.WithError(err).Debug("publish score event failed")
	}
}

// SubmitAnswer appends one answer record to the shared log. Fire-and-forget:
// the timer and advance flow never wait on it.
func (s *Syncer) SubmitAnswer(ctx context.Context, playerID, quizID string, questionIndex int, answerIndex *int, correct bool, timeSpent int) {
	rec := domain.AnswerRecord{
		PlayerID:      playerID,
		QuizID:        quizID,
		QuestionIndex: questionIndex,
		AnswerIndex:   answerIndex,
		Correct:       correct,
		TimeSpent:     timeSpent,
		AnsweredAt:    s.clock(),
	}
	if err := s.backend.InsertAnswer(ctx, rec); err != nil {
		metrics.PersistFailures.WithLabelValues("submit_answer").Inc()
		s.log.WithError(err).WithField("playerId", playerID).Warn("answer not persisted")
		return
	}
	metrics.AnswersPersisted.Inc()
}

// GetRankings returns the live scoreboard ordering for a quiz.
func (s *Syncer) GetRankings(ctx context.Context, quizID string) ([]domain.Player, error) {
	return s.backend.Rankings(ctx, quizID)
}

// StartQuiz flips the stored status to playing. Best-effort: the round
// controller drives local state independently via StartGame.
func (s *Syncer) StartQuiz(ctx context.Context, quizID string) {
	if err := s.backend.SetQuizStatus(ctx, quizID, domain.StatusPlaying); err != nil {
		metrics.PersistFailures.WithLabelValues("start_quiz").Inc()
		s.log.WithError(err).WithField("quizId", quizID).Warn("quiz start not persisted")
	}
}

// RefreshRankings recomputes the cached rankings snapshot once.
func (s *Syncer) RefreshRankings(ctx context.Context, quizID, trigger string) {
	rankings, err := s.GetRankings(ctx, quizID)
	if err != nil {
		s.log.WithError(err).WithField("quizId", quizID).Error("rankings refresh failed")
		return
	}
	metrics.RankingRefreshes.WithLabelValues(trigger).Inc()
	s.session.Dispatch(session.UpdateRankings{Rankings: rankings})
	s.session.Dispatch(session.UpdatePlayers{Players: rosterOrder(rankings)})
}

// RunPoller refreshes rankings every interval until ctx is cancelled, with
// an immediate extra refresh whenever the push channel reports a player
// change. Polling is the correctness baseline; push only reduces staleness.
func (s *Syncer) RunPoller(ctx context.Context, quizID string, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	events, cancel, err := s.notifier.SubscribePlayerChanges(ctx, quizID)
	if err != nil {
		s.log.WithError(err).Warn("push channel unavailable, polling only")
		ch := make(chan store.PlayerChange)
		events, cancel = ch, func() { close(ch) }
	}
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RefreshRankings(ctx, quizID, "poll")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RefreshRankings(ctx, quizID, "poll")
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.RefreshRankings(ctx, quizID, "push")
		}
	}
}

// rosterOrder re-sorts a rankings slice back to join order for the roster
// view, so UpdatePlayers keeps the lobby ordering stable.
func rosterOrder(players []domain.Player) []domain.Player {
	out := make([]domain.Player, len(players))
	copy(out, players)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].JoinedAt.Before(out[j-1].JoinedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
