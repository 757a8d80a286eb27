// Package game drives the per-question round cycle for one player: time
// budgets, answer shuffling, scoring, lives, timeouts and the advance to the
// next question or the end of the quiz.
package game

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"quizlive/internal/domain"
	"quizlive/internal/gamesync"
	"quizlive/internal/session"
	"quizlive/internal/shuffle"
)

const (
	defaultTick        = time.Second
	defaultResultDelay = 3 * time.Second
	basePoints         = 100
)

// QuestionBudget returns the per-question time budget in seconds. In total-
// quiz mode the budget is divided evenly up front, never re-budgeted from
// time already used.
func QuestionBudget(quiz domain.Quiz) int {
	if quiz.TimeType == domain.TimeTotalQuiz {
		return quiz.TotalTime * 60 / len(quiz.Questions)
	}
	return quiz.TimePerQuestion
}

// SpeedBonus is the extra score for a correct answer with timeLeft seconds
// remaining, floored at 1 so even a buzzer-beater earns 101 total.
func SpeedBonus(timeLeft int) int {
	bonus := timeLeft / 5
	if bonus < 1 {
		return 1
	}
	return bonus
}

// Controller owns one player's run through a quiz. All gameplay state flows
// through the session store; the controller only sequences transitions and
// mirrors score changes out through the syncer.
type Controller struct {
	syncer *gamesync.Syncer
	quiz   domain.Quiz
	log    *logrus.Entry

	tick        time.Duration
	resultDelay time.Duration

	mu           sync.Mutex
	selected     *int
	locked       bool
	options      []string
	correctIndex int
	advanceTimer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController builds a controller with the production 1s tick and 3s
// result-display delay.
func NewController(syncer *gamesync.Syncer, quiz domain.Quiz, log *logrus.Entry) *Controller {
	return NewControllerWithTiming(syncer, quiz, log, defaultTick, defaultResultDelay)
}

// NewControllerWithTiming injects the tick and result delay. A non-positive
// tick disables the background ticking goroutine so tests can drive time via
// Tick; a non-positive delay advances synchronously on lock.
func NewControllerWithTiming(syncer *gamesync.Syncer, quiz domain.Quiz, log *logrus.Entry, tick, resultDelay time.Duration) *Controller {
	return &Controller{
		syncer:      syncer,
		quiz:        quiz,
		log:         log,
		tick:        tick,
		resultDelay: resultDelay,
	}
}

// Start enters the playing state at question 0. The roster must be
// non-empty; entering Playing twice is rejected by the reducer, so calling
// Start from any state but waiting is a no-op at the session level.
func (c *Controller) Start(ctx context.Context) error {
	snap := c.syncer.Session().Snapshot()
	if snap.CurrentQuiz == nil || len(snap.CurrentQuiz.Players) == 0 {
		return domain.ErrEmptyRoster
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.syncer.Session().Dispatch(session.StartGame{TimeLimit: QuestionBudget(c.quiz)})
	c.prepareQuestion(0)

	if c.tick > 0 {
		go c.run()
	}
	return nil
}

// Stop cancels the ticker and any pending advance. Must be called when the
// player leaves the game view, or the timers keep acting on a dead screen.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	if c.advanceTimer != nil {
		c.advanceTimer.Stop()
		c.advanceTimer = nil
	}
	c.mu.Unlock()
}

// Options returns this player's option order and the correct index within it
// for the current question.
func (c *Controller) Options() ([]string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.options))
	copy(out, c.options)
	return out, c.correctIndex
}

// Eliminated reports whether the local player has run out of lives. The quiz
// keeps going for everyone else; this is checked opportunistically when the
// player's own view renders.
func (c *Controller) Eliminated() bool {
	snap := c.syncer.Session().Snapshot()
	return snap.CurrentPlayer != nil && snap.CurrentPlayer.Lives <= 0
}

// Tick performs one second of countdown. When the clock reaches zero with no
// answer locked, the timeout path runs: a life is lost, a null answer is
// recorded with the full budget as elapsed time, and the round locks.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	snap := c.syncer.Session().Dispatch(session.UpdateTime{})
	if snap.TimeLeft > 0 {
		return
	}
	c.timeUp()
}

// SubmitAnswer accepts the player's choice for the current question. At most
// one answer is accepted per question; repeat calls are ignored.
func (c *Controller) SubmitAnswer(answerIndex int) {
	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return
	}
	c.locked = true
	c.selected = &answerIndex
	correct := answerIndex == c.correctIndex
	c.mu.Unlock()

	snap := c.syncer.Session().Snapshot()
	player := snap.CurrentPlayer
	if player == nil {
		return
	}

	budget := QuestionBudget(c.quiz)
	timeLeft := snap.TimeLeft
	elapsed := budget - timeLeft

	score := player.Score
	lives := player.Lives
	if correct {
		score += basePoints + SpeedBonus(timeLeft)
	} else if lives > 0 {
		lives--
	}

	c.record(snap.CurrentQuestion, &answerIndex, correct, elapsed, score, lives)
	c.scheduleAdvance()
}

func (c *Controller) timeUp() {
	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return
	}
	c.locked = true
	c.mu.Unlock()

	snap := c.syncer.Session().Snapshot()
	player := snap.CurrentPlayer
	if player == nil {
		return
	}

	lives := player.Lives
	if lives > 0 {
		lives--
	}

	c.record(snap.CurrentQuestion, nil, false, QuestionBudget(c.quiz), player.Score, lives)
	c.scheduleAdvance()
}

// record appends the answer locally, persists it fire-and-forget, and
// mirrors the new score/lives immediately so the player's own view never
// waits on the network.
func (c *Controller) record(questionIndex int, answerIndex *int, correct bool, elapsed, score, lives int) {
	snap := c.syncer.Session().Snapshot()
	player := snap.CurrentPlayer

	c.syncer.Session().Dispatch(session.SubmitAnswer{Record: domain.AnswerRecord{
		PlayerID:      player.ID,
		QuizID:        c.quiz.ID,
		QuestionIndex: questionIndex,
		AnswerIndex:   answerIndex,
		Correct:       correct,
		TimeSpent:     elapsed,
	}})

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	c.syncer.UpdatePlayerScore(ctx, player.ID, score, lives)
	c.syncer.SubmitAnswer(ctx, player.ID, c.quiz.ID, questionIndex, answerIndex, correct, elapsed)
}

func (c *Controller) scheduleAdvance() {
	if c.resultDelay <= 0 {
		c.advance()
		return
	}
	c.mu.Lock()
	c.advanceTimer = time.AfterFunc(c.resultDelay, c.advance)
	c.mu.Unlock()
}

// advance moves to the next question, or ends the quiz after the last one.
func (c *Controller) advance() {
	snap := c.syncer.Session().Snapshot()
	if snap.CurrentQuestion+1 >= len(c.quiz.Questions) {
		c.syncer.Session().Dispatch(session.EndGame{})
		c.Stop()
		return
	}

	next := snap.CurrentQuestion + 1
	c.syncer.Session().Dispatch(session.NextQuestion{TimeLimit: QuestionBudget(c.quiz)})
	c.prepareQuestion(next)
}

// prepareQuestion draws this player's option order for the question. The
// permutation is seeded by (player id, question index) so re-entering the
// same question mid-play re-derives the identical order, and it is drawn
// fresh per question so different questions get independent orders.
func (c *Controller) prepareQuestion(index int) {
	question := c.quiz.Questions[index]

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
	c.locked = false

	if !c.quiz.ShuffleAnswers {
		c.options = append([]string(nil), question.Options...)
		c.correctIndex = question.CorrectAnswer
		return
	}

	snap := c.syncer.Session().Snapshot()
	playerID := ""
	if snap.CurrentPlayer != nil {
		playerID = snap.CurrentPlayer.ID
	}
	rnd := shuffle.QuestionSource(playerID, index)
	c.options, c.correctIndex = shuffle.Options(rnd, question.Options, question.CorrectAnswer)
}

func (c *Controller) run() {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			snap := c.syncer.Session().Snapshot()
			if snap.GameState != domain.StatusPlaying {
				return
			}
			c.Tick()
		}
	}
}
