// Package memory is the disconnected fallback implementation of
// store.Backend. Everything lives in process; rankings sort by score only,
// relying on sort stability instead of the connected tie-break.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizlive/internal/domain"
	"quizlive/internal/store"
)

// Backend keeps all records in maps guarded by one mutex.
type Backend struct {
	mu      sync.RWMutex
	clock   func() time.Time
	quizzes map[string]domain.Quiz
	players map[string]domain.Player
	// answers keyed by quiz id, appended in arrival order
	answers map[string][]domain.AnswerRecord
	// joinOrder preserves roster ordering per quiz
	joinOrder map[string][]string
}

// New returns an empty in-memory backend.
func New() *Backend {
	return NewWithClock(time.Now)
}

// NewWithClock allows deterministic timestamps in tests.
func NewWithClock(clock func() time.Time) *Backend {
	return &Backend{
		clock:     clock,
		quizzes:   make(map[string]domain.Quiz),
		players:   make(map[string]domain.Player),
		answers:   make(map[string][]domain.AnswerRecord),
		joinOrder: make(map[string][]string),
	}
}

func (b *Backend) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	quiz.Players = nil
	b.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (b *Backend) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	quiz, ok := b.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.Players = b.rosterLocked(quizID)
	return quiz, nil
}

func (b *Backend) InsertPlayer(_ context.Context, player domain.Player) (domain.Player, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.quizzes[player.QuizID]; !ok {
		return domain.Player{}, domain.ErrQuizNotFound
	}
	if _, ok := b.players[player.ID]; !ok {
		b.joinOrder[player.QuizID] = append(b.joinOrder[player.QuizID], player.ID)
	}
	b.players[player.ID] = player
	return player, nil
}

func (b *Backend) UpdatePlayerScore(_ context.Context, playerID string, score, lives int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	player, ok := b.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	player.Score = score
	player.Lives = lives
	player.UpdatedAt = b.clock()
	b.players[playerID] = player
	return nil
}

func (b *Backend) InsertAnswer(_ context.Context, rec domain.AnswerRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answers[rec.QuizID] = append(b.answers[rec.QuizID], rec)
	return nil
}

func (b *Backend) ListAnswers(_ context.Context, quizID string) ([]domain.AnswerRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.AnswerRecord, len(b.answers[quizID]))
	copy(out, b.answers[quizID])
	return out, nil
}

func (b *Backend) Rankings(_ context.Context, quizID string) ([]domain.Player, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	roster := b.rosterLocked(quizID)
	sort.SliceStable(roster, func(i, j int) bool {
		return roster[i].Score > roster[j].Score
	})
	return roster, nil
}

func (b *Backend) SetQuizStatus(_ context.Context, quizID string, status domain.QuizStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	quiz, ok := b.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.Status = status
	quiz.UpdatedAt = b.clock()
	b.quizzes[quizID] = quiz
	return nil
}

func (b *Backend) rosterLocked(quizID string) []domain.Player {
	ids := b.joinOrder[quizID]
	roster := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		roster = append(roster, b.players[id])
	}
	return roster
}

var _ store.Backend = (*Backend)(nil)

// Notifier is an in-process push channel, mostly useful in tests and for the
// gateway when it shares a process with the backend.
type Notifier struct {
	mu   sync.Mutex
	subs map[string]map[chan store.PlayerChange]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[chan store.PlayerChange]struct{})}
}

func (n *Notifier) PublishPlayerChange(_ context.Context, change store.PlayerChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs[change.QuizID] {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (n *Notifier) SubscribePlayerChanges(_ context.Context, quizID string) (<-chan store.PlayerChange, func(), error) {
	ch := make(chan store.PlayerChange, 8)
	n.mu.Lock()
	if n.subs[quizID] == nil {
		n.subs[quizID] = make(map[chan store.PlayerChange]struct{})
	}
	n.subs[quizID][ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.subs[quizID][ch]; ok {
			delete(n.subs[quizID], ch)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel, nil
}

var _ store.Notifier = (*Notifier)(nil)
