// Package postgres is the connected implementation of store.Backend. It owns
// the mapping between the snake_case wire schema and the domain shapes.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizlive/internal/domain"
	"quizlive/internal/store"
)

// Backend talks to the quizzes, players and game_answers tables.
type Backend struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Backend {
	return &Backend{pool: pool}
}

func (b *Backend) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal questions: %w", err)
	}
	_, err = b.pool.Exec(ctx, `
		INSERT INTO quizzes
			(id, title, description, max_players, time_type, time_per_question,
			 total_time, lives, shuffle_answers, questions, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)`,
		quiz.ID, quiz.Title, quiz.Description, quiz.MaxPlayers, string(quiz.TimeType),
		quiz.TimePerQuestion, quiz.TotalTime, quiz.Lives, quiz.ShuffleAnswers,
		questions, string(quiz.Status), quiz.CreatedAt)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	quiz.UpdatedAt = quiz.CreatedAt
	quiz.Players = nil
	return quiz, nil
}

func (b *Backend) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		quiz      domain.Quiz
		timeType  string
		status    string
		questions []byte
	)
	err := b.pool.QueryRow(ctx, `
		SELECT id, title, description, max_players, time_type, time_per_question,
		       total_time, lives, shuffle_answers, questions, status, created_at, updated_at
		FROM quizzes WHERE id=$1`, quizID).Scan(
		&quiz.ID, &quiz.Title, &quiz.Description, &quiz.MaxPlayers, &timeType,
		&quiz.TimePerQuestion, &quiz.TotalTime, &quiz.Lives, &quiz.ShuffleAnswers,
		&questions, &status, &quiz.CreatedAt, &quiz.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.TimeType = domain.TimeType(timeType)
	quiz.Status = domain.QuizStatus(status)
	if err := json.Unmarshal(questions, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}

	quiz.Players, err = b.queryPlayers(ctx, `
		SELECT id, quiz_id, name, avatar, lives, score, joined_at, updated_at
		FROM players WHERE quiz_id=$1 ORDER BY joined_at ASC`, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (b *Backend) InsertPlayer(ctx context.Context, player domain.Player) (domain.Player, error) {
	avatar, err := json.Marshal(player.Avatar)
	if err != nil {
		return domain.Player{}, fmt.Errorf("marshal avatar: %w", err)
	}
	_, err = b.pool.Exec(ctx, `
		INSERT INTO players (id, quiz_id, name, avatar, lives, score, joined_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)`,
		player.ID, player.QuizID, player.Name, avatar, player.Lives, player.Score, player.JoinedAt)
	if err != nil {
		return domain.Player{}, fmt.Errorf("insert player: %w", err)
	}
	player.UpdatedAt = player.JoinedAt
	return player, nil
}

func (b *Backend) UpdatePlayerScore(ctx context.Context, playerID string, score, lives int) error {
	tag, err := b.pool.Exec(ctx, `
		UPDATE players SET score=$2, lives=$3, updated_at=NOW() WHERE id=$1`,
		playerID, score, lives)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (b *Backend) InsertAnswer(ctx context.Context, rec domain.AnswerRecord) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO game_answers
			(player_id, quiz_id, question_index, answer_index, is_correct, time_spent, answered_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.PlayerID, rec.QuizID, rec.QuestionIndex, rec.AnswerIndex, rec.Correct, rec.TimeSpent, rec.AnsweredAt)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

func (b *Backend) ListAnswers(ctx context.Context, quizID string) ([]domain.AnswerRecord, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT player_id, quiz_id, question_index, answer_index, is_correct, time_spent, answered_at
		FROM game_answers WHERE quiz_id=$1 ORDER BY answered_at ASC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []domain.AnswerRecord
	for rows.Next() {
		var rec domain.AnswerRecord
		if err := rows.Scan(&rec.PlayerID, &rec.QuizID, &rec.QuestionIndex,
			&rec.AnswerIndex, &rec.Correct, &rec.TimeSpent, &rec.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Rankings orders by score descending with the live tie-break: the player
// who reached the score earliest (lowest updated_at) ranks higher.
func (b *Backend) Rankings(ctx context.Context, quizID string) ([]domain.Player, error) {
	return b.queryPlayers(ctx, `
		SELECT id, quiz_id, name, avatar, lives, score, joined_at, updated_at
		FROM players WHERE quiz_id=$1 ORDER BY score DESC, updated_at ASC`, quizID)
}

func (b *Backend) SetQuizStatus(ctx context.Context, quizID string, status domain.QuizStatus) error {
	tag, err := b.pool.Exec(ctx, `
		UPDATE quizzes SET status=$2, updated_at=NOW() WHERE id=$1`,
		quizID, string(status))
	if err != nil {
		return fmt.Errorf("update quiz status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (b *Backend) queryPlayers(ctx context.Context, query, quizID string) ([]domain.Player, error) {
	rows, err := b.pool.Query(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var out []domain.Player
	for rows.Next() {
		var (
			p      domain.Player
			avatar []byte
		)
		if err := rows.Scan(&p.ID, &p.QuizID, &p.Name, &avatar, &p.Lives, &p.Score,
			&p.JoinedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		if len(avatar) > 0 {
			if err := json.Unmarshal(avatar, &p.Avatar); err != nil {
				return nil, fmt.Errorf("unmarshal avatar: %w", err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ store.Backend = (*Backend)(nil)
