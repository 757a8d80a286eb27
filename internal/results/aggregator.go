// Package results computes the post-game standings from the final roster
// and the accumulated answer log.
package results

import (
	"sort"

	"quizlive/internal/domain"
)

// PlayerResult is one player's final line: their roster snapshot plus the
// derived accuracy and timing figures.
type PlayerResult struct {
	domain.Player
	CorrectAnswers int
	TotalTime      int
	AverageTime    float64
	Accuracy       float64
}

// Standings returns the final ranked results. Ordering is score descending
// with average response time ascending as the tie-break, which deliberately
// differs from the live scoreboard's reached-the-score-first ordering.
//
// Duplicate records for the same (player, question) pair can occur under
// multi-tab or retry conditions; only the first record in log order counts.
func Standings(quiz domain.Quiz, roster []domain.Player, records []domain.AnswerRecord) []PlayerResult {
	questionCount := len(quiz.Questions)
	byPlayer := make(map[string]*PlayerResult, len(roster))
	out := make([]PlayerResult, 0, len(roster))

	for _, p := range roster {
		out = append(out, PlayerResult{Player: p})
	}
	for i := range out {
		byPlayer[out[i].ID] = &out[i]
	}

	type key struct {
		player   string
		question int
	}
	seen := make(map[key]struct{}, len(records))

	for _, rec := range records {
		r, ok := byPlayer[rec.PlayerID]
		if !ok {
			continue
		}
		k := key{rec.PlayerID, rec.QuestionIndex}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if rec.Correct {
			r.CorrectAnswers++
		}
		r.TotalTime += rec.TimeSpent
	}

	if questionCount > 0 {
		for i := range out {
			out[i].AverageTime = float64(out[i].TotalTime) / float64(questionCount)
			out[i].Accuracy = float64(out[i].CorrectAnswers) / float64(questionCount) * 100
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].AverageTime < out[j].AverageTime
	})
	return out
}
