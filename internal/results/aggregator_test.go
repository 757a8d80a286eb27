package results

import (
	"testing"

	"quizlive/internal/domain"
)

func intp(i int) *int { return &i }

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:        "quiz-1",
		Questions: make([]domain.Question, 2),
	}
}

func TestStandingsComputesAccuracyAndTiming(t *testing.T) {
	roster := []domain.Player{
		{ID: "p1", Name: "Alice", Score: 103, Lives: 2},
	}
	records := []domain.AnswerRecord{
		{PlayerID: "p1", QuestionIndex: 0, AnswerIndex: intp(1), Correct: true, TimeSpent: 5},
		{PlayerID: "p1", QuestionIndex: 1, AnswerIndex: nil, Correct: false, TimeSpent: 20},
	}

	out := Standings(twoQuestionQuiz(), roster, records)
	if len(out) != 1 {
		t.Fatalf("expected one result, got %d", len(out))
	}
	r := out[0]
	if r.CorrectAnswers != 1 || r.TotalTime != 25 {
		t.Fatalf("unexpected tallies: %+v", r)
	}
	if r.AverageTime != 12.5 {
		t.Fatalf("expected average 12.5, got %v", r.AverageTime)
	}
	if r.Accuracy != 50 {
		t.Fatalf("expected 50%% accuracy, got %v", r.Accuracy)
	}
}

func TestStandingsTieBreakByAverageTime(t *testing.T) {
	roster := []domain.Player{
		{ID: "p1", Name: "Alice", Score: 103},
		{ID: "p2", Name: "Bob", Score: 103},
		{ID: "p3", Name: "Carol", Score: 205},
	}
	records := []domain.AnswerRecord{
		{PlayerID: "p1", QuestionIndex: 0, Correct: true, TimeSpent: 12},
		{PlayerID: "p1", QuestionIndex: 1, Correct: false, TimeSpent: 12},
		{PlayerID: "p2", QuestionIndex: 0, Correct: true, TimeSpent: 4},
		{PlayerID: "p2", QuestionIndex: 1, Correct: false, TimeSpent: 4},
		{PlayerID: "p3", QuestionIndex: 0, Correct: true, TimeSpent: 18},
		{PlayerID: "p3", QuestionIndex: 1, Correct: true, TimeSpent: 18},
	}

	out := Standings(twoQuestionQuiz(), roster, records)
	want := []string{"Carol", "Bob", "Alice"}
	for i, name := range want {
		if out[i].Name != name {
			t.Fatalf("expected order %v, got %+v", want, out)
		}
	}
}

func TestStandingsFirstRecordWinsOnDuplicates(t *testing.T) {
	roster := []domain.Player{{ID: "p1", Name: "Alice", Score: 103}}
	records := []domain.AnswerRecord{
		{PlayerID: "p1", QuestionIndex: 0, Correct: true, TimeSpent: 5},
		{PlayerID: "p1", QuestionIndex: 0, Correct: false, TimeSpent: 19},
		{PlayerID: "p1", QuestionIndex: 0, Correct: true, TimeSpent: 2},
	}

	out := Standings(twoQuestionQuiz(), roster, records)
	r := out[0]
	if r.CorrectAnswers != 1 || r.TotalTime != 5 {
		t.Fatalf("duplicates must not count, got %+v", r)
	}
}

func TestStandingsIgnoresRecordsOffRoster(t *testing.T) {
	roster := []domain.Player{{ID: "p1", Name: "Alice"}}
	records := []domain.AnswerRecord{
		{PlayerID: "ghost", QuestionIndex: 0, Correct: true, TimeSpent: 3},
	}

	out := Standings(twoQuestionQuiz(), roster, records)
	if out[0].CorrectAnswers != 0 || out[0].TotalTime != 0 {
		t.Fatalf("off-roster record counted: %+v", out[0])
	}
}

func TestStandingsEmptyLog(t *testing.T) {
	roster := []domain.Player{
		{ID: "p1", Name: "Alice", Score: 0},
		{ID: "p2", Name: "Bob", Score: 0},
	}

	out := Standings(twoQuestionQuiz(), roster, nil)
	if len(out) != 2 {
		t.Fatalf("roster must survive an empty log, got %d", len(out))
	}
	for _, r := range out {
		if r.Accuracy != 0 || r.AverageTime != 0 {
			t.Fatalf("expected zero figures, got %+v", r)
		}
	}
}
