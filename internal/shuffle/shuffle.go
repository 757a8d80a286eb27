// Package shuffle provides the unbiased permutation used for avatar picks
// and per-player answer-order randomization.
package shuffle

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// Slice returns a Fisher-Yates shuffled copy of s. The input is never
// mutated.
func Slice[T any](r *rand.Rand, s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Options permutes a question's options and reports where the correct option
// ended up in the permuted order.
func Options(r *rand.Rand, options []string, correct int) ([]string, int) {
	idx := make([]int, len(options))
	for i := range idx {
		idx[i] = i
	}
	idx = Slice(r, idx)

	out := make([]string, len(options))
	newCorrect := 0
	for pos, orig := range idx {
		out[pos] = options[orig]
		if orig == correct {
			newCorrect = pos
		}
	}
	return out, newCorrect
}

// QuestionSource seeds a source from the (player, question) pair so the same
// permutation is re-derived if the question is re-entered mid-play, e.g.
// after a page reload.
func QuestionSource(playerID string, questionIndex int) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(playerID))
	_, _ = h.Write([]byte("#" + strconv.Itoa(questionIndex)))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
