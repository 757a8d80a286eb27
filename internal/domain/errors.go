package domain

import "errors"

var (
	// ErrQuizNotFound is returned by stores when a quiz id is unknown. The
	// sync layer translates it into a nil quiz for callers.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrPlayerNotFound is returned when a player id is unknown to the store.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrQuizFull rejects a join when the roster already has MaxPlayers entries.
	ErrQuizFull = errors.New("quiz already has the maximum number of players")
	// ErrNameTaken rejects a join whose name collides case-insensitively.
	ErrNameTaken = errors.New("player name already in use")
	// ErrQuizInProgress rejects a join once the quiz has started.
	ErrQuizInProgress = errors.New("quiz is already in progress")
	// ErrQuizFinished rejects a join after the quiz has ended.
	ErrQuizFinished = errors.New("quiz has already finished")
	// ErrEmptyRoster guards game start; at least one player must have joined.
	ErrEmptyRoster = errors.New("quiz has no players")
)
