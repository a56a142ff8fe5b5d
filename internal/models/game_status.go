package models

// GameStatus represents the current phase of a game
type GameStatus string

const (
	StatusWaiting    GameStatus = "waiting"
	StatusStarting   GameStatus = "starting"
	StatusWordReveal GameStatus = "word_reveal"
	StatusDiscussion GameStatus = "discussion"
	StatusVoting     GameStatus = "voting"
	StatusResults    GameStatus = "results"
	StatusFinished   GameStatus = "finished"
)

// Valid reports whether s is one of the known phases
func (s GameStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusStarting, StatusWordReveal, StatusDiscussion,
		StatusVoting, StatusResults, StatusFinished:
		return true
	}
	return false
}

// GameMode selects how clues are given during discussion
type GameMode string

const (
	// ModeVoice means clues are spoken out loud; the server only runs the timer
	ModeVoice GameMode = "voice"

	// ModeText means players write clues one at a time in turn order
	ModeText GameMode = "text"
)

// Valid reports whether m is a known mode
func (m GameMode) Valid() bool {
	return m == ModeVoice || m == ModeText
}
