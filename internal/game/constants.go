package game

import "time"

const (
	// MinPlayers is the minimum number of players required to start a game
	MinPlayers = 3

	// MaxPlayers is the roster cap per game
	MaxPlayers = 10

	// CodeLength is the length of generated join codes
	CodeLength = 6
)

// StatusDelay is how long the starting and word_reveal screens are shown
// before the next automatic transition may fire.
const StatusDelay = 3 * time.Second
