package models

import "fmt"

// Settings are the options the leader picks when creating a game.
type Settings struct {
	Mode      GameMode `json:"mode"`
	RoundTime int      `json:"roundTime"`
	MaxRounds int      `json:"maxRounds"`
}

// Validate rejects settings the game cannot be played with.
func (s Settings) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, s.Mode)
	}
	if s.RoundTime <= 0 {
		return fmt.Errorf("%w: round time must be positive", ErrValidation)
	}
	if s.MaxRounds <= 0 {
		return fmt.Errorf("%w: max rounds must be positive", ErrValidation)
	}
	return nil
}
