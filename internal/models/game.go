package models

import (
	"fmt"
	"time"
)

// Game is the authoritative aggregate for one game session. It is always
// loaded and stored whole; every mutation goes through the dispatcher.
type Game struct {
	ID                  string            `json:"id"`
	Code                string            `json:"code"`
	Status              GameStatus        `json:"status"`
	Mode                GameMode          `json:"mode"`
	RoundTime           int               `json:"round_time"` // seconds of discussion per round
	CurrentRound        int               `json:"current_round"`
	MaxRounds           int               `json:"max_rounds"`
	CurrentWord         string            `json:"current_word,omitempty"`
	ImpostorID          string            `json:"impostor_id,omitempty"`
	LeaderID            string            `json:"leader_id"`
	CreatedAt           time.Time         `json:"created_at"`
	Players             []Player          `json:"players"` // join order, leader first
	Votes               map[string]string `json:"votes,omitempty"`
	RoundStartedAt      *time.Time        `json:"round_started_at,omitempty"`
	CurrentTurnPlayerID string            `json:"current_turn_player_id,omitempty"`
}

// Player returns the roster entry with the given id, or nil.
func (g *Game) Player(id string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// Impostor returns the current impostor's roster entry, or nil before the
// game has started.
func (g *Game) Impostor() *Player {
	if g.ImpostorID == "" {
		return nil
	}
	return g.Player(g.ImpostorID)
}

// Clone deep-copies the aggregate so callers can mutate freely.
func (g *Game) Clone() *Game {
	out := *g
	out.Players = make([]Player, len(g.Players))
	copy(out.Players, g.Players)
	if g.Votes != nil {
		out.Votes = make(map[string]string, len(g.Votes))
		for k, v := range g.Votes {
			out.Votes[k] = v
		}
	}
	if g.RoundStartedAt != nil {
		t := *g.RoundStartedAt
		out.RoundStartedAt = &t
	}
	return &out
}

// Validate checks the aggregate against the stored schema. The storage layer
// runs it on every read and write so malformed records are rejected instead
// of passed through.
func (g *Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("%w: missing game id", ErrValidation)
	}
	if len(g.Code) != 6 {
		return fmt.Errorf("%w: join code must be 6 digits", ErrValidation)
	}
	for _, c := range g.Code {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: join code must be 6 digits", ErrValidation)
		}
	}
	if !g.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, g.Status)
	}
	if !g.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, g.Mode)
	}
	if g.RoundTime <= 0 || g.MaxRounds <= 0 {
		return fmt.Errorf("%w: round time and max rounds must be positive", ErrValidation)
	}
	if g.CurrentRound < 0 || g.CurrentRound > g.MaxRounds {
		return fmt.Errorf("%w: current round %d out of range", ErrValidation, g.CurrentRound)
	}
	if len(g.Players) == 0 {
		return fmt.Errorf("%w: game has no players", ErrValidation)
	}

	seen := make(map[string]bool, len(g.Players))
	leaders, impostors := 0, 0
	for i := range g.Players {
		p := &g.Players[i]
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("%w: player with empty id or name", ErrValidation)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate player id %s", ErrValidation, p.ID)
		}
		seen[p.ID] = true
		if p.IsLeader {
			leaders++
		}
		if p.IsImpostor {
			impostors++
		}
	}
	if leaders != 1 || !g.Players[0].IsLeader || g.Players[0].ID != g.LeaderID {
		return fmt.Errorf("%w: game must have exactly one leader, joined first", ErrValidation)
	}
	if impostors > 1 {
		return fmt.Errorf("%w: more than one impostor", ErrValidation)
	}
	if g.ImpostorID != "" {
		p := g.Player(g.ImpostorID)
		if p == nil || !p.IsImpostor || impostors != 1 {
			return fmt.Errorf("%w: impostor_id does not match the flagged player", ErrValidation)
		}
	} else if impostors != 0 {
		return fmt.Errorf("%w: impostor flagged but impostor_id empty", ErrValidation)
	}
	for voter, voted := range g.Votes {
		if !seen[voter] || !seen[voted] {
			return fmt.Errorf("%w: vote references unknown player", ErrValidation)
		}
	}
	if g.CurrentTurnPlayerID != "" && !seen[g.CurrentTurnPlayerID] {
		return fmt.Errorf("%w: turn holder is not a player", ErrValidation)
	}
	return nil
}
