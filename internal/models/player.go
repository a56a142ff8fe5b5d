package models

// Player represents one participant in a game. The JSON tags are the stored
// schema; players are persisted as part of the game aggregate.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsImpostor  bool   `json:"is_impostor"`
	IsLeader    bool   `json:"is_leader"`
	Points      int    `json:"points"`
	HasAnswered bool   `json:"has_answered,omitempty"`
	Answer      string `json:"answer,omitempty"`
	Vote        string `json:"vote,omitempty"`
	IsVotedOut  bool   `json:"is_voted_out,omitempty"`
}

// ResetRound clears the per-round fields. Points and the impostor flag
// survive across rounds.
func (p *Player) ResetRound() {
	p.HasAnswered = false
	p.Answer = ""
	p.Vote = ""
	p.IsVotedOut = false
}
