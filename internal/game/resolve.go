package game

import "github.com/aaronzipp/word-impostor/internal/models"

// Point awards per round outcome.
const (
	// PointsCorrectVote goes to each player whose vote hit the impostor
	PointsCorrectVote = 10

	// PointsImpostorEscape goes to the impostor when someone else (or no
	// one) was eliminated
	PointsImpostorEscape = 15
)

// VoteResult summarizes one resolved round.
type VoteResult struct {
	EliminatedID   string
	ImpostorCaught bool
	Counts         map[string]int
}

// ResolveVotes tallies the final votes, eliminates the most voted player and
// applies the point awards.
//
// The eliminated player is the one with the strictly highest tally; a tie is
// broken toward the tied player who joined earliest. Iterating the roster
// instead of the vote map keeps the pick deterministic.
func ResolveVotes(g *models.Game) VoteResult {
	counts := make(map[string]int)
	for _, votedID := range g.Votes {
		counts[votedID]++
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}

	eliminatedID := ""
	if max > 0 {
		for i := range g.Players {
			if counts[g.Players[i].ID] == max {
				eliminatedID = g.Players[i].ID
				break
			}
		}
	}

	caught := eliminatedID != "" && eliminatedID == g.ImpostorID
	for i := range g.Players {
		p := &g.Players[i]
		p.IsVotedOut = eliminatedID != "" && p.ID == eliminatedID
		switch {
		case caught:
			if g.Votes[p.ID] == g.ImpostorID {
				p.Points += PointsCorrectVote
			}
		case p.ID == g.ImpostorID:
			p.Points += PointsImpostorEscape
		}
	}

	return VoteResult{
		EliminatedID:   eliminatedID,
		ImpostorCaught: caught,
		Counts:         counts,
	}
}
