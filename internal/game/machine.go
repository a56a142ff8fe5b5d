package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aaronzipp/word-impostor/internal/models"
)

// StatusUpdates carries the optional fields an updateStatus action may set
// alongside the status itself.
type StatusUpdates struct {
	RoundStartedAt      *time.Time
	CurrentTurnPlayerID string
}

// Start moves a waiting game into its first round: one player is flagged
// impostor uniformly at random, a word is drawn, and the round counter and
// discussion timer are set.
func Start(g *models.Game, words Source, now time.Time) error {
	if g.Status != models.StatusWaiting {
		return fmt.Errorf("%w: cannot start from %s", models.ErrInvalidTransition, g.Status)
	}
	if len(g.Players) < MinPlayers {
		return fmt.Errorf("%w: need at least %d players", models.ErrValidation, MinPlayers)
	}

	idx := rand.Intn(len(g.Players))
	for i := range g.Players {
		g.Players[i].IsImpostor = i == idx
	}
	g.ImpostorID = g.Players[idx].ID
	g.CurrentWord = words.Draw()
	g.CurrentRound = 1
	g.Status = models.StatusStarting
	g.RoundStartedAt = &now
	return nil
}

// Transition applies an updateStatus action. Only the automatic transitions
// of the round flow are reachable this way; start, finalize and nextRound
// have their own entry points.
//
// Re-applying the game's current status is a no-op so that near-simultaneous
// timer observers cannot double-fire a transition.
func Transition(g *models.Game, to models.GameStatus, upd StatusUpdates, now time.Time) error {
	if to == g.Status {
		return nil
	}

	switch {
	case g.Status == models.StatusStarting && to == models.StatusWordReveal:
		// nothing beyond the status change

	case g.Status == models.StatusWordReveal && to == models.StatusDiscussion:
		// restart the discussion timer
		if upd.RoundStartedAt != nil {
			g.RoundStartedAt = upd.RoundStartedAt
		} else {
			g.RoundStartedAt = &now
		}

	case g.Status == models.StatusDiscussion && to == models.StatusVoting:
		if !discussionOver(g, now) {
			return fmt.Errorf("%w: discussion is still running", models.ErrInvalidTransition)
		}

	default:
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, g.Status, to)
	}

	g.Status = to
	if upd.CurrentTurnPlayerID != "" {
		g.CurrentTurnPlayerID = upd.CurrentTurnPlayerID
	}
	if to == models.StatusDiscussion && g.Mode == models.ModeText && g.CurrentTurnPlayerID == "" {
		g.CurrentTurnPlayerID = nextTurnHolder(g)
	}
	return nil
}

// discussionOver reports whether the discussion phase may end: the timer
// elapsed, or in text mode every non-impostor has answered.
func discussionOver(g *models.Game, now time.Time) bool {
	if g.Mode == models.ModeText && allAnswered(g) {
		return true
	}
	if g.RoundStartedAt == nil {
		return false
	}
	deadline := g.RoundStartedAt.Add(time.Duration(g.RoundTime) * time.Second)
	return !now.Before(deadline)
}

// allAnswered reports whether every non-impostor has answered and at least
// one answer was given.
func allAnswered(g *models.Game) bool {
	answered := 0
	for i := range g.Players {
		p := &g.Players[i]
		if p.IsImpostor {
			continue
		}
		if !p.HasAnswered {
			return false
		}
		answered++
	}
	return answered > 0
}

// nextTurnHolder returns the first roster-order non-impostor who has not
// answered yet, or "" when none remain.
func nextTurnHolder(g *models.Game) string {
	for i := range g.Players {
		p := &g.Players[i]
		if !p.IsImpostor && !p.HasAnswered {
			return p.ID
		}
	}
	return ""
}

// SubmitAnswer records a written clue. Only the current turn holder may
// answer, never the impostor and never twice; a rejected answer leaves the
// game untouched. When the last non-impostor answers, the game moves straight
// to voting.
func SubmitAnswer(g *models.Game, playerID, answer string) error {
	if g.Status != models.StatusDiscussion {
		return fmt.Errorf("%w: answers are only accepted during discussion", models.ErrInvalidTransition)
	}
	if g.Mode != models.ModeText {
		return fmt.Errorf("%w: answers are only used in text mode", models.ErrValidation)
	}
	p := g.Player(playerID)
	if p == nil {
		return fmt.Errorf("%w: player %s", models.ErrNotFound, playerID)
	}
	if p.IsImpostor {
		return fmt.Errorf("%w: the impostor does not answer", models.ErrUnauthorized)
	}
	if p.HasAnswered {
		return fmt.Errorf("%w: player already answered", models.ErrValidation)
	}
	if g.CurrentTurnPlayerID != playerID {
		return fmt.Errorf("%w: not this player's turn", models.ErrUnauthorized)
	}

	p.HasAnswered = true
	p.Answer = answer
	g.CurrentTurnPlayerID = nextTurnHolder(g)
	if g.CurrentTurnPlayerID == "" && allAnswered(g) {
		g.Status = models.StatusVoting
	}
	return nil
}

// SubmitVote records who voterID wants to eliminate. A voter's later vote
// overwrites their earlier one.
func SubmitVote(g *models.Game, voterID, votedID string) error {
	if g.Status != models.StatusVoting {
		return fmt.Errorf("%w: votes are only accepted during voting", models.ErrInvalidTransition)
	}
	voter := g.Player(voterID)
	if voter == nil {
		return fmt.Errorf("%w: voter %s", models.ErrNotFound, voterID)
	}
	if g.Player(votedID) == nil {
		return fmt.Errorf("%w: voted player %s", models.ErrNotFound, votedID)
	}
	if g.Votes == nil {
		g.Votes = make(map[string]string)
	}
	g.Votes[voterID] = votedID
	voter.Vote = votedID
	return nil
}

// FinalizeVoting resolves the vote once every player has one recorded and
// moves the game to results.
func FinalizeVoting(g *models.Game) error {
	if g.Status != models.StatusVoting {
		return fmt.Errorf("%w: cannot finalize from %s", models.ErrInvalidTransition, g.Status)
	}
	for i := range g.Players {
		if _, ok := g.Votes[g.Players[i].ID]; !ok {
			return fmt.Errorf("%w: not every player has voted", models.ErrValidation)
		}
	}
	ResolveVotes(g)
	g.Status = models.StatusResults
	return nil
}

// NextRound advances from the results screen: either into the next round
// with fresh per-round state and a new word, or to finished when the round
// budget is spent.
func NextRound(g *models.Game, words Source, now time.Time) error {
	if g.Status != models.StatusResults {
		return fmt.Errorf("%w: cannot advance from %s", models.ErrInvalidTransition, g.Status)
	}
	if g.CurrentRound >= g.MaxRounds {
		g.Status = models.StatusFinished
		return nil
	}

	g.CurrentRound++
	g.CurrentWord = words.Draw()
	for i := range g.Players {
		g.Players[i].ResetRound()
	}
	g.Votes = make(map[string]string)
	g.CurrentTurnPlayerID = ""
	g.Status = models.StatusWordReveal
	g.RoundStartedAt = &now
	return nil
}
