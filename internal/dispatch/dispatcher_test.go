package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/word-impostor/internal/game"
	"github.com/aaronzipp/word-impostor/internal/models"
	"github.com/aaronzipp/word-impostor/internal/store"
)

type notifierSpy struct {
	mu  sync.Mutex
	ids []string
}

func (n *notifierSpy) NotifyChanged(gameID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, gameID)
}

func (n *notifierSpy) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.ids)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *notifierSpy, *fakeClock) {
	t.Helper()
	spy := &notifierSpy{}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)}
	d := New(store.NewMemoryStore(), spy, game.WordList{"pineapple"}, zerolog.Nop())
	d.now = clock.Now
	return d, spy, clock
}

// lobby creates a game with the given players, the first one leading.
func lobby(t *testing.T, d *Dispatcher, mode models.GameMode, names ...string) *models.Game {
	t.Helper()
	ctx := context.Background()
	g, err := d.Create(ctx, names[0], models.Settings{Mode: mode, RoundTime: 60, MaxRounds: 3})
	require.NoError(t, err)
	for _, name := range names[1:] {
		g, err = d.Join(ctx, g.Code, name)
		require.NoError(t, err)
	}
	return g
}

func TestCreate_Validation(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	_, err := d.Create(ctx, "  ", models.Settings{Mode: models.ModeText, RoundTime: 60, MaxRounds: 3})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = d.Create(ctx, "Ana", models.Settings{Mode: "carrier pigeon", RoundTime: 60, MaxRounds: 3})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = d.Create(ctx, "Ana", models.Settings{Mode: models.ModeText, RoundTime: 0, MaxRounds: 3})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreate_SeedsLeader(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	g, err := d.Create(context.Background(), "Ana", models.Settings{Mode: models.ModeText, RoundTime: 60, MaxRounds: 3})
	require.NoError(t, err)

	assert.Equal(t, models.StatusWaiting, g.Status)
	assert.Len(t, g.Code, game.CodeLength)
	require.Len(t, g.Players, 1)
	assert.Equal(t, "Ana", g.Players[0].Name)
	assert.True(t, g.Players[0].IsLeader)
	assert.Equal(t, g.Players[0].ID, g.LeaderID)
	assert.Equal(t, 0, g.CurrentRound)
}

func TestJoin(t *testing.T) {
	d, spy, _ := newTestDispatcher(t)
	ctx := context.Background()
	g := lobby(t, d, models.ModeText, "Ana", "Beto")

	_, err := d.Join(ctx, "000000", "Caro")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = d.Join(ctx, g.Code, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	g, err = d.Join(ctx, g.Code, "Caro")
	require.NoError(t, err)
	assert.Len(t, g.Players, 3)
	assert.Equal(t, "Caro", g.Players[2].Name)
	assert.False(t, g.Players[2].IsLeader)
	assert.Positive(t, spy.count(), "joins notify observers")
}

func TestJoin_RejectedAfterStartAndWhenFull(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	g := lobby(t, d, models.ModeVoice, "Ana", "Beto", "Caro")
	require.NoError(t, d.Start(ctx, g.ID, g.LeaderID))
	_, err := d.Join(ctx, g.Code, "Dani")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	names := make([]string, game.MaxPlayers)
	for i := range names {
		names[i] = "Player " + string(rune('A'+i))
	}
	full := lobby(t, d, models.ModeVoice, names...)
	_, err = d.Join(ctx, full.Code, "One Too Many")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStart_LeaderOnlyAndMinPlayers(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	g := lobby(t, d, models.ModeText, "Ana", "Beto", "Caro")
	err := d.Start(ctx, g.ID, g.Players[1].ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	small := lobby(t, d, models.ModeText, "Ana", "Beto")
	err = d.Start(ctx, small.ID, small.LeaderID)
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, d.Start(ctx, g.ID, g.LeaderID))
	g, err = d.GameByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusStarting, g.Status)
	assert.Equal(t, 1, g.CurrentRound)
}

func TestActions_OnMissingGame(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	assert.ErrorIs(t, d.Start(ctx, "ghost", "x"), models.ErrNotFound)
	assert.ErrorIs(t, d.SubmitVote(ctx, "ghost", "x", "y"), models.ErrNotFound)
	assert.ErrorIs(t, d.NextRound(ctx, "ghost", "x"), models.ErrNotFound)
	_, err := d.GameByID(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// TestTextGame_EndToEnd walks a full written-mode round: create, join, start,
// reveal, sequential answers, votes, resolution, and round advance.
func TestTextGame_EndToEnd(t *testing.T) {
	d, _, clock := newTestDispatcher(t)
	ctx := context.Background()

	g := lobby(t, d, models.ModeText, "Ana", "Beto", "Caro")
	leaderID := g.LeaderID

	require.NoError(t, d.Start(ctx, g.ID, leaderID))

	clock.Advance(game.StatusDelay)
	require.NoError(t, d.UpdateStatus(ctx, g.ID, models.StatusWordReveal, game.StatusUpdates{}))
	clock.Advance(game.StatusDelay)
	require.NoError(t, d.UpdateStatus(ctx, g.ID, models.StatusDiscussion, game.StatusUpdates{}))

	g, err := d.GameByID(ctx, g.ID)
	require.NoError(t, err)
	require.NotEmpty(t, g.ImpostorID)
	assert.Equal(t, "pineapple", g.CurrentWord)

	// Non-impostors answer in roster order
	for {
		g, err = d.GameByID(ctx, g.ID)
		require.NoError(t, err)
		if g.CurrentTurnPlayerID == "" {
			break
		}
		turn := g.CurrentTurnPlayerID
		assert.NotEqual(t, g.ImpostorID, turn, "the impostor never holds the turn")
		require.NoError(t, d.SubmitAnswer(ctx, g.ID, turn, "a tropical clue"))
	}

	g, err = d.GameByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVoting, g.Status, "all answers in moves the game to voting")
	for _, p := range g.Players {
		if p.ID != g.ImpostorID {
			assert.True(t, p.HasAnswered)
		}
	}

	// Everyone votes; the non-impostors hit the impostor, the impostor
	// deflects onto somebody else.
	var decoy string
	for _, p := range g.Players {
		if p.ID != g.ImpostorID {
			decoy = p.ID
			break
		}
	}
	for _, p := range g.Players {
		target := g.ImpostorID
		if p.ID == g.ImpostorID {
			target = decoy
		}
		require.NoError(t, d.SubmitVote(ctx, g.ID, p.ID, target))
	}

	require.NoError(t, d.FinalizeVoting(ctx, g.ID, leaderID))

	g, err = d.GameByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResults, g.Status)
	assert.True(t, g.Player(g.ImpostorID).IsVotedOut)
	for _, p := range g.Players {
		switch {
		case p.ID == g.ImpostorID:
			assert.Equal(t, 0, p.Points)
		default:
			assert.Equal(t, 10, p.Points, "correct voter %s is rewarded", p.Name)
		}
	}

	// Next round resets the per-round state
	require.NoError(t, d.NextRound(ctx, g.ID, leaderID))
	g, err = d.GameByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, g.CurrentRound)
	assert.Equal(t, models.StatusWordReveal, g.Status)
	assert.Empty(t, g.Votes)
	assert.Empty(t, g.CurrentTurnPlayerID)
	for _, p := range g.Players {
		assert.False(t, p.HasAnswered)
		assert.Empty(t, p.Answer)
		assert.Empty(t, p.Vote)
		assert.False(t, p.IsVotedOut)
	}
}

func TestFinalizeAndNextRound_LeaderOnly(t *testing.T) {
	d, _, clock := newTestDispatcher(t)
	ctx := context.Background()

	g := votingGame(t, d, clock)
	nonLeader := g.Players[1].ID

	for _, p := range g.Players {
		require.NoError(t, d.SubmitVote(ctx, g.ID, p.ID, g.Players[0].ID))
	}

	assert.ErrorIs(t, d.FinalizeVoting(ctx, g.ID, nonLeader), models.ErrUnauthorized)
	require.NoError(t, d.FinalizeVoting(ctx, g.ID, g.LeaderID))
	assert.ErrorIs(t, d.NextRound(ctx, g.ID, nonLeader), models.ErrUnauthorized)
	require.NoError(t, d.NextRound(ctx, g.ID, g.LeaderID))
}

// votingGame drives a voice-mode game into the voting phase via the timer.
func votingGame(t *testing.T, d *Dispatcher, clock *fakeClock) *models.Game {
	t.Helper()
	ctx := context.Background()

	g := lobby(t, d, models.ModeVoice, "Ana", "Beto", "Caro")
	require.NoError(t, d.Start(ctx, g.ID, g.LeaderID))
	clock.Advance(game.StatusDelay)
	require.NoError(t, d.UpdateStatus(ctx, g.ID, models.StatusWordReveal, game.StatusUpdates{}))
	clock.Advance(game.StatusDelay)
	require.NoError(t, d.UpdateStatus(ctx, g.ID, models.StatusDiscussion, game.StatusUpdates{}))
	clock.Advance(61 * time.Second)
	require.NoError(t, d.UpdateStatus(ctx, g.ID, models.StatusVoting, game.StatusUpdates{}))

	g, err := d.GameByID(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusVoting, g.Status)
	return g
}

func TestDiscussionTimeout_Idempotent(t *testing.T) {
	d, _, clock := newTestDispatcher(t)
	ctx := context.Background()

	g := lobby(t, d, models.ModeVoice, "Ana", "Beto", "Caro")
	require.NoError(t, d.Start(ctx, g.ID, g.LeaderID))
	require.NoError(t, d.UpdateStatus(ctx, g.ID, models.StatusWordReveal, game.StatusUpdates{}))
	require.NoError(t, d.UpdateStatus(ctx, g.ID, models.StatusDiscussion, game.StatusUpdates{}))

	// Too early: the timer is still running
	err := d.UpdateStatus(ctx, g.ID, models.StatusVoting, game.StatusUpdates{})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	clock.Advance(61 * time.Second)
	require.NoError(t, d.UpdateStatus(ctx, g.ID, models.StatusVoting, game.StatusUpdates{}))
	// A second observer firing the same expiry is a harmless no-op
	require.NoError(t, d.UpdateStatus(ctx, g.ID, models.StatusVoting, game.StatusUpdates{}))

	g, err = d.GameByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVoting, g.Status)
}

// TestConcurrentVotes_AllRecorded exercises the per-game serialization:
// concurrent read-modify-write vote submissions must not drop each other.
func TestConcurrentVotes_AllRecorded(t *testing.T) {
	d, _, clock := newTestDispatcher(t)
	ctx := context.Background()

	g := votingGame(t, d, clock)

	var wg sync.WaitGroup
	for _, p := range g.Players {
		wg.Add(1)
		go func(voterID string) {
			defer wg.Done()
			assert.NoError(t, d.SubmitVote(ctx, g.ID, voterID, g.LeaderID))
		}(p.ID)
	}
	wg.Wait()

	g, err := d.GameByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, g.Votes, len(g.Players), "no vote may be lost to a stale write")
}
