package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aaronzipp/word-impostor/internal/game"
	"github.com/aaronzipp/word-impostor/internal/models"
	"github.com/aaronzipp/word-impostor/internal/store"
)

// Notifier signals observers that a game's state changed. Delivery is best
// effort; the dispatcher never depends on it and never rolls back a
// persisted write because of it.
type Notifier interface {
	NotifyChanged(gameID string)
}

// Dispatcher is the single entry point for player actions. Every mutation is
// serialized on a per-game mutex, so concurrent actions against the same game
// cannot overwrite each other's read-modify-write cycles.
type Dispatcher struct {
	repo  store.Repository
	notes Notifier
	words game.Source
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a dispatcher over the given collaborators.
func New(repo store.Repository, notes Notifier, words game.Source, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:  repo,
		notes: notes,
		words: words,
		log:   log,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockGame acquires the owning mutex for a game id, creating it on first use.
func (d *Dispatcher) lockGame(id string) func() {
	d.mu.Lock()
	l, ok := d.locks[id]
	if !ok {
		l = &sync.Mutex{}
		d.locks[id] = l
	}
	d.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (d *Dispatcher) notify(gameID string) {
	if d.notes == nil {
		return
	}
	d.notes.NotifyChanged(gameID)
}

// mutate runs fn against the current aggregate under the game's lock and
// persists the result in a single write. A failing fn leaves the stored state
// untouched.
func (d *Dispatcher) mutate(ctx context.Context, gameID string, fn func(g *models.Game) error) (*models.Game, error) {
	unlock := d.lockGame(gameID)
	defer unlock()

	g, err := d.repo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	if err := d.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	d.notify(g.ID)
	return g, nil
}

// Create sets up a new waiting game with the leader as its only player.
func (d *Dispatcher) Create(ctx context.Context, leaderName string, settings models.Settings) (*models.Game, error) {
	leaderName = strings.TrimSpace(leaderName)
	if leaderName == "" {
		return nil, fmt.Errorf("%w: leader name is required", models.ErrValidation)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	code, err := game.UniqueCode(func(c string) bool {
		_, err := d.repo.FindByCode(ctx, c)
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	leader := models.Player{ID: uuid.New().String(), Name: leaderName, IsLeader: true}
	g := &models.Game{
		ID:        uuid.New().String(),
		Code:      code,
		Status:    models.StatusWaiting,
		Mode:      settings.Mode,
		RoundTime: settings.RoundTime,
		MaxRounds: settings.MaxRounds,
		LeaderID:  leader.ID,
		CreatedAt: d.now().UTC(),
		Players:   []models.Player{leader},
		Votes:     make(map[string]string),
	}
	if err := d.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	d.log.Info().Str("game", g.ID).Str("code", g.Code).Str("mode", string(g.Mode)).Msg("game created")
	return g, nil
}

// Join adds a player to a waiting game looked up by join code.
func (d *Dispatcher) Join(ctx context.Context, code, playerName string) (*models.Game, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is required", models.ErrValidation)
	}

	existing, err := d.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	playerID := uuid.New().String()
	g, err := d.mutate(ctx, existing.ID, func(g *models.Game) error {
		if g.Status != models.StatusWaiting {
			return fmt.Errorf("%w: game already started", models.ErrInvalidTransition)
		}
		if len(g.Players) >= game.MaxPlayers {
			return fmt.Errorf("%w: game is full", models.ErrValidation)
		}
		g.Players = append(g.Players, models.Player{ID: playerID, Name: playerName})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.log.Info().Str("game", g.ID).Str("player", playerID).Str("name", playerName).Msg("player joined")
	return g, nil
}

// Start begins the first round. Leader only.
func (d *Dispatcher) Start(ctx context.Context, gameID, actorID string) error {
	g, err := d.mutate(ctx, gameID, func(g *models.Game) error {
		if actorID != g.LeaderID {
			return fmt.Errorf("%w: only the leader can start the game", models.ErrUnauthorized)
		}
		return game.Start(g, d.words, d.now())
	})
	if err != nil {
		return err
	}
	d.log.Info().Str("game", g.ID).Int("players", len(g.Players)).Msg("game started")
	return nil
}

// SubmitAnswer records a written clue for the current turn holder.
func (d *Dispatcher) SubmitAnswer(ctx context.Context, gameID, playerID, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("%w: answer is required", models.ErrValidation)
	}
	_, err := d.mutate(ctx, gameID, func(g *models.Game) error {
		return game.SubmitAnswer(g, playerID, answer)
	})
	return err
}

// SubmitVote records or overwrites a player's vote.
func (d *Dispatcher) SubmitVote(ctx context.Context, gameID, voterID, votedID string) error {
	_, err := d.mutate(ctx, gameID, func(g *models.Game) error {
		return game.SubmitVote(g, voterID, votedID)
	})
	return err
}

// FinalizeVoting resolves the round once every vote is in. Leader only.
func (d *Dispatcher) FinalizeVoting(ctx context.Context, gameID, actorID string) error {
	g, err := d.mutate(ctx, gameID, func(g *models.Game) error {
		if actorID != g.LeaderID {
			return fmt.Errorf("%w: only the leader can finalize voting", models.ErrUnauthorized)
		}
		return game.FinalizeVoting(g)
	})
	if err != nil {
		return err
	}
	d.log.Info().Str("game", g.ID).Int("round", g.CurrentRound).Msg("voting resolved")
	return nil
}

// NextRound advances past the results screen. Leader only.
func (d *Dispatcher) NextRound(ctx context.Context, gameID, actorID string) error {
	g, err := d.mutate(ctx, gameID, func(g *models.Game) error {
		if actorID != g.LeaderID {
			return fmt.Errorf("%w: only the leader can advance the round", models.ErrUnauthorized)
		}
		return game.NextRound(g, d.words, d.now())
	})
	if err != nil {
		return err
	}
	d.log.Info().Str("game", g.ID).Int("round", g.CurrentRound).Str("status", string(g.Status)).Msg("round advanced")
	return nil
}

// UpdateStatus applies a timer-driven automatic transition. Any observer may
// issue it; illegal or premature transitions are rejected and re-applying the
// current status is a harmless no-op.
func (d *Dispatcher) UpdateStatus(ctx context.Context, gameID string, status models.GameStatus, upd game.StatusUpdates) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}
	_, err := d.mutate(ctx, gameID, func(g *models.Game) error {
		return game.Transition(g, status, upd, d.now())
	})
	return err
}

// GameByID fetches the current aggregate.
func (d *Dispatcher) GameByID(ctx context.Context, id string) (*models.Game, error) {
	return d.repo.FindByID(ctx, id)
}

// GameByCode fetches the current aggregate by join code.
func (d *Dispatcher) GameByCode(ctx context.Context, code string) (*models.Game, error) {
	return d.repo.FindByCode(ctx, code)
}
