package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/aaronzipp/word-impostor/internal/models"
)

// MemoryStore keeps game aggregates in process memory. It hands out deep
// copies, so a loaded aggregate never aliases the stored one and a mutation
// only becomes visible through Update.
type MemoryStore struct {
	mu     sync.RWMutex
	games  map[string]*models.Game // id -> game
	byCode map[string]string       // code -> id
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:  make(map[string]*models.Game),
		byCode: make(map[string]string),
	}
}

// FindByID returns a copy of the game with the given id.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", models.ErrNotFound, id)
	}
	return g.Clone(), nil
}

// FindByCode returns a copy of the game with the given join code.
func (s *MemoryStore) FindByCode(_ context.Context, code string) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: code %s", models.ErrNotFound, code)
	}
	return s.games[id].Clone(), nil
}

// Create stores a new game. The id and join code must both be unused.
func (s *MemoryStore) Create(_ context.Context, g *models.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[g.ID]; exists {
		return fmt.Errorf("%w: game id %s already exists", models.ErrValidation, g.ID)
	}
	if _, exists := s.byCode[g.Code]; exists {
		return fmt.Errorf("%w: join code %s already in use", models.ErrValidation, g.Code)
	}
	s.games[g.ID] = g.Clone()
	s.byCode[g.Code] = g.ID
	return nil
}

// Update replaces the stored aggregate in a single write.
func (s *MemoryStore) Update(_ context.Context, g *models.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, exists := s.games[g.ID]
	if !exists {
		return fmt.Errorf("%w: game %s", models.ErrNotFound, g.ID)
	}
	if old.Code != g.Code {
		delete(s.byCode, old.Code)
		s.byCode[g.Code] = g.ID
	}
	s.games[g.ID] = g.Clone()
	return nil
}
