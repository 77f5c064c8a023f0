package session

import (
	"context"
	"sync"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
	"github.com/AdamRogowski/LanguageLearningApp/internal/scoring"
)

// MemoryStore is an in-process Store for development and tests
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*State
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (s *MemoryStore) Get(_ context.Context, key Key) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key.String()]
	if !ok {
		return nil, nil
	}
	return cloneState(state), nil
}

func (s *MemoryStore) Replace(_ context.Context, key Key, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneState(state)
	next.Version = 1
	s.states[key.String()] = next
	return nil
}

func (s *MemoryStore) Swap(_ context.Context, key Key, state *State, fromVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if existing, ok := s.states[key.String()]; ok {
		current = existing.Version
	}
	if current != fromVersion {
		return apperr.ErrStaleSession
	}

	next := cloneState(state)
	next.Version = fromVersion + 1
	s.states[key.String()] = next
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, key.String())
	return nil
}

// cloneState copies a state so callers never share slices with the store
func cloneState(state *State) *State {
	next := &State{
		Window:  append([]int64(nil), state.Window...),
		Pool:    append([]int64(nil), state.Pool...),
		Version: state.Version,
	}
	if state.Pending != nil {
		pending := *state.Pending
		pending.Diff = append([]scoring.Segment(nil), state.Pending.Diff...)
		next.Pending = &pending
	}
	return next
}
