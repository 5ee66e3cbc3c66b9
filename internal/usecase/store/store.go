package store

import (
	"sync"

	"github.com/simaogato/legacyvault-backend/internal/domain"
)

// Store holds the current allocation list and a bounded stack of prior
// snapshots for undo. Mutations replace the list wholesale, so a reader
// always sees a complete snapshot and a popped history entry restores the
// prior state verbatim.
type Store struct {
	mu      sync.RWMutex
	current []domain.Allocation
	history [][]domain.Allocation
	depth   int
}

// New creates a store with the given undo-history depth. Zero or negative
// falls back to domain.DefaultHistoryDepth.
func New(depth int) *Store {
	if depth <= 0 {
		depth = domain.DefaultHistoryDepth
	}
	return &Store{depth: depth}
}

// Current returns a copy of the current allocation list
func (s *Store) Current() []domain.Allocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneList(s.current)
}

// Replace commits a new allocation list. When recordHistory is true the
// prior list is pushed onto the undo stack first, dropping the oldest entry
// once the depth cap is reached. Reconciliation runs pass false: they are a
// consequence of collaborator changes, not user actions, and must not be
// undoable.
func (s *Store) Replace(next []domain.Allocation, recordHistory bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recordHistory {
		s.history = append(s.history, s.current)
		if len(s.history) > s.depth {
			s.history = append(s.history[:0:0], s.history[1:]...)
		}
	}

	s.current = domain.CloneList(next)
}

// Undo pops the most recent history entry and makes it current.
// Returns the restored list and true, or the unchanged current list and
// false when the history is empty.
func (s *Store) Undo() ([]domain.Allocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return domain.CloneList(s.current), false
	}

	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.current = last

	return domain.CloneList(s.current), true
}

// HistoryLen returns the number of undoable snapshots
func (s *Store) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// Reset replaces the current list and clears the undo history. Used when
// rehydrating from a persisted snapshot: prior history belongs to the
// abandoned timeline.
func (s *Store) Reset(allocations []domain.Allocation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = domain.CloneList(allocations)
	s.history = nil
}
