package store

import (
	"fmt"

	"flytz/internal/logging"
	"flytz/internal/types"
)

// =============================================================================
// SAVED STRATEGIES
// =============================================================================

// SaveStrategy replaces the saved strategy with the same id, or appends it.
func (s *Store) SaveStrategy(st types.SavedStrategy) error {
	if st.ID == "" {
		return fmt.Errorf("saved strategy has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []types.SavedStrategy
	if _, err := s.readDoc(KeyStrategies, &all); err != nil {
		return err
	}

	replaced := false
	for i := range all {
		if all[i].ID == st.ID {
			all[i] = st
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, st)
	}

	if err := s.writeDoc(KeyStrategies, all); err != nil {
		return err
	}
	logging.Store("Saved strategy %s (%q), %d total", st.ID, st.Name, len(all))
	return nil
}

// ListStrategies returns every saved strategy in insertion order.
func (s *Store) ListStrategies() ([]types.SavedStrategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []types.SavedStrategy
	if _, err := s.readDoc(KeyStrategies, &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = []types.SavedStrategy{}
	}
	return all, nil
}

// GetStrategy returns one saved strategy.
func (s *Store) GetStrategy(id string) (types.SavedStrategy, error) {
	all, err := s.ListStrategies()
	if err != nil {
		return types.SavedStrategy{}, err
	}
	for _, st := range all {
		if st.ID == id {
			return st, nil
		}
	}
	return types.SavedStrategy{}, fmt.Errorf("strategy %s: %w", id, ErrNotFound)
}

// DeleteStrategy removes a saved strategy. It reports false when nothing is
// stored at all; deleting an unknown id from a non-empty collection succeeds.
func (s *Store) DeleteStrategy(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []types.SavedStrategy
	ok, err := s.readDoc(KeyStrategies, &all)
	if err != nil || !ok {
		return false, err
	}

	kept := make([]types.SavedStrategy, 0, len(all))
	for _, st := range all {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	if err := s.writeDoc(KeyStrategies, kept); err != nil {
		return false, err
	}
	logging.Store("Deleted strategy %s, %d remain", id, len(kept))
	return true, nil
}
