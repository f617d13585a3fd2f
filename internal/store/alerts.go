package store

import (
	"errors"
	"fmt"
	"sort"

	"flytz/internal/logging"
	"flytz/internal/types"
)

// ErrInvalidPrice is returned for non-positive alert targets.
var ErrInvalidPrice = errors.New("target price must be positive")

// =============================================================================
// PRICE ALERTS
// =============================================================================

// SetAlert registers or replaces the target price for a strategy.
func (s *Store) SetAlert(strategyID string, target float64) (types.PriceAlert, error) {
	if target <= 0 {
		return types.PriceAlert{}, ErrInvalidPrice
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := map[string]types.PriceAlert{}
	if _, err := s.readDoc(KeyAlerts, &alerts); err != nil {
		return types.PriceAlert{}, err
	}
	if alerts == nil {
		alerts = map[string]types.PriceAlert{}
	}
	a := types.PriceAlert{StrategyID: strategyID, TargetPrice: target, CreatedAt: s.now().UTC()}
	alerts[strategyID] = a
	if err := s.writeDoc(KeyAlerts, alerts); err != nil {
		return types.PriceAlert{}, err
	}
	logging.Store("Alert set for %s at $%.2f", strategyID, target)
	return a, nil
}

// Alert returns the alert for a strategy.
func (s *Store) Alert(strategyID string) (types.PriceAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := map[string]types.PriceAlert{}
	if _, err := s.readDoc(KeyAlerts, &alerts); err != nil {
		return types.PriceAlert{}, err
	}
	a, ok := alerts[strategyID]
	if !ok {
		return types.PriceAlert{}, fmt.Errorf("alert for %s: %w", strategyID, ErrNotFound)
	}
	return a, nil
}

// ListAlerts returns every alert ordered by strategy id.
func (s *Store) ListAlerts() ([]types.PriceAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := map[string]types.PriceAlert{}
	if _, err := s.readDoc(KeyAlerts, &alerts); err != nil {
		return nil, err
	}
	out := make([]types.PriceAlert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StrategyID < out[j].StrategyID })
	return out, nil
}

// DeleteAlert removes the alert for a strategy. Deleting a missing alert is
// not an error.
func (s *Store) DeleteAlert(strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := map[string]types.PriceAlert{}
	ok, err := s.readDoc(KeyAlerts, &alerts)
	if err != nil || !ok {
		return err
	}
	if _, exists := alerts[strategyID]; !exists {
		return nil
	}
	delete(alerts, strategyID)
	return s.writeDoc(KeyAlerts, alerts)
}
