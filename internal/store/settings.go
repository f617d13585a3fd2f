package store

import (
	"errors"
	"net/mail"
	"strings"

	"flytz/internal/logging"
	"flytz/internal/types"
)

// ErrInvalidEmail is returned for waitlist addresses without an '@'.
var ErrInvalidEmail = errors.New("invalid email address")

// =============================================================================
// WAITLIST BACKUP
// =============================================================================

// AddWaitlist records an email capture locally. Addresses are trimmed and must
// contain an '@'; a parseable display-name form is reduced to the bare address.
func (s *Store) AddWaitlist(email string) (types.WaitlistEntry, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return types.WaitlistEntry{}, ErrInvalidEmail
	}
	if addr, err := mail.ParseAddress(email); err == nil {
		email = addr.Address
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []types.WaitlistEntry
	if _, err := s.readDoc(KeyWaitlist, &entries); err != nil {
		return types.WaitlistEntry{}, err
	}
	e := types.WaitlistEntry{Email: email, Date: s.now().UTC()}
	if err := s.writeDoc(KeyWaitlist, append(entries, e)); err != nil {
		return types.WaitlistEntry{}, err
	}
	logging.Store("Waitlist backup now has %d entries", len(entries)+1)
	return e, nil
}

// Waitlist returns the captured entries in order.
func (s *Store) Waitlist() ([]types.WaitlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []types.WaitlistEntry
	if _, err := s.readDoc(KeyWaitlist, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []types.WaitlistEntry{}
	}
	return entries, nil
}

// ClearWaitlist drops every captured entry.
func (s *Store) ClearWaitlist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteDoc(KeyWaitlist)
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings returns the locally stored settings.
func (s *Store) Settings() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var settings map[string]string
	if _, err := s.readDoc(KeySettings, &settings); err != nil {
		return nil, err
	}
	if settings == nil {
		settings = map[string]string{}
	}
	return settings, nil
}

// SaveSettings merges updates into the stored settings. Empty values remove
// the key.
func (s *Store) SaveSettings(updates map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := map[string]string{}
	if _, err := s.readDoc(KeySettings, &settings); err != nil {
		return err
	}
	if settings == nil {
		settings = map[string]string{}
	}
	for k, v := range updates {
		v = strings.TrimSpace(v)
		if v == "" {
			delete(settings, k)
			continue
		}
		settings[k] = v
	}
	return s.writeDoc(KeySettings, settings)
}
