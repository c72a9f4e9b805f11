package session

import (
	"sync"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

// Session holds the process-wide UI state: interaction mode, active
// category filter and sort order. It is never persisted; a new Session
// starts in Normal mode showing all categories.
type Session struct {
	mu       sync.RWMutex
	mode     domain.Mode
	category string
	sort     domain.SortMode
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Mode     domain.Mode
	Category string
	Sort     domain.SortMode
}

// New creates a session using sort as the initial order.
func New(sort domain.SortMode) *Session {
	return &Session{
		mode:     domain.ModeNormal,
		category: domain.AllCategories,
		sort:     sort,
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{Mode: s.mode, Category: s.category, Sort: s.sort}
}

func (s *Session) Mode() domain.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Fire applies a mode event and returns the resulting mode.
func (s *Session) Fire(ev domain.ModeEvent) domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = s.mode.Transition(ev)
	return s.mode
}

func (s *Session) Category() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.category
}

// SetCategory selects a category filter. Empty selects all categories.
func (s *Session) SetCategory(category string) {
	if category == "" {
		category = domain.AllCategories
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = category
}

// ReconcileCategory falls back to all categories when the active filter
// no longer matches any stored shortcut (e.g. its last member was deleted).
func (s *Session) ReconcileCategory(available []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.category == domain.AllCategories {
		return
	}
	for _, c := range available {
		if c == s.category {
			return
		}
	}
	s.category = domain.AllCategories
}

func (s *Session) Sort() domain.SortMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

func (s *Session) SetSort(m domain.SortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = m
}

// ToggleSort flips between alphabetical and frequency order.
func (s *Session) ToggleSort() domain.SortMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sort = s.sort.Toggle()
	return s.sort
}
