// Package store owns the shortcut collection: loading and seeding it,
// validated mutations, and the whole-collection write-back after each one.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/kv"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// StorageKey is the key holding the serialized collection.
const StorageKey = "customShortcuts"

// RemovedKey holds the URLs the user deleted or edited away, as a JSON
// array of strings. Imports never bring those back.
const RemovedKey = "removedShortcuts"

// ErrNotFound is returned when an index does not address a stored shortcut.
var ErrNotFound = errors.New("shortcut not found")

// Store is the ShortcutStore. All operations are serialized; every
// mutation persists the full collection before it becomes visible.
type Store struct {
	mu        sync.RWMutex
	storage   kv.Storage
	log       logger.Logger
	favicon   string
	now       func() time.Time
	shortcuts []domain.Shortcut
	removed   map[string]bool
	lastSave  time.Time
	loaded    bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for absorbed failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithFaviconService overrides the favicon lookup endpoint.
func WithFaviconService(service string) Option {
	return func(s *Store) { s.favicon = service }
}

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store backed by storage. Call Load before use.
func New(storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		log:     logger.NewNop(),
		favicon: domain.DefaultFaviconService,
		now:     time.Now,
		removed: map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─────────────────────────────────────────────────────────────────
// Persistence
// ─────────────────────────────────────────────────────────────────

// Load reads the persisted collection. Missing, malformed or empty data
// is replaced by the default seed, which is persisted right away.
// Records are repaired on the way in (see decode). An error is returned
// only when the storage itself cannot be read or the write-back fails.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, found, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load shortcuts: %w", err)
	}

	shortcuts, repaired, ok := decode(data, s.favicon)
	switch {
	case !found:
		s.log.Info("no stored shortcuts, seeding defaults")
	case !ok:
		s.log.Warn("stored shortcuts are malformed, reseeding defaults",
			logger.Int("bytes", len(data)))
	case len(shortcuts) == 0:
		s.log.Info("stored shortcut list is empty, seeding defaults")
	}

	if !found || !ok || len(shortcuts) == 0 {
		shortcuts = s.seed()
		repaired = true
	}

	removed, err := s.readRemoved(ctx)
	if err != nil {
		return err
	}

	if repaired {
		if err := s.write(ctx, shortcuts); err != nil {
			return err
		}
	}

	s.shortcuts = shortcuts
	s.removed = removed
	s.loaded = true
	s.log.Debug("shortcuts loaded", logger.Int("count", len(shortcuts)))
	return nil
}

// Save serializes the whole collection and overwrites the stored value.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, s.shortcuts)
}

// write persists shortcuts. Callers hold s.mu.
func (s *Store) write(ctx context.Context, shortcuts []domain.Shortcut) error {
	if shortcuts == nil {
		shortcuts = []domain.Shortcut{}
	}
	data, err := json.Marshal(shortcuts)
	if err != nil {
		return fmt.Errorf("encode shortcuts: %w", err)
	}
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		s.log.Error("failed to persist shortcuts",
			logger.String("backend", s.storage.Name()),
			logger.Error(err))
		return fmt.Errorf("save shortcuts: %w", err)
	}
	s.lastSave = s.now()
	return nil
}

// commit persists next and, on success, makes it the current collection.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []domain.Shortcut) error {
	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.shortcuts = next
	return nil
}

// readRemoved loads the removed-URL set. Missing or malformed data
// yields an empty set.
func (s *Store) readRemoved(ctx context.Context) (map[string]bool, error) {
	data, found, err := s.storage.Get(ctx, RemovedKey)
	if err != nil {
		return nil, fmt.Errorf("load removed shortcuts: %w", err)
	}

	removed := map[string]bool{}
	if !found {
		return removed, nil
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		s.log.Warn("stored removed-shortcut list is malformed, ignoring it",
			logger.Int("bytes", len(data)))
		return removed, nil
	}
	for _, u := range urls {
		removed[u] = true
	}
	return removed, nil
}

// retire remembers rawURL as removed by the user and persists the set.
// Callers hold s.mu.
func (s *Store) retire(ctx context.Context, rawURL string) error {
	if s.removed[rawURL] {
		return nil
	}

	urls := make([]string, 0, len(s.removed)+1)
	for u := range s.removed {
		urls = append(urls, u)
	}
	urls = append(urls, rawURL)
	slices.Sort(urls)

	data, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encode removed shortcuts: %w", err)
	}
	if err := s.storage.Set(ctx, RemovedKey, data); err != nil {
		s.log.Error("failed to persist removed shortcuts",
			logger.String("backend", s.storage.Name()),
			logger.Error(err))
		return fmt.Errorf("save removed shortcuts: %w", err)
	}
	s.removed[rawURL] = true
	return nil
}

// seed returns the default set with icons from the configured service.
// Seed icons are keyed on the bare domain (amazon.com, not www.amazon.com).
func (s *Store) seed() []domain.Shortcut {
	seed := domain.DefaultSeed()
	for i := range seed {
		bare := strings.TrimPrefix(domain.DomainOf(seed[i].URL), "www.")
		seed[i].Icon = domain.FaviconURL(s.favicon, bare)
	}
	return seed
}

// ─────────────────────────────────────────────────────────────────
// Validation helpers
// ─────────────────────────────────────────────────────────────────

// Validate normalizes a raw URL. See domain.Validate.
func (s *Store) Validate(rawURL string) (domain.ValidatedURL, error) {
	return domain.Validate(rawURL)
}

// DeriveIcon returns the favicon URL for domain using the configured service.
func (s *Store) DeriveIcon(domainName string) string {
	return domain.FaviconURL(s.favicon, domainName)
}

// build validates user input and returns the record it describes.
// Name and URL are both required before the URL itself is checked.
func (s *Store) build(name, rawURL, category string) (domain.Shortcut, error) {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)
	if name == "" || rawURL == "" {
		return domain.Shortcut{}, domain.ErrMissingFields
	}

	v, err := domain.Validate(rawURL)
	if err != nil {
		return domain.Shortcut{}, err
	}

	return domain.Shortcut{
		Name:     name,
		URL:      v.URL,
		Icon:     s.DeriveIcon(v.Domain),
		Category: strings.TrimSpace(category),
	}, nil
}

// ─────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────

// Add appends a new shortcut with zero clicks.
func (s *Store) Add(ctx context.Context, name, rawURL, category string) (domain.Entry, error) {
	rec, err := s.build(name, rawURL, category)
	if err != nil {
		return domain.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(s.clone(), rec)
	if err := s.commit(ctx, next); err != nil {
		return domain.Entry{}, err
	}

	s.log.Debug("shortcut added", logger.String("name", rec.Name), logger.String("url", rec.URL))
	return domain.Entry{Index: len(next) - 1, Shortcut: rec}, nil
}

// Edit overwrites name, url, icon and category at index. Clicks are kept.
func (s *Store) Edit(ctx context.Context, index int, name, rawURL, category string) (domain.Entry, error) {
	rec, err := s.build(name, rawURL, category)
	if err != nil {
		return domain.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRange(index) {
		return domain.Entry{}, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}

	next := s.clone()
	if old := next[index].URL; old != rec.URL {
		if err := s.retire(ctx, old); err != nil {
			return domain.Entry{}, err
		}
	}
	rec.Clicks = next[index].Clicks
	next[index] = rec
	if err := s.commit(ctx, next); err != nil {
		return domain.Entry{}, err
	}

	s.log.Debug("shortcut edited", logger.Int("index", index), logger.String("name", rec.Name))
	return domain.Entry{Index: index, Shortcut: rec}, nil
}

// Delete removes the shortcut at index and returns it.
func (s *Store) Delete(ctx context.Context, index int) (domain.Shortcut, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRange(index) {
		return domain.Shortcut{}, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}

	removed := s.shortcuts[index]
	if err := s.retire(ctx, removed.URL); err != nil {
		return domain.Shortcut{}, err
	}

	next := make([]domain.Shortcut, 0, len(s.shortcuts)-1)
	next = append(next, s.shortcuts[:index]...)
	next = append(next, s.shortcuts[index+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return domain.Shortcut{}, err
	}

	s.log.Debug("shortcut deleted", logger.Int("index", index), logger.String("name", removed.Name))
	return removed, nil
}

// RecordActivation increments the click counter at index by one.
func (s *Store) RecordActivation(ctx context.Context, index int) (domain.Shortcut, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRange(index) {
		return domain.Shortcut{}, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}

	next := s.clone()
	next[index].Clicks++
	if err := s.commit(ctx, next); err != nil {
		return domain.Shortcut{}, err
	}
	return next[index], nil
}

// ActivateBest records an activation of the shortcut whose name best
// matches query (see domain.BestShortcut). Matching and counting happen
// under one lock, so a concurrent delete cannot shift the click onto
// another record. found is false when nothing matches.
func (s *Store) ActivateBest(ctx context.Context, query string) (entry domain.Entry, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best, ok := domain.BestShortcut(query, s.shortcuts)
	if !ok {
		return domain.Entry{}, false, nil
	}

	next := s.clone()
	next[best.Index].Clicks++
	if err := s.commit(ctx, next); err != nil {
		return best, true, err
	}
	return domain.Entry{Index: best.Index, Shortcut: next[best.Index]}, true, nil
}

// Import appends records whose URL is not stored yet and was never
// deleted or edited away by the user. Records with a missing name or an
// invalid URL are skipped. The collection is
// persisted once, and only when something was added.
func (s *Store) Import(ctx context.Context, records []domain.Shortcut) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]bool, len(s.shortcuts))
	for _, sc := range s.shortcuts {
		known[sc.URL] = true
	}

	next := s.clone()
	for _, r := range records {
		rec, err := s.build(r.Name, r.URL, r.Category)
		if err != nil {
			s.log.Debug("skipping imported shortcut",
				logger.String("name", r.Name),
				logger.String("url", r.URL),
				logger.Error(err))
			continue
		}
		if known[rec.URL] || s.removed[rec.URL] {
			continue
		}
		known[rec.URL] = true
		next = append(next, rec)
	}

	added := len(next) - len(s.shortcuts)
	if added == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}

	s.log.Info("shortcuts imported", logger.Int("added", added), logger.Int("total", len(next)))
	return added, nil
}

// ─────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────

// View returns the filtered, ordered projection of the collection.
func (s *Store) View(mode domain.SortMode, category string) []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.View(s.shortcuts, mode, category)
}

// ListCategories returns the distinct non-empty categories.
func (s *Store) ListCategories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.ListCategories(s.shortcuts)
}

// Get returns the shortcut at index.
func (s *Store) Get(index int) (domain.Shortcut, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.inRange(index) {
		return domain.Shortcut{}, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	return s.shortcuts[index], nil
}

// Shortcuts returns a copy of the collection in stored order.
func (s *Store) Shortcuts() []domain.Shortcut {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.clone()
}

// Len returns the number of stored shortcuts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.shortcuts)
}

// Loaded reports whether Load has completed successfully.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loaded
}

// LastSave returns the time of the last successful write-back.
func (s *Store) LastSave() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastSave
}

// Backend names the underlying storage.
func (s *Store) Backend() string {
	return s.storage.Name()
}

// Ping checks the underlying storage.
func (s *Store) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

func (s *Store) clone() []domain.Shortcut {
	out := make([]domain.Shortcut, len(s.shortcuts))
	copy(out, s.shortcuts)
	return out
}

func (s *Store) inRange(index int) bool {
	return index >= 0 && index < len(s.shortcuts)
}
