// Package journal owns the mapping from calendar days to journal entries.
//
// The whole collection lives as one JSON object under a single storage key.
// Every operation reads the collection, changes it and writes it back in full.
// Storage failures never reach callers: reads degrade to an empty collection
// and writes become logged no-ops, so editing stays available.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"markjournal/internal/kv"
	"markjournal/internal/models"
)

const (
	// StorageKey holds the current collection: date-key -> entry object.
	StorageKey = "mark-journal-entries-v2"
	// LegacyStorageKey holds the first format: date-key -> raw content string.
	LegacyStorageKey = "mark-journal-notes"
)

// Store is the Entry Store. It is safe for concurrent use within a process;
// separate processes sharing one backend are last-writer-wins.
type Store struct {
	storage kv.Storage
	logger  *zap.Logger
	loc     *time.Location

	mu sync.Mutex
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the time zone that decides which calendar day an instant
// falls on. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(storage kv.Storage, opts ...Option) *Store {
	s := &Store{storage: storage, logger: zap.NewNop(), loc: time.Local}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Location is the zone day keys are computed in.
func (s *Store) Location() *time.Location { return s.loc }

// Key returns the canonical day key for date.
func (s *Store) Key(date time.Time) string {
	return models.DateKey(date.In(s.loc))
}

// Entry returns the stored entry for date's day, or the default empty entry.
func (s *Store) Entry(ctx context.Context, date time.Time) models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.Key(date)
	entries, _ := s.load(ctx, "get entry")
	e, ok := entries[key]
	if !ok {
		return models.DefaultEntry()
	}
	if e.Checklist == nil {
		e.Checklist = []models.Activity{}
	}
	return e
}

// Save merges patch onto the existing entry for date (or the default one).
// A merged entry with no content, mood or checklist removes the day.
func (s *Store) Save(ctx context.Context, date time.Time, patch models.EntryPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "save entry"
	key := s.Key(date)
	entries, ok := s.load(ctx, op)
	if !ok {
		return
	}

	existing, found := entries[key]
	if !found {
		existing = models.DefaultEntry()
	}
	merged := patch.Apply(existing)
	if merged.IsEmpty() {
		if !found {
			return
		}
		delete(entries, key)
	} else {
		entries[key] = merged
	}
	s.persist(ctx, op, entries, zap.String("date", key))
}

// Delete removes date's day. Deleting an absent day is a no-op.
func (s *Store) Delete(ctx context.Context, date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "delete entry"
	key := s.Key(date)
	entries, ok := s.load(ctx, op)
	if !ok {
		return
	}
	if _, found := entries[key]; !found {
		return
	}
	delete(entries, key)
	s.persist(ctx, op, entries, zap.String("date", key))
}

// DeleteRange removes every day between start and end inclusive. Both bounds
// are truncated to their day first; a start after end removes nothing. Keys
// that do not parse as dates are left in place. It returns how many days
// were removed.
func (s *Store) DeleteRange(ctx context.Context, start, end time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "delete range"
	entries, ok := s.load(ctx, op)
	if !ok {
		return 0
	}

	from := models.StartOfDay(start.In(s.loc))
	to := models.StartOfDay(end.In(s.loc))
	removed := 0
	for key := range entries {
		d, err := models.ParseDateKey(key, s.loc)
		if err != nil {
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		delete(entries, key)
		removed++
	}
	if removed == 0 {
		return 0
	}
	s.persist(ctx, op, entries,
		zap.String("from", models.DateKey(from)),
		zap.String("to", models.DateKey(to)),
		zap.Int("removed", removed))
	return removed
}

// DeleteAll clears the collection and returns how many days held an entry.
func (s *Store) DeleteAll(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, _ := s.load(ctx, "delete all")
	n := len(s.days(entries))
	if err := s.storage.RemoveItem(ctx, StorageKey); err != nil {
		s.logger.Error("failed to clear journal", zap.String("op", "delete all"), zap.Error(err))
		return 0
	}
	return n
}

// Dates returns the days that hold a meaningful entry, ascending. Keys that
// do not parse or whose entry is empty are skipped.
func (s *Store) Dates(ctx context.Context) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, _ := s.load(ctx, "list dates")
	return s.days(entries)
}

func (s *Store) days(entries map[string]models.Entry) []time.Time {
	out := make([]time.Time, 0, len(entries))
	for key, e := range entries {
		if e.IsEmpty() {
			continue
		}
		d, err := models.ParseDateKey(key, s.loc)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// All returns a snapshot of the whole collection keyed by date-key.
func (s *Store) All(ctx context.Context) map[string]models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, _ := s.load(ctx, "list entries")
	return entries
}

// load reads the collection, logging and degrading on failure. ok is false
// when the stored state could not be read, and callers must not write.
func (s *Store) load(ctx context.Context, op string) (map[string]models.Entry, bool) {
	entries, err := s.read(ctx)
	if err != nil {
		s.logger.Error("failed to read journal", zap.String("op", op), zap.Error(err))
		return map[string]models.Entry{}, false
	}
	return entries, true
}

func (s *Store) persist(ctx context.Context, op string, entries map[string]models.Entry, fields ...zap.Field) {
	if err := s.write(ctx, entries); err != nil {
		s.logger.Error("failed to save journal",
			append([]zap.Field{zap.String("op", op), zap.Error(err)}, fields...)...)
	}
}

func (s *Store) read(ctx context.Context) (map[string]models.Entry, error) {
	raw, ok, err := s.storage.GetItem(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return map[string]models.Entry{}, nil
	}
	return s.decode(raw)
}

func (s *Store) decode(raw string) (map[string]models.Entry, error) {
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode journal: %w", err)
	}
	entries := make(map[string]models.Entry, len(values))
	for key, v := range values {
		e, err := decodeEntry(v)
		if err != nil {
			s.logger.Warn("skipping unreadable entry", zap.String("date", key), zap.Error(err))
			continue
		}
		entries[key] = e
	}
	return entries, nil
}

// decodeEntry accepts the entry object and, for days written by an older
// client into the new key, a bare content string.
func decodeEntry(v json.RawMessage) (models.Entry, error) {
	var e models.Entry
	if err := json.Unmarshal(v, &e); err == nil {
		return e, nil
	}
	var content string
	if err := json.Unmarshal(v, &content); err != nil {
		return models.Entry{}, fmt.Errorf("entry is neither an object nor a string")
	}
	return models.Entry{Content: content}, nil
}

func (s *Store) write(ctx context.Context, entries map[string]models.Entry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	return s.storage.SetItem(ctx, StorageKey, string(b))
}
