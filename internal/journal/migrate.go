package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"markjournal/internal/models"
)

// Migrate moves notes saved in the legacy format into the current collection
// and then removes the legacy key. Legacy values are normally content strings;
// entry objects are accepted too. Days already present in the current
// collection win, and blank legacy notes are dropped. Running it again once
// the legacy key is gone is a no-op.
//
// Unlike the other operations Migrate reports storage failures, so a caller
// running it at startup can tell that the upgrade did not happen. On error the
// legacy data is left untouched, and so it is when any legacy value could not
// be read.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.storage.GetItem(ctx, LegacyStorageKey)
	if err != nil {
		return 0, fmt.Errorf("read legacy notes: %w", err)
	}
	if !ok {
		return 0, nil
	}

	var legacy map[string]json.RawMessage
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
			return 0, fmt.Errorf("decode legacy notes: %w", err)
		}
	}

	notes := make(map[string]models.Entry, len(legacy))
	var unreadable []string
	for key, v := range legacy {
		e, err := decodeEntry(v)
		if err != nil {
			unreadable = append(unreadable, key)
			continue
		}
		notes[key] = e
	}

	migrated, err := s.mergeLegacy(ctx, notes)
	if err != nil {
		return 0, err
	}
	if len(unreadable) > 0 {
		sort.Strings(unreadable)
		s.logger.Warn("legacy notes kept: some values could not be read",
			zap.Strings("dates", unreadable), zap.Int("migrated", migrated))
		return migrated, nil
	}
	if err := s.storage.RemoveItem(ctx, LegacyStorageKey); err != nil {
		return migrated, fmt.Errorf("remove legacy notes: %w", err)
	}
	s.logger.Info("legacy notes migrated", zap.Int("migrated", migrated), zap.Int("legacy", len(legacy)))
	return migrated, nil
}

// ImportLegacy merges legacy notes handed over by a client, such as the
// contents of a browser's local storage. Keys that are not date-keys are
// skipped. It applies the same rules as Migrate.
func (s *Store) ImportLegacy(ctx context.Context, notes map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	valid := make(map[string]models.Entry, len(notes))
	for key, content := range notes {
		if _, err := models.ParseDateKey(key, s.loc); err != nil {
			s.logger.Warn("skipping legacy note with invalid date", zap.String("date", key))
			continue
		}
		valid[key] = models.Entry{Content: content}
	}
	return s.mergeLegacy(ctx, valid)
}

func (s *Store) mergeLegacy(ctx context.Context, notes map[string]models.Entry) (int, error) {
	entries, err := s.read(ctx)
	if err != nil {
		return 0, fmt.Errorf("read journal: %w", err)
	}

	migrated := 0
	for key, e := range notes {
		if _, exists := entries[key]; exists {
			continue
		}
		e.Checklist = models.NormalizeChecklist(e.Checklist)
		if len(e.Checklist) == 0 {
			e.Checklist = nil
		}
		if e.IsEmpty() {
			continue
		}
		entries[key] = e
		migrated++
	}
	if migrated == 0 {
		return 0, nil
	}
	if err := s.write(ctx, entries); err != nil {
		return 0, fmt.Errorf("write journal: %w", err)
	}
	return migrated, nil
}
