package journal

import (
	"context"
	"errors"
	"time"

	"markjournal/internal/models"
)

// ErrUnknownPreset is returned by DeletePreset for an unrecognised name.
var ErrUnknownPreset = errors.New("unknown deletion range")

// PresetAll names the whole collection.
const PresetAll = "all"

var presetDays = map[string]int{"last7days": 7, "last30days": 30, "lastYear": 365}

// Presets lists the named deletion ranges.
func Presets() []string {
	return []string{"last7days", "last30days", "lastYear", PresetAll}
}

// DeletePreset removes the days covered by a named range ending on now's day
// in the store's location and returns how many were removed.
func (s *Store) DeletePreset(ctx context.Context, preset string, now time.Time) (int, error) {
	if preset == PresetAll {
		return s.DeleteAll(ctx), nil
	}
	days, ok := presetDays[preset]
	if !ok {
		return 0, ErrUnknownPreset
	}
	today := models.StartOfDay(now.In(s.loc))
	return s.DeleteRange(ctx, today.AddDate(0, 0, -(days-1)), today), nil
}
