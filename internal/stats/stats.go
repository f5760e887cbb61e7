// Package stats aggregates mood and checklist data over a snapshot of the
// journal. Unrecognised moods and checklist identifiers are ignored.
package stats

import (
	"fmt"
	"sort"
	"time"

	"markjournal/internal/models"
)

// MaxTrendPoints caps the trend series to the most recent days with data.
const MaxTrendPoints = 30

// Range is a named look-back window.
type Range string

const (
	Last7   Range = "last7"
	Last30  Range = "last30"
	Last90  Range = "last90"
	Last365 Range = "last365"
	All     Range = "all"
)

var rangeDays = map[Range]int{Last7: 7, Last30: 30, Last90: 90, Last365: 365}

// ParseRange accepts the preset names; empty means Last30.
func ParseRange(s string) (Range, error) {
	r := Range(s)
	if s == "" {
		return Last30, nil
	}
	if _, ok := rangeDays[r]; ok || r == All {
		return r, nil
	}
	return "", fmt.Errorf("unknown range %q", s)
}

// Bounds returns the inclusive day window ending on now's day. For All the
// start is the zero time.
func (r Range) Bounds(now time.Time) (from, to time.Time) {
	to = models.StartOfDay(now)
	n, ok := rangeDays[r]
	if !ok {
		return time.Time{}, to
	}
	return to.AddDate(0, 0, -(n - 1)), to
}

type TrendPoint struct {
	Date      string `json:"date"`
	Mood      *int   `json:"mood"`
	Checklist int    `json:"checklist"`
}

type ActivityCount struct {
	Activity models.Activity `json:"activity"`
	Count    int             `json:"count"`
}

type Summary struct {
	From             string          `json:"from,omitempty"`
	To               string          `json:"to"`
	EntryCount       int             `json:"entry_count"`
	AverageMood      *float64        `json:"average_mood"`
	AverageChecklist float64         `json:"average_checklist"`
	CurrentStreak    int             `json:"current_streak_days"`
	Trend            []TrendPoint    `json:"trend"`
	Frequency        []ActivityCount `json:"frequency"`
}

// Empty reports whether there is nothing to chart.
func (s Summary) Empty() bool {
	if len(s.Trend) > 0 {
		return false
	}
	for _, f := range s.Frequency {
		if f.Count > 0 {
			return false
		}
	}
	return true
}

type dayEntry struct {
	date  time.Time
	key   string
	entry models.Entry
}

// Compute summarises the entries whose day falls in [from, to]. A zero from
// means no lower bound. Keys are parsed in loc.
func Compute(entries map[string]models.Entry, from, to time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}
	to = models.StartOfDay(to.In(loc))
	if !from.IsZero() {
		from = models.StartOfDay(from.In(loc))
	}

	days := make([]dayEntry, 0, len(entries))
	for key, e := range entries {
		if e.IsEmpty() {
			continue
		}
		d, err := models.ParseDateKey(key, loc)
		if err != nil || d.After(to) || (!from.IsZero() && d.Before(from)) {
			continue
		}
		days = append(days, dayEntry{date: d, key: key, entry: e})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })

	sum := Summary{To: models.DateKey(to), Trend: []TrendPoint{}}
	if !from.IsZero() {
		sum.From = models.DateKey(from)
	}
	sum.EntryCount = len(days)

	counts := make(map[models.Activity]int)
	moodTotal, moodN, checkTotal := 0, 0, 0
	for _, d := range days {
		done := 0
		for _, a := range models.NormalizeChecklist(d.entry.Checklist) {
			if a.Known() {
				counts[a]++
				done++
			}
		}
		checkTotal += done

		p := TrendPoint{Date: d.key, Checklist: done}
		if score := d.entry.Mood.Score(); score > 0 {
			p.Mood = &score
			moodTotal += score
			moodN++
		}
		sum.Trend = append(sum.Trend, p)
	}
	if len(sum.Trend) > MaxTrendPoints {
		sum.Trend = sum.Trend[len(sum.Trend)-MaxTrendPoints:]
	}

	for _, a := range models.Catalog() {
		sum.Frequency = append(sum.Frequency, ActivityCount{Activity: a, Count: counts[a]})
	}
	if moodN > 0 {
		avg := float64(moodTotal) / float64(moodN)
		sum.AverageMood = &avg
	}
	if len(days) > 0 {
		sum.AverageChecklist = float64(checkTotal) / float64(len(days))
	}
	sum.CurrentStreak = streak(days, to)
	return sum
}

// streak counts consecutive days with an entry ending on to.
func streak(days []dayEntry, to time.Time) int {
	have := make(map[string]struct{}, len(days))
	for _, d := range days {
		have[d.key] = struct{}{}
	}
	n := 0
	for d := to; ; d = d.AddDate(0, 0, -1) {
		if _, ok := have[models.DateKey(d)]; !ok {
			return n
		}
		n++
	}
}
