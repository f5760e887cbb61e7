package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DateKeyLayout is the canonical, locale-independent day key (yyyy-MM-dd).
const DateKeyLayout = "2006-01-02"

// Mood is the single mood symbol recorded for a day.
type Mood string

const (
	MoodVeryNegative Mood = "😢"
	MoodNegative     Mood = "😕"
	MoodNeutral      Mood = "😐"
	MoodPositive     Mood = "😊"
	MoodVeryPositive Mood = "😄"
)

var moodScores = map[Mood]int{
	MoodVeryNegative: 1,
	MoodNegative:     2,
	MoodNeutral:      3,
	MoodPositive:     4,
	MoodVeryPositive: 5,
}

// Moods returns the recognised moods from most positive to most negative,
// the order the picker shows them in.
func Moods() []Mood {
	return []Mood{MoodVeryPositive, MoodPositive, MoodNeutral, MoodNegative, MoodVeryNegative}
}

// Known reports whether m is one of the five recognised symbols.
func (m Mood) Known() bool {
	_, ok := moodScores[m]
	return ok
}

// Score maps a recognised mood onto 1..5. Unrecognised values score 0.
func (m Mood) Score() int { return moodScores[m] }

// MoodForScore is the inverse of Score.
func MoodForScore(score int) (Mood, bool) {
	for m, s := range moodScores {
		if s == score {
			return m, true
		}
	}
	return "", false
}

// ParseMood accepts either a mood symbol or its name
// (very-negative, negative, neutral, positive, very-positive).
func ParseMood(s string) (Mood, bool) {
	s = strings.TrimSpace(s)
	if m := Mood(s); m.Known() {
		return m, true
	}
	switch strings.ToLower(s) {
	case "very-negative":
		return MoodVeryNegative, true
	case "negative":
		return MoodNegative, true
	case "neutral":
		return MoodNeutral, true
	case "positive":
		return MoodPositive, true
	case "very-positive":
		return MoodVeryPositive, true
	}
	return "", false
}

// Activity identifies a daily checklist item.
type Activity string

const (
	ActivityNutrition Activity = "nutrition"
	ActivitySleep     Activity = "sleep"
	ActivityExercise  Activity = "exercise"
	ActivityStudy     Activity = "study"
	ActivityReading   Activity = "reading"
)

// Catalog lists the recognised checklist activities in display order.
func Catalog() []Activity {
	return []Activity{ActivityNutrition, ActivitySleep, ActivityExercise, ActivityStudy, ActivityReading}
}

// Known reports whether a is part of the catalog. Unknown identifiers may be
// stored but are ignored by aggregation.
func (a Activity) Known() bool {
	switch a {
	case ActivityNutrition, ActivitySleep, ActivityExercise, ActivityStudy, ActivityReading:
		return true
	}
	return false
}

// NormalizeChecklist removes blank and duplicate identifiers, keeping the
// first occurrence of each.
func NormalizeChecklist(items []Activity) []Activity {
	out := make([]Activity, 0, len(items))
	seen := make(map[Activity]struct{}, len(items))
	for _, it := range items {
		it = Activity(strings.TrimSpace(string(it)))
		if it == "" {
			continue
		}
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Entry is the journal record for one calendar day.
type Entry struct {
	Content   string     `json:"content"`
	Mood      Mood       `json:"mood,omitempty"`
	Checklist []Activity `json:"checklist,omitempty"`
}

// DefaultEntry is what a day without data reads as.
func DefaultEntry() Entry {
	return Entry{Content: "", Checklist: []Activity{}}
}

// IsEmpty reports whether the entry carries no meaningful data: blank
// content, no mood and an empty checklist. Empty entries are never stored.
func (e Entry) IsEmpty() bool {
	return strings.TrimSpace(e.Content) == "" && e.Mood == "" && len(e.Checklist) == 0
}

// Has reports whether the checklist contains a.
func (e Entry) Has(a Activity) bool {
	for _, it := range e.Checklist {
		if it == a {
			return true
		}
	}
	return false
}

// EntryPatch carries the fields supplied in a save call. Nil fields are left
// untouched; a non-nil Mood pointing at "" clears the mood.
type EntryPatch struct {
	Content   *string
	Mood      *Mood
	Checklist *[]Activity
}

// Apply merges p onto e field by field and returns the result.
func (p EntryPatch) Apply(e Entry) Entry {
	out := Entry{Content: e.Content, Mood: e.Mood, Checklist: append([]Activity(nil), e.Checklist...)}
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.Mood != nil {
		out.Mood = *p.Mood
	}
	if p.Checklist != nil {
		out.Checklist = append([]Activity(nil), (*p.Checklist)...)
	}
	out.Checklist = NormalizeChecklist(out.Checklist)
	return out
}

// PatchFrom builds a patch that overwrites every field with e's values.
func PatchFrom(e Entry) EntryPatch {
	checklist := append([]Activity(nil), e.Checklist...)
	mood := e.Mood
	content := e.Content
	return EntryPatch{Content: &content, Mood: &mood, Checklist: &checklist}
}

// ContentPatch only touches content.
func ContentPatch(content string) EntryPatch {
	return EntryPatch{Content: &content}
}

// UnmarshalJSON distinguishes absent keys from explicit nulls: a key that is
// present sets the field, and null mood or checklist clears it.
func (p *EntryPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = EntryPatch{}
	if v, ok := raw["content"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		if s == nil {
			s = new(string)
		}
		p.Content = s
	}
	if v, ok := raw["mood"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		m := Mood("")
		if s != nil {
			m = Mood(*s)
		}
		p.Mood = &m
	}
	if v, ok := raw["checklist"]; ok {
		var items []Activity
		if err := json.Unmarshal(v, &items); err != nil {
			return err
		}
		if items == nil {
			items = []Activity{}
		}
		p.Checklist = &items
	}
	return nil
}

// DateKey formats t as its canonical day key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a day key as midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateKeyLayout, key, loc)
}

// StartOfDay truncates t to midnight of its calendar day in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// User is an account owning one journal collection.
type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Language     *string   `db:"language" json:"language,omitempty"`
}
