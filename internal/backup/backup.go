// Package backup maps a single day's entry to and from a markdown file named
// after the day, for manual backup and restore.
package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"markjournal/internal/models"
)

// DefaultFormat is the day format used in file names.
const DefaultFormat = "dd-MM-yyyy"

var extensions = []string{".markdown", ".md"}

// ErrInvalidFilename is matched by every import failure.
var ErrInvalidFilename = errors.New("invalid import filename")

// ImportError describes why a file name could not be turned into a day.
type ImportError struct {
	Filename string
	Format   string
	Err      error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %q: expected <%s>.md: %v", e.Filename, e.Format, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

func (e *ImportError) Is(target error) bool { return target == ErrInvalidFilename }

// Saver is the part of the entry store an import writes through.
type Saver interface {
	Save(ctx context.Context, date time.Time, patch models.EntryPatch)
	Location() *time.Location
}

// Export returns the file name and body for entry on date. Only the content
// is exported; mood and checklist stay in the journal.
func Export(date time.Time, entry models.Entry) (filename, content string) {
	return date.Format(Layout(DefaultFormat)) + ".md", entry.Content
}

// Import derives the day from filename using format (DefaultFormat when
// empty) and saves content onto that day, keeping its mood and checklist.
// A file name that does not match leaves the journal untouched.
func Import(ctx context.Context, store Saver, filename, content, format string) (time.Time, error) {
	date, err := ParseFilename(filename, format, store.Location())
	if err != nil {
		return time.Time{}, err
	}
	store.Save(ctx, date, models.ContentPatch(content))
	return date, nil
}

// ParseFilename strips a .md or .markdown extension (any case) and parses the
// rest as a day in loc.
func ParseFilename(filename, format string, loc *time.Location) (time.Time, error) {
	if format == "" {
		format = DefaultFormat
	}
	if loc == nil {
		loc = time.Local
	}

	stem, ok := trimExtension(strings.TrimSpace(filename))
	if !ok {
		return time.Time{}, &ImportError{Filename: filename, Format: format, Err: errors.New("not a markdown file")}
	}
	date, err := time.ParseInLocation(parseLayout(format), stem, loc)
	if err != nil {
		return time.Time{}, &ImportError{Filename: filename, Format: format, Err: err}
	}
	return date, nil
}

func trimExtension(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) && len(name) > len(ext) {
			return name[:len(name)-len(ext)], true
		}
	}
	return "", false
}

// Layout converts a day format written with yyyy/yy, MM/M and dd/d tokens
// (the notation users pick in settings) into a Go time layout. Other
// characters are copied as separators.
func Layout(format string) string {
	return layout(format, true)
}

// parseLayout is Layout with day and month accepting one or two digits, so
// 5-1-2024.md matches dd-MM-yyyy.
func parseLayout(format string) string {
	return layout(format, false)
}

func layout(format string, padded bool) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		c := format[i]
		j := i
		for j < len(format) && format[j] == c {
			j++
		}
		run := j - i
		switch {
		case c == 'y' && run >= 4:
			b.WriteString("2006")
		case c == 'y':
			b.WriteString("06")
		case c == 'M' && run >= 2 && padded:
			b.WriteString("01")
		case c == 'M':
			b.WriteString("1")
		case c == 'd' && run >= 2 && padded:
			b.WriteString("02")
		case c == 'd':
			b.WriteString("2")
		default:
			b.WriteString(format[i:j])
		}
		i = j
	}
	return b.String()
}
