// Package units provides the timezone and timestamp conventions shared
// across the pipeline. Cleaned series files always carry offset-tagged
// timestamps so a file is unambiguous regardless of where it is read.
package units

import (
	"fmt"
	"time"
)

// Canonical layouts used throughout the pipeline.
const (
	// StorageLayout is how timestamps are written into cleaned series
	// files: "YYYY-MM-DD HH:MM:SS±ZZZZ".
	StorageLayout = "2006-01-02 15:04:05-0700"

	// FileStampLayout is the compact prefix used for cleaned filenames.
	FileStampLayout = "20060102T150405"

	// MetadataLayout is the naive (offset-free) layout used in the
	// metadata spreadsheet's timestamp columns.
	MetadataLayout = "2006-01-02 15:04:05"
)

// IsTimezoneValid checks the given timezone against the system tz database.
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// LoadLocation loads a tz-database location, wrapping the error with the
// requested name for context.
func LoadLocation(tz string) (*time.Location, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}
	return loc, nil
}

// FormatStorage renders a timestamp in the cleaned-file storage layout.
func FormatStorage(t time.Time) string {
	return t.Format(StorageLayout)
}

// ParseStorage parses a timestamp previously written by FormatStorage.
// The offset in the string is preserved, so formatting the result again
// reproduces the input byte for byte.
func ParseStorage(s string) (time.Time, error) {
	t, err := time.Parse(StorageLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatDuration renders a duration as HH:MM:SS. Durations of a day or
// more keep accumulating hours (e.g. "26:00:00"). Negative durations are
// rendered with a leading minus sign.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, total/3600, (total%3600)/60, total%60)
}
