// Package presens parses raw PreSens oxygen-sensor instrument logs and
// models the cleaned time series the rest of the pipeline works on.
//
// A raw file is a delimited text log: a fixed-length instrument preamble,
// then a header row with vendor column names, then one row per sample.
// Parsing normalizes the headers, combines the date and time columns into
// offset-tagged timestamps, derives elapsed seconds from the first sample
// and renames the channels to the canonical schema (oxygen, temperature,
// phase, amplitude).
package presens

import (
	"fmt"
	"time"
)

// Record is one cleaned instrument sample.
type Record struct {
	// SourceFile is the raw file stem the sample came from.
	SourceFile string

	// SourceFileCleaned is the analyst-assigned standardized name; it is
	// the join key against the metadata spreadsheet.
	SourceFileCleaned string

	// TimeSeconds is elapsed whole seconds since the file's first sample;
	// 0 for the first row by construction, non-decreasing after that.
	TimeSeconds int

	// LogtimeMin is the instrument's own log time in minutes. Only
	// meaningful when the parent Series has Logtime set.
	LogtimeMin float64

	Oxygen      float64 // oxygen air saturation, percent
	Temperature float64 // degrees C
	Phase       float64
	Amplitude   int

	// DatetimePresens is the sample timestamp in the instrument PC's
	// timezone; DatetimeLocal is the same instant in the experiment-local
	// timezone.
	DatetimePresens time.Time
	DatetimeLocal   time.Time
}

// Series is the ordered samples of one instrument file.
type Series struct {
	// Logtime reports whether the source file carried a log-time column
	// (in minutes, or in hours converted to minutes).
	Logtime bool

	Records []Record
}

// SourceFile returns the raw stem of the series, or "" for an empty series.
func (s *Series) SourceFile() string {
	if len(s.Records) == 0 {
		return ""
	}
	return s.Records[0].SourceFile
}

// SourceFileCleaned returns the cleaned name of the series, or "" for an
// empty series.
func (s *Series) SourceFileCleaned() string {
	if len(s.Records) == 0 {
		return ""
	}
	return s.Records[0].SourceFileCleaned
}

// ParseError reports a raw instrument file that could not be parsed:
// unreadable file, header not found after the preamble, a required column
// missing after normalization, or a malformed value.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
