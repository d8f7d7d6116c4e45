// Package names normalizes column headers and filenames into the
// canonical lowercase/underscore form shared by the cleaning and fitting
// stages. Instrument exports use vendor headers like "Oxygen (% air satur.)"
// or accented operator names; everything downstream keys on the cleaned
// form.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Options controls the optional normalization steps. The zero value
// disables all of them; DefaultOptions matches what the pipeline uses
// everywhere.
type Options struct {
	StripAccents     bool
	StripUnderscores bool
	RemoveSpecial    bool
}

// DefaultOptions enables every optional step.
func DefaultOptions() Options {
	return Options{StripAccents: true, StripUnderscores: true, RemoveSpecial: true}
}

// punctuation that becomes an underscore
const toUnderscore = " /:,?()." + "-" + " "

// Clean normalizes a raw header or filename using DefaultOptions.
func Clean(name string) string {
	return CleanWith(name, DefaultOptions())
}

// CleanWith lowercases the name, maps separator punctuation to
// underscores, drops apostrophes, then applies the optional steps:
// accent stripping (NFD decompose, drop combining marks), removal of any
// remaining rune that is not alphanumeric or underscore, collapsing of
// underscore runs, and trimming of leading/trailing underscores.
// It is total and idempotent for any input.
func CleanWith(name string, opts Options) string {
	name = strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case strings.ContainsRune(toUnderscore, r):
			b.WriteRune('_')
		case r == '\'' || r == '’':
			// apostrophes vanish entirely
		default:
			b.WriteRune(r)
		}
	}
	name = b.String()

	if opts.StripAccents {
		name = stripAccents(name)
	}
	if opts.RemoveSpecial {
		name = removeSpecial(name)
	}
	name = collapseUnderscores(name)
	if opts.StripUnderscores {
		name = strings.Trim(name, "_")
	}
	return name
}

// stripAccents decomposes to NFD and drops combining marks, so "é"
// becomes "e" and "ß"-style singletons pass through unchanged.
func stripAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func removeSpecial(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for _, r := range s {
		if r == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
