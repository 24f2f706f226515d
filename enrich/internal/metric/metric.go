// CLAUDE:SUMMARY Ordered, named text-pattern strategies that pull the activities count and holdings PnL out of rendered page text.
// Package metric extracts wallet metrics from the visible text of a rendered
// page. Each metric kind is an ordered list of named strategies; the first
// strategy that matches wins, so earlier entries take priority over later,
// broader ones.
package metric

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNotFound is returned when no strategy produced a value.
var ErrNotFound = errors.New("metric: value not found")

// Strategy is one named way of reading a value from normalised text.
type Strategy struct {
	Name  string
	Match func(text string) (string, bool)
}

// Match is the value produced by a strategy, with the strategy's name.
type Match struct {
	Value    string
	Strategy string
}

// \s is ASCII only; \p{Z} adds the no-break and other Unicode spaces that
// rendered innerText carries.
var spaceRun = regexp.MustCompile(`[\s\p{Z}]+`)

// NormalizeSpace collapses whitespace runs to a single space and trims.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// First runs strategies in order over text and returns the first match.
func First(text string, strategies []Strategy) (Match, bool) {
	for _, s := range strategies {
		if v, ok := s.Match(text); ok {
			return Match{Value: v, Strategy: s.Name}, true
		}
	}
	return Match{}, false
}

// capture builds a strategy match func returning the first submatch of re,
// passed through clean when clean is non-nil.
func capture(re *regexp.Regexp, clean func(string) string) func(string) (string, bool) {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 || m[1] == "" {
			return "", false
		}
		if clean != nil {
			return clean(m[1]), true
		}
		return m[1], true
	}
}

func stripCommas(s string) string { return strings.ReplaceAll(s, ",", "") }
