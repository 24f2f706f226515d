package metric

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	totalActivities    = regexp.MustCompile(`(?i)\bTotal\s+(\d[\d,]*)\s+activit(?:y|ies)\b`)
	moreThanActivities = regexp.MustCompile(`(?i)\bMore\s+than\s+(\d[\d,]*)\s+activities\b`)
	zeroActivities     = regexp.MustCompile(`(?i)\b(?:no\s+activit(?:y|ies)(?:\s+(?:found|yet))?|0\s+activities)\b`)
)

// ActivityStrategies is the priority order used by Activities.
var ActivityStrategies = []Strategy{
	{Name: "total", Match: capture(totalActivities, stripCommas)},
	{Name: "more-than", Match: capture(moreThanActivities, stripCommas)},
	{Name: "zero-phrase", Match: matchZeroPhrase},
}

func matchZeroPhrase(text string) (string, bool) {
	if zeroActivities.MatchString(text) {
		return "0", true
	}
	return "", false
}

// Activities reads the activity count from page body text. pageURL is the
// URL of the rendered page: when the text has no activity section at all and
// the URL is an activities view, the wallet is treated as having none.
func Activities(body, pageURL string) (Match, error) {
	text := NormalizeSpace(body)
	if m, ok := First(text, ActivityStrategies); ok {
		return m, nil
	}
	if !hasActivitySection(text) && IsActivitiesView(pageURL) {
		return Match{Value: "0", Strategy: "missing-section"}, nil
	}
	return Match{}, fmt.Errorf("%w: activities section not located", ErrNotFound)
}

// IsActivitiesView reports whether the URL requests the activities view.
func IsActivitiesView(pageURL string) bool {
	return strings.Contains(strings.ToLower(pageURL), "activit")
}

func hasActivitySection(text string) bool {
	return strings.Contains(strings.ToLower(text), "activit")
}
