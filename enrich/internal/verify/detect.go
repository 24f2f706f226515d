// CLAUDE:SUMMARY Detects anti-bot challenge pages by title phrase, challenge URL path, and verification widget markers.
// Package verify decides whether a loaded page is blocked by a human
// verification challenge, and provides the gates an operator uses to resume
// the pipeline once the challenge is solved.
package verify

import (
	"context"
	"fmt"
	"strings"
)

// Inspector is the read-only page surface the Detector needs.
type Inspector interface {
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	// CountMarkers returns how many elements match selector. When text is
	// non-empty only elements whose visible text contains it
	// (case-insensitive) are counted.
	CountMarkers(ctx context.Context, selector, text string) (int, error)
}

// Marker is a selector, optionally narrowed by contained text.
type Marker struct {
	Selector string
	Text     string
}

func (m Marker) String() string {
	if m.Text == "" {
		return m.Selector
	}
	return fmt.Sprintf("%s:contains(%q)", m.Selector, m.Text)
}

// Verdict is the outcome of one detection.
type Verdict struct {
	Challenged bool
	Heuristic  string // "title", "url" or "marker"
	Evidence   string
}

// Reason renders the verdict for logs and the operator prompt.
func (v Verdict) Reason() string {
	if !v.Challenged {
		return ""
	}
	return v.Heuristic + ": " + v.Evidence
}

// Heuristics are the lists the Detector consults.
type Heuristics struct {
	TitlePhrases []string
	URLFragments []string
	Markers      []Marker
}

// DefaultHeuristics covers Cloudflare, Turnstile, hCaptcha and reCAPTCHA.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		TitlePhrases: []string{
			"just a moment",
			"attention required",
			"verify you are human",
			"are you a robot",
			"security check",
			"checking your browser",
			"human verification",
		},
		URLFragments: []string{
			"/cdn-cgi/challenge-platform",
			"/cdn-cgi/l/chk_captcha",
			"challenges.cloudflare.com",
			"/captcha",
		},
		Markers: []Marker{
			{Selector: `iframe[src*="challenges.cloudflare.com"]`},
			{Selector: `.cf-turnstile`},
			{Selector: `#challenge-form`},
			{Selector: `#challenge-running`},
			{Selector: `iframe[src*="hcaptcha.com"]`},
			{Selector: `.h-captcha`},
			{Selector: `iframe[src*="recaptcha"]`},
			{Selector: `.g-recaptcha`},
			{Selector: `body`, Text: "verify you are human"},
		},
	}
}

// Detector evaluates Heuristics against a page, in order: title, URL,
// markers. The first positive heuristic wins.
type Detector struct {
	h Heuristics
}

// NewDetector creates a Detector. Phrases and fragments are matched
// case-insensitively.
func NewDetector(h Heuristics) *Detector {
	lowered := Heuristics{Markers: h.Markers}
	for _, p := range h.TitlePhrases {
		lowered.TitlePhrases = append(lowered.TitlePhrases, strings.ToLower(p))
	}
	for _, f := range h.URLFragments {
		lowered.URLFragments = append(lowered.URLFragments, strings.ToLower(f))
	}
	return &Detector{h: lowered}
}

// Detect inspects page. It has no side effects on the page.
func (d *Detector) Detect(ctx context.Context, page Inspector) (Verdict, error) {
	title, err := page.Title(ctx)
	if err != nil {
		return Verdict{}, fmt.Errorf("verify: title: %w", err)
	}
	lt := strings.ToLower(title)
	for _, p := range d.h.TitlePhrases {
		if strings.Contains(lt, p) {
			return Verdict{Challenged: true, Heuristic: "title", Evidence: title}, nil
		}
	}

	u, err := page.URL(ctx)
	if err != nil {
		return Verdict{}, fmt.Errorf("verify: url: %w", err)
	}
	lu := strings.ToLower(u)
	for _, f := range d.h.URLFragments {
		if strings.Contains(lu, f) {
			return Verdict{Challenged: true, Heuristic: "url", Evidence: u}, nil
		}
	}

	for _, m := range d.h.Markers {
		n, err := page.CountMarkers(ctx, m.Selector, m.Text)
		if err != nil {
			return Verdict{}, fmt.Errorf("verify: marker %s: %w", m, err)
		}
		if n > 0 {
			return Verdict{Challenged: true, Heuristic: "marker", Evidence: m.String()}, nil
		}
	}
	return Verdict{}, nil
}
