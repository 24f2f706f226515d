// CLAUDE:SUMMARY Writes a full-page PNG (and a markdown text dump) of the current page when a metric fetch has exhausted its retries.
// Package snapshot persists diagnostic page captures. Files are written once
// and never read back.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/hazyhaar/walletscan/enrich/internal/htmlpage"
)

// Screenshotter is the page surface needed to take a capture.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// HTMLSource is the page surface needed for a text dump.
type HTMLSource interface {
	HTML(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
}

// Artifact describes one written capture.
type Artifact struct {
	Path   string
	Wallet string
	Label  string
	Taken  time.Time
}

// Capturer writes captures into a directory.
type Capturer struct {
	dir string
	now func() time.Time
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Capturer) { c.now = now }
}

// New creates a Capturer writing under dir.
func New(dir string, opts ...Option) *Capturer {
	c := &Capturer{dir: dir, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileName returns "{label}-{wallet}-{unixMillis}.png" with every character
// outside [A-Za-z0-9._-] replaced by '_'.
func FileName(label, wallet string, at time.Time) string {
	return fileName(label, wallet, at, ".png")
}

func fileName(label, wallet string, at time.Time, ext string) string {
	name := label + "-" + wallet + "-" + strconv.FormatInt(at.UnixMilli(), 10) + ext
	return unsafeChars.ReplaceAllString(name, "_")
}

// Capture takes a full-page PNG of page and writes it. The directory is
// created if absent.
func (c *Capturer) Capture(ctx context.Context, page Screenshotter, label, wallet string) (Artifact, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("snapshot: mkdir %s: %w", c.dir, err)
	}
	png, err := page.Screenshot(ctx)
	if err != nil {
		return Artifact{}, fmt.Errorf("snapshot: capture: %w", err)
	}
	return c.write(png, label, wallet, ".png")
}

// Dump writes the page rendered as markdown next to the screenshots, with
// the same naming and a .md extension.
func (c *Capturer) Dump(ctx context.Context, page HTMLSource, label, wallet string) (Artifact, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("snapshot: mkdir %s: %w", c.dir, err)
	}
	doc, err := page.HTML(ctx)
	if err != nil {
		return Artifact{}, fmt.Errorf("snapshot: html: %w", err)
	}
	u, _ := page.URL(ctx)
	md, err := htmlpage.Markdown([]byte(doc), u)
	if err != nil {
		return Artifact{}, err
	}
	return c.write([]byte(md+"\n"), label, wallet, ".md")
}

func (c *Capturer) write(data []byte, label, wallet, ext string) (Artifact, error) {
	at := c.now()
	path := filepath.Join(c.dir, fileName(label, wallet, at, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	return Artifact{Path: path, Wallet: wallet, Label: label, Taken: at}, nil
}
