// CLAUDE:SUMMARY Browser-free page backed by saved HTML documents, used by the extract command and pipeline tests.
// Package htmlpage implements the pipeline's page surface over static HTML
// documents keyed by URL. No JavaScript runs: the visible text is the text
// of <body> with script, style and template subtrees removed.
package htmlpage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoScreenshot is returned by Screenshot: static documents have no pixels.
var ErrNoScreenshot = errors.New("htmlpage: screenshot not supported")

// ErrNotLoaded is returned when a page operation runs before Navigate.
var ErrNotLoaded = errors.New("htmlpage: no document loaded")

// Site maps URLs to HTML documents.
type Site map[string][]byte

// Page serves documents from a Site.
type Page struct {
	site Site

	mu   sync.Mutex
	url  string
	doc  *goquery.Document
	hits map[string]int
}

// New creates a Page over site.
func New(site Site) *Page {
	return &Page{site: site, hits: make(map[string]int)}
}

// Parse parses one document and returns a Page already positioned on it.
func Parse(pageURL string, doc []byte) (*Page, error) {
	p := New(Site{pageURL: doc})
	if err := p.Navigate(context.Background(), pageURL); err != nil {
		return nil, err
	}
	return p, nil
}

// Navigate loads the document registered for pageURL.
func (p *Page) Navigate(ctx context.Context, pageURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, ok := p.site[pageURL]
	if !ok {
		return fmt.Errorf("htmlpage: navigate %s: no document", pageURL)
	}
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("htmlpage: parse %s: %w", pageURL, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = pageURL
	p.doc = goquery.NewDocumentFromNode(root)
	p.hits[pageURL]++
	return nil
}

// Visits returns how many times pageURL was navigated to.
func (p *Page) Visits(pageURL string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[pageURL]
}

func (p *Page) current() (*goquery.Document, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return nil, "", ErrNotLoaded
	}
	return p.doc, p.url, nil
}

// Title returns the <title> text.
func (p *Page) Title(context.Context) (string, error) {
	doc, _, err := p.current()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

// URL returns the URL of the loaded document.
func (p *Page) URL(context.Context) (string, error) {
	_, u, err := p.current()
	return u, err
}

// BodyText returns the text content of <body>, one text node per line.
func (p *Page) BodyText(context.Context) (string, error) {
	doc, _, err := p.current()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, n := range doc.Find("body").Nodes {
		collectText(n, &b)
	}
	return b.String(), nil
}

// CountMarkers counts elements matching selector whose text contains text
// (case-insensitive) when text is non-empty.
func (p *Page) CountMarkers(_ context.Context, selector, text string) (int, error) {
	doc, _, err := p.current()
	if err != nil {
		return 0, err
	}
	sel := doc.Find(selector)
	if text == "" {
		return sel.Length(), nil
	}
	needle := strings.ToLower(text)
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.Text()), needle)
	}).Length(), nil
}

// Screenshot always fails with ErrNoScreenshot.
func (p *Page) Screenshot(context.Context) ([]byte, error) {
	return nil, ErrNoScreenshot
}

// collectText appends visible text under n, skipping non-rendered subtrees.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
			return
		}
	}
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			b.WriteString(t)
			b.WriteByte('\n')
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
