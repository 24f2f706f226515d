package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Page wraps the stealth Rod page the pipeline navigates between sources.
// It is not safe for concurrent use; one owner drives it sequentially.
type Page struct {
	page    *rod.Page
	router  *rod.HijackRouter
	timeout time.Duration
	logger  *slog.Logger
}

func openPage(ctx context.Context, b *rod.Browser, cfg Config) (*Page, error) {
	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}

	p := &Page{page: page, timeout: cfg.Timeout, logger: cfg.Logger}

	if len(cfg.ResourceBlocking) > 0 {
		p.router = applyResourceBlocking(page, cfg.ResourceBlocking)
	}
	return p, nil
}

// Navigate loads pageURL and waits for the load event, both bounded by the
// configured timeout.
func (p *Page) Navigate(ctx context.Context, pageURL string) error {
	navCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.page.Context(navCtx).Navigate(pageURL); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := p.page.Context(navCtx).WaitLoad(); err != nil {
		return fmt.Errorf("browser: wait load %s: %w", pageURL, err)
	}
	return nil
}

// Title returns the document title.
func (p *Page) Title(ctx context.Context) (string, error) {
	info, err := p.info(ctx)
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// URL returns the current URL, after any redirects.
func (p *Page) URL(ctx context.Context) (string, error) {
	info, err := p.info(ctx)
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *Page) info(ctx context.Context) (*proto.TargetTargetInfo, error) {
	opCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	info, err := p.page.Context(opCtx).Info()
	if err != nil {
		return nil, fmt.Errorf("browser: page info: %w", err)
	}
	return info, nil
}

// BodyText returns the visible text of document.body.
func (p *Page) BodyText(ctx context.Context) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	res, err := p.page.Context(opCtx).Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return "", fmt.Errorf("browser: body text: %w", err)
	}
	return res.Value.Str(), nil
}

const countMarkersJS = `(sel, text) => {
	const needle = (text || "").toLowerCase();
	let n = 0;
	for (const el of document.querySelectorAll(sel)) {
		if (!needle || (el.innerText || el.textContent || "").toLowerCase().includes(needle)) n++;
	}
	return n;
}`

// CountMarkers counts elements matching selector, narrowed to those whose
// text contains text when text is non-empty.
func (p *Page) CountMarkers(ctx context.Context, selector, text string) (int, error) {
	opCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	res, err := p.page.Context(opCtx).Eval(countMarkersJS, selector, text)
	if err != nil {
		return 0, fmt.Errorf("browser: count %s: %w", selector, err)
	}
	return res.Value.Int(), nil
}

// HTML returns the current DOM serialised as HTML.
func (p *Page) HTML(ctx context.Context) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	out, err := p.page.Context(opCtx).HTML()
	if err != nil {
		return "", fmt.Errorf("browser: html: %w", err)
	}
	return out, nil
}

// Screenshot captures the full page as PNG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	opCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	data, err := p.page.Context(opCtx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("browser: screenshot: %w", err)
	}
	return data, nil
}

// Close stops request interception and closes the page.
func (p *Page) Close() error {
	if p.router != nil {
		if err := p.router.Stop(); err != nil {
			p.logger.Warn("browser: stop hijack router", "error", err)
		}
	}
	if p.page != nil {
		return p.page.Close()
	}
	return nil
}
