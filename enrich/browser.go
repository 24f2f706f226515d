package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/walletscan/enrich/internal/browser"
)

// Browser is a running Chrome with the single page the pipeline drives.
type Browser struct {
	mgr  *browser.Manager
	page *browser.Page
}

// StartBrowser launches (or connects to) Chrome per cfg.Browser and opens
// the stealth page.
func StartBrowser(ctx context.Context, cfg Config, logger *slog.Logger) (*Browser, error) {
	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		Headless:         cfg.Browser.Headless,
		Timeout:          cfg.Browser.Timeout,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Logger:           logger,
	})
	if err := mgr.Start(ctx); err != nil {
		return nil, fmt.Errorf("enrich: start browser: %w", err)
	}
	page, err := mgr.OpenPage(ctx)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("enrich: open page: %w", err)
	}
	return &Browser{mgr: mgr, page: page}, nil
}

// Page returns the page owned by the browser.
func (b *Browser) Page() Page { return b.page }

// Close closes the page and shuts Chrome down.
func (b *Browser) Close() error {
	perr := b.page.Close()
	if err := b.mgr.Close(); err != nil {
		return fmt.Errorf("enrich: close browser: %w", err)
	}
	return perr
}
