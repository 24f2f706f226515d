package enrich

import (
	"context"
	"fmt"

	"github.com/hazyhaar/walletscan/enrich/internal/htmlpage"
	"github.com/hazyhaar/walletscan/enrich/internal/metric"
	"github.com/hazyhaar/walletscan/enrich/internal/verify"
)

// Extraction is the result of running the extractors over a saved page.
type Extraction struct {
	Metric   MetricKind
	Value    string
	Strategy string
	// Challenge is non-empty when the page looks like a verification wall.
	Challenge string
}

// ExtractHTML runs the challenge detector and the kind extractor over a
// saved HTML document, as if it had been loaded from pageURL. No browser
// is involved, so text rendered by scripts is not visible.
func ExtractHTML(ctx context.Context, kind MetricKind, pageURL string, doc []byte) (Extraction, error) {
	res := Extraction{Metric: kind}
	page, err := htmlpage.Parse(pageURL, doc)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrNavigation, err)
	}

	verdict, err := verify.NewDetector(verify.DefaultHeuristics()).Detect(ctx, page)
	if err != nil {
		return res, fmt.Errorf("%w: verification check: %w", ErrNavigation, err)
	}
	res.Challenge = verdict.Reason()

	body, err := page.BodyText(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	m, err := readMetric(kind, body, pageURL)
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrExtraction, kind, err)
	}
	res.Value, res.Strategy = m.Value, m.Strategy
	return res, nil
}

// readMetric applies the extraction strategies of kind to body text.
func readMetric(kind MetricKind, body, pageURL string) (metric.Match, error) {
	switch kind {
	case Activities:
		return metric.Activities(body, pageURL)
	case HoldingsPnL:
		return metric.HoldingsPnL(body)
	}
	return metric.Match{}, fmt.Errorf("unknown metric %d", int(kind))
}

// PageMarkdown renders a saved HTML document as sanitised markdown.
func PageMarkdown(pageURL string, doc []byte) (string, error) {
	return htmlpage.Markdown(doc, pageURL)
}
