package htmlpage

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

var (
	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// Markdown renders an HTML document as markdown, for reading what a page
// showed. Scripts, styles and event handlers are stripped first. Relative
// links are resolved against pageURL.
func Markdown(doc []byte, pageURL string) (string, error) {
	clean := sanitizer.SanitizeBytes(doc)
	md, err := mdConverter.ConvertString(string(clean), converter.WithDomain(pageURL))
	if err != nil {
		return "", fmt.Errorf("htmlpage: markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// HTML returns the loaded document serialised back to HTML.
func (p *Page) HTML(context.Context) (string, error) {
	doc, _, err := p.current()
	if err != nil {
		return "", err
	}
	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("htmlpage: render: %w", err)
	}
	return out, nil
}
