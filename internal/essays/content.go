package essays

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ContentRenderer turns submitted essay bodies into safe HTML.
type ContentRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewContentRenderer() *ContentRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span", "div", "pre", "blockquote")
	policy.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	return &ContentRenderer{
		md:     md,
		policy: policy,
	}
}

// Render converts content of the given format (html or markdown) to sanitized HTML.
func (r *ContentRenderer) Render(content, format string) (string, error) {
	switch format {
	case "", FormatHTML:
		return r.policy.Sanitize(content), nil
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(content), &buf); err != nil {
			return "", fmt.Errorf("convert markdown: %w", err)
		}
		return r.policy.Sanitize(buf.String()), nil
	default:
		return "", fmt.Errorf("unknown content format: %s", format)
	}
}
