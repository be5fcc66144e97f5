package ingestion

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skipSelectors are HTML regions that never contain exercise source text.
const skipSelectors = "script, style, noscript, nav, header, footer, iframe, form"

// FromHTML extracts readable text from an HTML document and normalizes it.
// Block-level elements become line breaks so sentence boundaries survive.
func FromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(skipSelectors).Remove()

	root := doc.Find("article, main").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var sb strings.Builder
	root.Find("p, h1, h2, h3, h4, li, blockquote, td").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	})

	if sb.Len() == 0 {
		// Document without block structure: fall back to the whole text.
		sb.WriteString(root.Text())
	}

	return Normalize(sb.String()), nil
}
