// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLText extracts plain text from converted bill HTML, one line per
// paragraph. Redline spans contribute their text content; deleted and
// inserted passages both stay in the prompt. Falls back to the whole
// document text when no paragraphs are present, and to the raw input when
// it is not parseable as HTML.
func HTMLText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	var lines []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return strings.Join(lines, "\n")
}
