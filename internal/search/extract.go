package search

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractText returns the readable text of a rendered HTML page: the
// main content element when present, otherwise the body, without
// navigation, headers and footers.
func ExtractText(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, nav, header, footer").Remove()

	content := doc.Find("main").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	return strings.Join(strings.Fields(content.Text()), " "), nil
}
