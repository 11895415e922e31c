package transform

import (
	"bytes"
	"fmt"
	htmlutil "html"
	"regexp"
	"strings"
)

var (
	tocHeadingPattern = regexp.MustCompile(`(?s)<h2(\s[^>]*)?>(.+?)</h2>`)
	headingIDAttr     = regexp.MustCompile(`\s*id="[^"]*"`)
	nonAlphanumeric   = regexp.MustCompile(`[^a-z0-9]+`)
	stripTagsPattern  = regexp.MustCompile(`(?s)<[^>]+>`)
)

// Slugify lower-cases text and joins its alphanumeric runs with dashes.
func Slugify(text string) string {
	slug := strings.ToLower(text)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// StripTags removes markup and collapses whitespace.
func StripTags(html string) string {
	text := stripTagsPattern.ReplaceAllString(html, "")
	return htmlutil.UnescapeString(strings.Join(strings.Fields(text), " "))
}

func bGenerateTOC(html []byte) ([]byte, []TOCEntry) {
	matches := tocHeadingPattern.FindAllSubmatchIndex(html, -1)
	if len(matches) == 0 {
		return html, nil
	}

	seen := map[string]bool{}
	var entries []TOCEntry

	var body bytes.Buffer
	body.Grow(len(html) + len(matches)*32)
	lastEnd := 0

	for i, loc := range matches {
		attrs := ""
		if loc[2] >= 0 {
			attrs = string(html[loc[2]:loc[3]])
		}
		inner := html[loc[4]:loc[5]]

		text := StripTags(string(inner))
		if text == "" {
			continue
		}

		slug := Slugify(text)
		if slug == "" {
			slug = fmt.Sprintf("heading-%d", i)
		}
		if seen[slug] {
			slug = fmt.Sprintf("%s-%d", slug, i)
		}
		seen[slug] = true
		entries = append(entries, TOCEntry{ID: slug, Text: text})

		body.Write(html[lastEnd:loc[0]])
		body.WriteString(`<h2 id="`)
		body.WriteString(slug)
		body.WriteByte('"')
		body.WriteString(headingIDAttr.ReplaceAllString(attrs, ""))
		body.WriteByte('>')
		body.Write(inner)
		body.WriteString("</h2>")
		lastEnd = loc[1]
	}
	body.Write(html[lastEnd:])
	return body.Bytes(), entries
}
