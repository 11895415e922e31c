package transform

import (
	"bytes"
	"regexp"
)

var h2Element = regexp.MustCompile(`(?s)<h2[^>]*>.*?</h2>`)

// bWrapSections puts the content following each h2, up to the next h2,
// inside <div class="section-body">.
func bWrapSections(html []byte) []byte {
	locs := h2Element.FindAllIndex(html, -1)
	if len(locs) == 0 {
		return html
	}

	var b bytes.Buffer
	b.Grow(len(html) + len(locs)*len(`<div class="section-body"></div>`))
	b.Write(html[:locs[0][0]])

	for i, loc := range locs {
		contentEnd := len(html)
		if i+1 < len(locs) {
			contentEnd = locs[i+1][0]
		}
		b.Write(html[loc[0]:loc[1]])
		b.WriteString("\n<div class=\"section-body\">")
		b.Write(bytes.TrimSpace(html[loc[1]:contentEnd]))
		b.WriteString("</div>\n")
	}
	return b.Bytes()
}
