package transform

import (
	"bytes"
	"regexp"
	"strconv"
)

var (
	// xrefTextPattern matches name(section) in tag-stripped text.
	xrefTextPattern = regexp.MustCompile(`\b([a-zA-Z0-9][-a-zA-Z0-9._:+]*)\(([1-9])\)`)
	// inlineTagPattern matches opening and closing inline tags the page
	// writer emits.
	inlineTagPattern = regexp.MustCompile(`</?(?:strong|em|code)\b[^>]*>`)
	// trailingInlineOpen matches an inline opening tag at the end of a string.
	trailingInlineOpen = regexp.MustCompile(`<(?:strong|em|code)\b[^>]*>\z`)
	// leadingInlineClose matches an inline closing tag at the start of a string.
	leadingInlineClose = regexp.MustCompile(`\A</(?:strong|em|code)>`)
)

// RewriteLinks wraps known name(section) references in html with links.
func RewriteLinks(html string, resolve Resolver) string {
	return string(bRewriteXrefs(resolve, []byte(html)))
}

func bRewriteXrefs(resolve Resolver, html []byte) []byte {
	// Strip inline tags once, remembering where each kept byte came from.
	tagLocs := inlineTagPattern.FindAllIndex(html, -1)
	var stripped bytes.Buffer
	var posMap []int
	tagIdx := 0
	for i := 0; i < len(html); {
		if tagIdx < len(tagLocs) && i == tagLocs[tagIdx][0] {
			i = tagLocs[tagIdx][1]
			tagIdx++
			continue
		}
		posMap = append(posMap, i)
		stripped.WriteByte(html[i])
		i++
	}

	strippedBytes := stripped.Bytes()
	locs := xrefTextPattern.FindAllSubmatchIndex(strippedBytes, -1)
	if len(locs) == 0 {
		return html
	}

	var b bytes.Buffer
	lastEnd := 0
	for _, loc := range locs {
		origStart := posMap[loc[0]]
		origMatchEnd := posMap[loc[1]-1] + 1

		// Take in the formatting around the match so that
		// <strong>geogig-log</strong>(1) is wrapped whole.
		origStart = bExpandLeft(html, origStart, lastEnd)
		origEnd := bExpandRight(html, origMatchEnd)

		if bIsInside(html[:origStart], "a") || bIsInside(html[:origStart], "pre") {
			continue
		}

		name := string(strippedBytes[loc[2]:loc[3]])
		section, _ := strconv.Atoi(string(strippedBytes[loc[4]:loc[5]]))
		href, ok := resolve(name, section)
		if !ok {
			continue
		}

		b.Write(html[lastEnd:origStart])
		b.WriteString(`<a class="reference internal" href="`)
		b.WriteString(href)
		b.WriteString(`">`)
		b.Write(html[origStart:origEnd])
		b.WriteString(`</a>`)
		lastEnd = origEnd
	}
	b.Write(html[lastEnd:])
	return b.Bytes()
}

func bExpandLeft(html []byte, pos, limit int) int {
	for pos > limit {
		loc := trailingInlineOpen.FindIndex(html[limit:pos])
		if loc == nil {
			break
		}
		pos = limit + loc[0]
	}
	return pos
}

func bExpandRight(html []byte, pos int) int {
	for pos < len(html) {
		loc := leadingInlineClose.FindIndex(html[pos:])
		if loc == nil || loc[0] != 0 {
			break
		}
		pos += loc[1]
	}
	return pos
}

// bIsInside reports whether the end of html is inside an open tag element.
func bIsInside(html []byte, tag string) bool {
	lastOpen := bytes.LastIndex(html, []byte("<"+tag+" "))
	if i := bytes.LastIndex(html, []byte("<"+tag+">")); i > lastOpen {
		lastOpen = i
	}
	if lastOpen == -1 {
		return false
	}
	return lastOpen > bytes.LastIndex(html, []byte("</"+tag+">"))
}
