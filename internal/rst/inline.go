package rst

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SpanKind identifies inline markup.
type SpanKind int

const (
	Text SpanKind = iota
	Emphasis
	Strong
	Code
	Reference
)

// Span is a run of inline text. Target is set for hyperlink references.
type Span struct {
	Kind   SpanKind
	Text   string
	Target string
}

// roleKinds maps interpreted-text roles to the markup they render as.
var roleKinds = map[string]SpanKind{
	"ref":     Reference,
	"doc":     Reference,
	"option":  Strong,
	"command": Strong,
	"program": Strong,
	"file":    Code,
	"samp":    Code,
	"code":    Code,
	"literal": Code,
	"envvar":  Code,
	"strong":  Strong,
}

// ParseInline splits inline reST markup into spans. Unterminated markup
// is kept as text.
func ParseInline(s string) []Span {
	var spans []Span
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			spans = append(spans, Span{Kind: Text, Text: text.String()})
			text.Reset()
		}
	}

	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			_, size := utf8.DecodeRuneInString(s[i+1:])
			text.WriteString(s[i+1 : i+1+size])
			i += 1 + size
			continue
		}
		if !canOpen(s, i) {
			text.WriteByte(c)
			i++
			continue
		}

		var (
			span Span
			n    int
		)
		switch {
		case strings.HasPrefix(s[i:], "``"):
			span, n = closeSimple(s, i, "``", Code)
		case strings.HasPrefix(s[i:], "**"):
			span, n = closeSimple(s, i, "**", Strong)
		case c == '*':
			span, n = closeSimple(s, i, "*", Emphasis)
		case c == '`':
			span, n = interpreted(s, i, "")
		case c == ':':
			span, n = role(s, i)
		}
		if n == 0 {
			text.WriteByte(c)
			i++
			continue
		}
		flush()
		spans = append(spans, span)
		i += n
	}
	flush()
	return spans
}

// PlainText returns s with inline markup removed.
func PlainText(s string) string {
	var b strings.Builder
	for _, span := range ParseInline(s) {
		b.WriteString(span.Text)
	}
	return b.String()
}

func canOpen(s string, i int) bool {
	switch s[i] {
	case '*', '`', ':':
	default:
		return false
	}
	if i > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:i])
		if !unicode.IsSpace(prev) && !strings.ContainsRune(`'"([{<-/:`, prev) {
			return false
		}
	}
	return true
}

func closeSimple(s string, i int, marker string, kind SpanKind) (Span, int) {
	start := i + len(marker)
	if start >= len(s) || s[start] == ' ' {
		return Span{}, 0
	}
	for j := start + 1; j+len(marker) <= len(s); j++ {
		if !strings.HasPrefix(s[j:], marker) || s[j-1] == ' ' {
			continue
		}
		// A single "*" does not close on half of a "**".
		if marker == "*" && j+1 < len(s) && s[j+1] == '*' {
			j++
			continue
		}
		return Span{Kind: kind, Text: s[start:j]}, j + len(marker) - i
	}
	return Span{}, 0
}

// interpreted handles `text`, `text`_ and `label <target>`_.
func interpreted(s string, i int, roleName string) (Span, int) {
	start := i + 1
	end := strings.IndexByte(s[start:], '`')
	if end <= 0 {
		return Span{}, 0
	}
	body := s[start : start+end]
	n := start + end + 1 - i

	if roleName == "" && start+end+1 < len(s) && s[start+end+1] == '_' {
		n++
		if start+end+2 < len(s) && s[start+end+2] == '_' {
			n++
		}
		label, target := splitTarget(body)
		return Span{Kind: Reference, Text: label, Target: target}, n
	}

	if roleName == "" {
		return Span{Kind: Emphasis, Text: body}, n
	}
	kind, ok := roleKinds[roleName]
	if !ok {
		kind = Emphasis
	}
	if kind == Reference {
		label, target := splitTarget(body)
		return Span{Kind: Reference, Text: label, Target: target}, n
	}
	return Span{Kind: kind, Text: body}, n
}

func role(s string, i int) (Span, int) {
	end := strings.Index(s[i+1:], ":`")
	if end <= 0 {
		return Span{}, 0
	}
	name := s[i+1 : i+1+end]
	if strings.ContainsAny(name, " `") {
		return Span{}, 0
	}
	if idx := strings.LastIndexByte(name, ':'); idx >= 0 {
		name = name[idx+1:]
	}
	span, n := interpreted(s, i+1+end+1, name)
	if n == 0 {
		return Span{}, 0
	}
	return span, end + 2 + n
}

func splitTarget(body string) (label, target string) {
	body = strings.TrimSpace(body)
	if strings.HasSuffix(body, ">") {
		if idx := strings.LastIndex(body, "<"); idx >= 0 {
			label = strings.TrimSpace(body[:idx])
			target = strings.TrimSpace(body[idx+1 : len(body)-1])
			if label == "" {
				label = target
			}
			return label, target
		}
	}
	return body, ""
}
