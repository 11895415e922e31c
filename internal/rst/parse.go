package rst

import (
	"fmt"
	"regexp"
	"strings"
)

const adornmentChars = "=-`:'\"~^_*+#<>."

var directivePattern = regexp.MustCompile(`^\.\.\s+([A-Za-z0-9_:+-]+?)::(?:\s+(.*))?$`)

type adornment struct {
	char     byte
	overline bool
}

type parser struct {
	opts   Options
	styles []adornment
}

// Parse parses src into a Document.
func Parse(src string, opts Options) (*Document, error) {
	p := &parser{opts: opts}
	blocks, err := p.parseBlocks(splitLines(src), true)
	if err != nil {
		return nil, err
	}

	doc := &Document{Blocks: blocks}
	if len(blocks) > 0 && blocks[0].Kind == Heading && blocks[0].Level == 1 {
		doc.Title = blocks[0].Text
		doc.Blocks = blocks[1:]
	}
	return doc, nil
}

func (p *parser) parseBlocks(lines []string, top bool) ([]Block, error) {
	var blocks []Block
	i := 0
	for i < len(lines) {
		line := lines[i]
		if isBlank(line) {
			i++
			continue
		}

		if indentOf(line) > 0 {
			end := indentedEnd(lines, i, 1)
			children, err := p.parseBlocks(dedent(lines[i:end]), false)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, Block{Kind: BlockQuote, Children: children})
			i = end
			continue
		}

		if top {
			b, n, err := p.heading(lines, i)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				blocks = append(blocks, b)
				i += n
				continue
			}
		}

		switch {
		case line == ".." || strings.HasPrefix(line, ".. "):
			bs, n, err := p.directive(lines, i)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, bs...)
			i += n
		case isAdornment(line):
			// Transition.
			i++
		case isBullet(line):
			b, n, err := p.bulletList(lines, i)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
			i += n
		case isOption(line):
			b, n, err := p.optionList(lines, i)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
			i += n
		case startsDefinition(lines, i):
			b, n, err := p.definitionList(lines, i)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
			i += n
		default:
			bs, n := p.paragraph(lines, i)
			blocks = append(blocks, bs...)
			i += n
		}
	}
	return blocks, nil
}

// heading returns the number of lines consumed, or 0 when lines[i] does
// not start a section title.
func (p *parser) heading(lines []string, i int) (Block, int, error) {
	line := lines[i]
	if isAdornment(line) {
		if i+2 >= len(lines) || isBlank(lines[i+1]) || !isAdornment(lines[i+2]) {
			return Block{}, 0, nil
		}
		if strings.TrimSpace(lines[i+2]) != strings.TrimSpace(line) {
			return Block{}, 0, fmt.Errorf("line %d: title overline and underline do not match", i+1)
		}
		title := strings.TrimSpace(lines[i+1])
		return Block{Kind: Heading, Level: p.level(adornment{char: line[0], overline: true}), Text: title}, 3, nil
	}

	if i+1 >= len(lines) || !isAdornment(lines[i+1]) {
		return Block{}, 0, nil
	}
	title := strings.TrimSpace(line)
	underline := strings.TrimSpace(lines[i+1])
	if len(underline) < len(title) && len(underline) < 4 {
		return Block{}, 0, nil
	}
	return Block{Kind: Heading, Level: p.level(adornment{char: underline[0]}), Text: title}, 2, nil
}

func (p *parser) level(a adornment) int {
	for i, s := range p.styles {
		if s == a {
			return i + 1
		}
	}
	p.styles = append(p.styles, a)
	return len(p.styles)
}

func (p *parser) paragraph(lines []string, i int) ([]Block, int) {
	end := i
	for end < len(lines) && !isBlank(lines[end]) && indentOf(lines[end]) == 0 {
		end++
	}
	text := joinLines(lines[i:end])

	if !strings.HasSuffix(text, "::") {
		return []Block{{Kind: Paragraph, Text: text}}, end - i
	}

	var blocks []Block
	if intro := literalIntro(text); intro != "" {
		blocks = append(blocks, Block{Kind: Paragraph, Text: intro})
	}
	j := end
	for j < len(lines) && isBlank(lines[j]) {
		j++
	}
	if j < len(lines) && indentOf(lines[j]) > 0 {
		litEnd := indentedEnd(lines, j, 1)
		blocks = append(blocks, Block{Kind: Literal, Text: strings.Join(dedent(lines[j:litEnd]), "\n")})
		end = litEnd
	}
	return blocks, end - i
}

func literalIntro(text string) string {
	switch {
	case text == "::":
		return ""
	case strings.HasSuffix(text, " ::"):
		return strings.TrimSpace(strings.TrimSuffix(text, "::"))
	default:
		return strings.TrimSuffix(text, ":")
	}
}

func (p *parser) bulletList(lines []string, i int) (Block, int, error) {
	marker := lines[i][0]
	var items []Item
	j := i
	for j < len(lines) {
		line := lines[j]
		if isBlank(line) {
			j++
			continue
		}
		if indentOf(line) != 0 || !isBullet(line) || line[0] != marker {
			break
		}
		width := 1 + indentOf(line[1:])
		end := indentedEnd(lines, j+1, width)
		body := append([]string{line[width:]}, stripIndent(lines[j+1:end], width)...)
		children, err := p.parseBlocks(body, false)
		if err != nil {
			return Block{}, 0, err
		}
		items = append(items, Item{Body: children})
		j = end
	}
	return Block{Kind: BulletList, Items: items}, j - i, nil
}

func (p *parser) optionList(lines []string, i int) (Block, int, error) {
	var items []Item
	j := i
	for j < len(lines) {
		line := lines[j]
		if isBlank(line) {
			j++
			continue
		}
		if indentOf(line) != 0 || !isOption(line) {
			break
		}
		term, rest := splitOption(line)
		end := indentedEnd(lines, j+1, 1)
		var body []string
		if rest != "" {
			body = append(body, rest)
		}
		body = append(body, dedent(lines[j+1:end])...)
		children, err := p.parseBlocks(body, false)
		if err != nil {
			return Block{}, 0, err
		}
		items = append(items, Item{Term: term, Body: children})
		j = end
	}
	return Block{Kind: DefinitionList, Items: items}, j - i, nil
}

func (p *parser) definitionList(lines []string, i int) (Block, int, error) {
	var items []Item
	j := i
	for j < len(lines) {
		if isBlank(lines[j]) {
			j++
			continue
		}
		if !startsDefinition(lines, j) || isBullet(lines[j]) || isOption(lines[j]) || strings.HasPrefix(lines[j], "..") {
			break
		}
		end := indentedEnd(lines, j+1, 1)
		children, err := p.parseBlocks(dedent(lines[j+1:end]), false)
		if err != nil {
			return Block{}, 0, err
		}
		items = append(items, Item{Term: strings.TrimSpace(lines[j]), Body: children})
		j = end
	}
	return Block{Kind: DefinitionList, Items: items}, j - i, nil
}

func (p *parser) directive(lines []string, i int) ([]Block, int, error) {
	end := indentedEnd(lines, i+1, 1)
	n := end - i
	body := dedent(lines[i+1 : end])

	m := directivePattern.FindStringSubmatch(lines[i])
	if m == nil {
		// Comment.
		return nil, n, nil
	}
	name := strings.ToLower(m[1])
	arg := strings.TrimSpace(m[2])

	switch name {
	case "note", "warning", "tip", "important", "caution", "attention", "danger", "hint", "error", "seealso":
		return p.admonition(admonitionTitle(name), arg, body, n)
	case "admonition":
		return p.admonition(arg, "", body, n)
	case "todo":
		if !p.opts.IncludeTodos {
			return nil, n, nil
		}
		return p.admonition("Todo", arg, body, n)
	case "code-block", "code", "sourcecode":
		text := strings.Trim(strings.Join(stripOptions(body), "\n"), "\n")
		if text == "" {
			return nil, n, nil
		}
		return []Block{{Kind: Literal, Text: text}}, n, nil
	default:
		return nil, n, nil
	}
}

func (p *parser) admonition(title, arg string, body []string, n int) ([]Block, int, error) {
	content := stripOptions(body)
	if arg != "" {
		content = append([]string{arg, ""}, content...)
	}
	children, err := p.parseBlocks(content, false)
	if err != nil {
		return nil, 0, err
	}
	return []Block{{Kind: Admonition, Title: title, Children: children}}, n, nil
}

func admonitionTitle(name string) string {
	if name == "seealso" {
		return "See also"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
