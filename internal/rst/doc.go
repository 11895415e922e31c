// Package rst parses the reStructuredText subset used by the GeoGig
// command pages into a small block tree.
//
// Supported block markup: section titles (underlined, or over- and
// underlined), paragraphs, literal blocks introduced by "::", bullet
// lists, definition lists, option lists, block quotes, admonition
// directives, code-block directives and comments. Other directives are
// skipped. Inline markup is handled by ParseInline.
package rst

// BlockKind identifies the type of a Block.
type BlockKind int

const (
	Heading BlockKind = iota
	Paragraph
	Literal
	BulletList
	DefinitionList
	BlockQuote
	Admonition
)

func (k BlockKind) String() string {
	switch k {
	case Heading:
		return "heading"
	case Paragraph:
		return "paragraph"
	case Literal:
		return "literal"
	case BulletList:
		return "bullet-list"
	case DefinitionList:
		return "definition-list"
	case BlockQuote:
		return "block-quote"
	case Admonition:
		return "admonition"
	default:
		return "unknown"
	}
}

// Block is one structural element of a document.
type Block struct {
	Kind BlockKind
	// Level is the heading depth; 1 is the document title style.
	Level int
	// Text holds heading and paragraph inline source, or literal content.
	Text string
	// Title is the admonition caption, e.g. "Note".
	Title    string
	Items    []Item
	Children []Block
}

// Item is a list entry. Term is empty for bullet lists.
type Item struct {
	Term string
	Body []Block
}

// Document is a parsed source file.
type Document struct {
	// Title is the text of a leading document title, if any. The title
	// heading itself is not included in Blocks.
	Title  string
	Blocks []Block
}

// Options tunes parsing.
type Options struct {
	// IncludeTodos keeps ".. todo::" directives as admonitions.
	IncludeTodos bool
}
