package render

import (
	"path"
	"strings"

	"github.com/locationtech/geogig-manpages/internal/catalog"
	"github.com/locationtech/geogig-manpages/internal/rst"
)

// ManBuilder writes one roff page per catalog entry.
type ManBuilder struct {
	opts  Options
	today string
}

// NewMan returns a man page builder.
func NewMan(opts Options) *ManBuilder {
	return &ManBuilder{opts: opts, today: Today(&opts.Settings, opts.Now)}
}

func (b *ManBuilder) Name() string { return BuilderMan }

// ManPath returns the output path of an entry's man page.
func ManPath(e catalog.Entry) string {
	return path.Join("man", "man"+e.Section.String(), e.FileName())
}

func (b *ManBuilder) RenderPage(page Page) ([]Output, error) {
	return []Output{{Path: ManPath(page.Entry), Data: []byte(b.Render(page))}}, nil
}

func (b *ManBuilder) Finish([]Page) ([]Output, error) { return nil, nil }

// Render returns the roff source for page.
func (b *ManBuilder) Render(page Page) string {
	s := &b.opts.Settings
	e := page.Entry
	w := &roffWriter{}

	w.raw(`.\" Man page generated from reStructuredText.`)
	w.request("TH", quoteArg(e.PageName), quoteArg(e.Section.String()), quoteArg(b.today),
		quoteArg(s.DisplayRelease()), quoteArg(s.Project))
	w.request("SH", "NAME")
	w.text(escapeRoff(e.PageName) + ` \- ` + escapeRoff(e.Description))

	if page.Doc != nil {
		w.blocks(page.Doc.Blocks)
	}

	if names := authors(e, s); len(names) > 0 {
		w.request("SH", "AUTHOR")
		w.text(escapeRoff(strings.Join(names, ", ")))
	}
	if s.Copyright != "" {
		w.request("SH", "COPYRIGHT")
		w.text(escapeRoff(s.Copyright))
	}
	w.raw(`.\" Generated by geogig-docs.`)
	return w.b.String()
}

type roffWriter struct {
	b strings.Builder
}

func (w *roffWriter) raw(line string) {
	w.b.WriteString(line)
	w.b.WriteByte('\n')
}

func (w *roffWriter) request(name string, args ...string) {
	w.b.WriteByte('.')
	w.b.WriteString(name)
	for _, arg := range args {
		w.b.WriteByte(' ')
		w.b.WriteString(arg)
	}
	w.b.WriteByte('\n')
}

// text writes escaped text, protecting lines that would otherwise be
// read as requests.
func (w *roffWriter) text(s string) {
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, ".") || strings.HasPrefix(line, "'") {
			w.b.WriteString(`\&`)
		}
		w.raw(line)
	}
}

func (w *roffWriter) blocks(blocks []rst.Block) {
	for _, blk := range blocks {
		w.block(blk)
	}
}

func (w *roffWriter) block(blk rst.Block) {
	switch blk.Kind {
	case rst.Heading:
		title := escapeRoff(rst.PlainText(blk.Text))
		if blk.Level <= 2 {
			w.request("SH", strings.ToUpper(title))
		} else {
			w.request("SS", title)
		}
	case rst.Paragraph:
		w.request("PP")
		w.text(roffInline(blk.Text))
	case rst.Literal:
		w.request("sp")
		w.request("nf")
		w.request("ft", "C")
		w.text(escapeRoff(blk.Text))
		w.request("ft", "P")
		w.request("fi")
	case rst.BulletList:
		for _, item := range blk.Items {
			w.request("IP", `\(bu`, "2")
			w.itemBody(item.Body)
		}
	case rst.DefinitionList:
		for _, item := range blk.Items {
			w.request("TP")
			w.text(`\fB` + roffInline(item.Term) + `\fP`)
			w.itemBody(item.Body)
		}
	case rst.BlockQuote:
		w.request("RS", "4")
		w.blocks(blk.Children)
		w.request("RE")
	case rst.Admonition:
		w.request("RS", "4")
		w.request("sp")
		w.text(`\fB` + escapeRoff(blk.Title) + `:\fP`)
		w.itemBody(blk.Children)
		w.request("RE")
	}
}

// itemBody writes list item content. A leading paragraph continues the
// item line; later paragraphs are spaced and other blocks indented.
func (w *roffWriter) itemBody(body []rst.Block) {
	for i, blk := range body {
		switch {
		case blk.Kind == rst.Paragraph && i == 0:
			w.text(roffInline(blk.Text))
		case blk.Kind == rst.Paragraph:
			w.request("sp")
			w.text(roffInline(blk.Text))
		default:
			w.request("RS", "2")
			w.block(blk)
			w.request("RE")
		}
	}
}

func roffInline(src string) string {
	var b strings.Builder
	for _, span := range rst.ParseInline(src) {
		text := escapeRoff(span.Text)
		switch span.Kind {
		case rst.Strong, rst.Code:
			b.WriteString(`\fB` + text + `\fP`)
		case rst.Emphasis:
			b.WriteString(`\fI` + text + `\fP`)
		case rst.Reference:
			b.WriteString(`\fI` + text + `\fP`)
			if isExternal(span.Target) && span.Target != span.Text {
				b.WriteString(` <` + escapeRoff(span.Target) + `>`)
			}
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

var roffEscaper = strings.NewReplacer(`\`, `\e`, `-`, `\-`)

func escapeRoff(s string) string {
	return roffEscaper.Replace(s)
}

// quoteArg quotes a request argument.
func quoteArg(s string) string {
	s = strings.ReplaceAll(s, `\`, `\e`)
	s = strings.ReplaceAll(s, `"`, `\(dq`)
	return `"` + s + `"`
}

func isExternal(target string) bool {
	return strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:")
}
