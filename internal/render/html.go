package render

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"html/template"
	"path"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/locationtech/geogig-manpages/internal/catalog"
	"github.com/locationtech/geogig-manpages/internal/rst"
	"github.com/locationtech/geogig-manpages/internal/transform"
)

const (
	htmlDir      = "html"
	staticPrefix = "_static/"
)

// HTMLBuilder writes the HTML manual: one file per entry plus index
// pages and theme static files.
type HTMLBuilder struct {
	opts        Options
	theme       Theme
	layout      *template.Template
	lastUpdated string
}

// layoutData is the value passed to a theme's layout.html.
type layoutData struct {
	Title       string
	Heading     string
	Description string
	DocTitle    string
	Project     string
	Release     string
	Version     string
	Copyright   string
	LastUpdated string
	UseIndex    bool
	UseModindex bool
	Static      string
	TOC         []transform.TOCEntry
	Body        template.HTML
	// Entry is nil on index pages.
	Entry *catalog.Entry
}

// NewHTML returns an HTML builder using the configured theme, or the
// built-in theme when it cannot be found on the theme path.
func NewHTML(opts Options) (*HTMLBuilder, error) {
	searchPath := make([]string, 0, len(opts.ThemePath))
	for _, dir := range opts.ThemePath {
		searchPath = append(searchPath, opts.resolve(dir))
	}
	theme, ok := FindTheme(opts.Settings.HTMLTheme, searchPath)
	if !ok {
		opts.logger().Warn("theme not found, using built-in theme", "theme", opts.Settings.HTMLTheme, "path", searchPath)
		theme = DefaultTheme()
	}
	layout, err := theme.Layout()
	if err != nil {
		return nil, err
	}
	return &HTMLBuilder{
		opts:        opts,
		theme:       theme,
		layout:      layout,
		lastUpdated: LastUpdated(&opts.Settings, opts.Now),
	}, nil
}

func (b *HTMLBuilder) Name() string { return BuilderHTML }

// Theme returns the theme in use.
func (b *HTMLBuilder) Theme() Theme { return b.theme }

// HTMLPath returns the output path of an entry's HTML page.
func HTMLPath(e catalog.Entry) string {
	return path.Join(htmlDir, e.PageName+".html")
}

func (b *HTMLBuilder) RenderPage(page Page) ([]Output, error) {
	var body string
	if page.Doc != nil {
		body = b.fragment(page.Doc.Blocks)
	}
	entry := page.Entry
	data := b.data(entry.Title(), body, b.xref)
	data.Description = entry.Description
	data.Entry = &entry

	out, err := b.execute(data)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", HTMLPath(entry), err)
	}
	return []Output{{Path: HTMLPath(entry), Data: out}}, nil
}

func (b *HTMLBuilder) Finish(pages []Page) ([]Output, error) {
	s := &b.opts.Settings
	var outputs []Output

	index, err := b.indexPage(pages)
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, index)

	if s.HTMLUseIndex {
		out, err := b.listing("genindex.html", "Index", pages, func(e catalog.Entry) string {
			r, _ := utf8.DecodeRuneInString(e.PageName)
			return string(unicode.ToUpper(r))
		})
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	if s.HTMLUseModindex {
		out, err := b.listing("modindex.html", "Command Index", pages, func(e catalog.Entry) string {
			return "Section " + e.Section.String()
		})
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	static, err := b.theme.StaticFiles(path.Join(htmlDir, staticPrefix))
	if err != nil {
		return nil, err
	}
	return append(outputs, static...), nil
}

func (b *HTMLBuilder) indexPage(pages []Page) (Output, error) {
	s := &b.opts.Settings
	var body strings.Builder
	master := b.opts.Master
	for _, p := range pages {
		if master == nil && p.Entry.SourceName == s.MasterDoc && p.Doc != nil {
			master = p.Doc
		}
	}
	if master != nil {
		body.WriteString(b.fragment(master.Blocks))
	}
	body.WriteString("<div class=\"toctree-wrapper\">\n<ul>\n")
	for _, p := range pages {
		body.WriteString("<li>")
		body.WriteString(pageLink(p.Entry))
		body.WriteString(" &mdash; ")
		body.WriteString(html.EscapeString(p.Entry.Description))
		body.WriteString("</li>\n")
	}
	body.WriteString("</ul>\n</div>\n")

	data := b.data(s.Title(), body.String(), b.xref)
	out, err := b.execute(data)
	if err != nil {
		return Output{}, fmt.Errorf("render index: %w", err)
	}
	return Output{Path: path.Join(htmlDir, "index.html"), Data: out}, nil
}

// listing renders an index page grouping entries by key.
func (b *HTMLBuilder) listing(name, title string, pages []Page, key func(catalog.Entry) string) (Output, error) {
	groups := map[string][]catalog.Entry{}
	for _, p := range pages {
		k := key(p.Entry)
		groups[k] = append(groups[k], p.Entry)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var body strings.Builder
	for _, k := range keys {
		entries := groups[k]
		slices.SortFunc(entries, func(x, y catalog.Entry) int { return cmp.Compare(x.PageName, y.PageName) })
		body.WriteString("<h2>" + html.EscapeString(k) + "</h2>\n<ul class=\"indextable\">\n")
		for _, e := range entries {
			body.WriteString("<li>" + pageLink(e) + " (" + e.Section.String() + ") &mdash; " + html.EscapeString(e.Description) + "</li>\n")
		}
		body.WriteString("</ul>\n")
	}

	out, err := b.execute(b.data(title, body.String(), nil))
	if err != nil {
		return Output{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Output{Path: path.Join(htmlDir, name), Data: out}, nil
}

func (b *HTMLBuilder) data(title, body string, resolve transform.Resolver) layoutData {
	s := &b.opts.Settings
	doc := transform.Pipeline([]byte(body), resolve)
	return layoutData{
		Title:       title,
		Heading:     title,
		DocTitle:    s.Title(),
		Project:     s.Project,
		Release:     s.DisplayRelease(),
		Version:     s.Version,
		Copyright:   s.Copyright,
		LastUpdated: b.lastUpdated,
		UseIndex:    s.HTMLUseIndex,
		UseModindex: s.HTMLUseModindex,
		Static:      staticPrefix,
		TOC:         doc.TOC,
		Body:        template.HTML(doc.Body),
	}
}

func (b *HTMLBuilder) execute(data layoutData) ([]byte, error) {
	var buf bytes.Buffer
	if err := b.layout.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xref resolves name(section) references to pages in the catalog.
func (b *HTMLBuilder) xref(name string, section int) (string, bool) {
	e, ok := b.lookup(name)
	if !ok || int(e.Section) != section {
		return "", false
	}
	return e.PageName + ".html", true
}

func (b *HTMLBuilder) lookup(name string) (catalog.Entry, bool) {
	if b.opts.Catalog == nil {
		return catalog.Entry{}, false
	}
	return b.opts.Catalog.Lookup(name)
}

func pageLink(e catalog.Entry) string {
	return `<a class="reference internal" href="` + html.EscapeString(e.PageName) + `.html">` + html.EscapeString(e.PageName) + `</a>`
}

func (b *HTMLBuilder) fragment(blocks []rst.Block) string {
	var sb strings.Builder
	for _, blk := range blocks {
		b.block(&sb, blk)
	}
	return sb.String()
}

func (b *HTMLBuilder) block(sb *strings.Builder, blk rst.Block) {
	switch blk.Kind {
	case rst.Heading:
		tag := fmt.Sprintf("h%d", min(max(blk.Level, 2), 6))
		sb.WriteString("<" + tag + ">" + b.inline(blk.Text) + "</" + tag + ">\n")
	case rst.Paragraph:
		sb.WriteString("<p>" + b.inline(blk.Text) + "</p>\n")
	case rst.Literal:
		sb.WriteString(`<pre class="literal-block">` + html.EscapeString(blk.Text) + "</pre>\n")
	case rst.BulletList:
		sb.WriteString("<ul>\n")
		for _, item := range blk.Items {
			sb.WriteString("<li>" + b.itemBody(item.Body) + "</li>\n")
		}
		sb.WriteString("</ul>\n")
	case rst.DefinitionList:
		sb.WriteString("<dl class=\"option-list\">\n")
		for _, item := range blk.Items {
			sb.WriteString("<dt>" + b.inline(item.Term) + "</dt>\n")
			sb.WriteString("<dd>" + b.itemBody(item.Body) + "</dd>\n")
		}
		sb.WriteString("</dl>\n")
	case rst.BlockQuote:
		sb.WriteString("<blockquote>\n" + b.fragment(blk.Children) + "</blockquote>\n")
	case rst.Admonition:
		class := strings.ToLower(strings.ReplaceAll(blk.Title, " ", ""))
		sb.WriteString(`<div class="admonition ` + html.EscapeString(class) + `">` + "\n")
		sb.WriteString(`<p class="admonition-title">` + html.EscapeString(blk.Title) + "</p>\n")
		sb.WriteString(b.fragment(blk.Children))
		sb.WriteString("</div>\n")
	}
}

// itemBody renders a lone paragraph without its <p> wrapper.
func (b *HTMLBuilder) itemBody(body []rst.Block) string {
	if len(body) == 1 && body[0].Kind == rst.Paragraph {
		return b.inline(body[0].Text)
	}
	return b.fragment(body)
}

func (b *HTMLBuilder) inline(src string) string {
	var sb strings.Builder
	for _, span := range rst.ParseInline(src) {
		text := html.EscapeString(span.Text)
		switch span.Kind {
		case rst.Emphasis:
			sb.WriteString("<em>" + text + "</em>")
		case rst.Strong:
			sb.WriteString("<strong>" + text + "</strong>")
		case rst.Code:
			sb.WriteString(`<code class="literal">` + text + "</code>")
		case rst.Reference:
			sb.WriteString(b.reference(span, text))
		default:
			sb.WriteString(text)
		}
	}
	return sb.String()
}

func (b *HTMLBuilder) reference(span rst.Span, text string) string {
	label := span.Target
	if label == "" {
		label = span.Text
	}
	if e, ok := b.lookup(label); ok {
		return `<a class="reference internal" href="` + html.EscapeString(e.PageName) + `.html">` + text + "</a>"
	}
	if isExternal(span.Target) {
		return `<a class="reference external" href="` + html.EscapeString(span.Target) + `">` + text + "</a>"
	}
	return `<span class="xref">` + text + "</span>"
}
