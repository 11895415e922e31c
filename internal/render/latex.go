package render

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/locationtech/geogig-manpages/internal/config"
	"github.com/locationtech/geogig-manpages/internal/rst"
)

const latexDir = "latex"

// LaTeXBuilder writes one document per latex_documents entry, with a
// chapter for every catalog page.
type LaTeXBuilder struct {
	opts Options
	tmpl *template.Template
}

type latexChapter struct {
	Title       string
	Label       string
	Description string
	Body        string
}

type latexData struct {
	Doc      config.LaTeXDocument
	Elements config.LaTeXElements
	Class    string
	Heading  string
	Release  string
	Date     string
	Logo     string
	Chapters []latexChapter
}

// sectioning commands from the page level down, per document class.
var latexHeadings = map[string][]string{
	"manual": {"chapter", "section", "subsection", "subsubsection"},
	"howto":  {"section", "subsection", "subsubsection", "paragraph"},
}

var latexClasses = map[string]string{
	"manual": "report",
	"howto":  "article",
}

// NewLaTeX returns a LaTeX builder.
func NewLaTeX(opts Options) (*LaTeXBuilder, error) {
	funcs := sprig.TxtFuncMap()
	funcs["tex"] = escapeTeX
	tmpl, err := template.New("manual.tex").Delims("<<", ">>").Funcs(funcs).ParseFS(templatesFS, "templates/latex/manual.tex")
	if err != nil {
		return nil, fmt.Errorf("parse latex template: %w", err)
	}
	return &LaTeXBuilder{opts: opts, tmpl: tmpl}, nil
}

func (b *LaTeXBuilder) Name() string { return BuilderLaTeX }

// RenderPage does nothing; chapters are assembled in Finish.
func (b *LaTeXBuilder) RenderPage(Page) ([]Output, error) { return nil, nil }

func (b *LaTeXBuilder) Finish(pages []Page) ([]Output, error) {
	s := &b.opts.Settings
	var outputs []Output

	logo, logoOut := b.logo()
	if logoOut != nil {
		outputs = append(outputs, *logoOut)
	}

	for _, doc := range s.LaTeXDocuments {
		headings, ok := latexHeadings[doc.DocClass]
		if !ok {
			return nil, fmt.Errorf("latex document %s: unknown doc_class %q", doc.TargetName, doc.DocClass)
		}
		data := latexData{
			Doc:      doc,
			Elements: s.LaTeXElements,
			Class:    latexClasses[doc.DocClass],
			Heading:  headings[0],
			Release:  s.DisplayRelease(),
			Date:     Today(s, b.opts.Now),
			Logo:     logo,
		}
		for _, p := range pages {
			w := &texWriter{headings: headings}
			if p.Doc != nil {
				w.blocks(p.Doc.Blocks)
			}
			data.Chapters = append(data.Chapters, latexChapter{
				Title:       p.Entry.PageName,
				Label:       p.Entry.PageName,
				Description: p.Entry.Description,
				Body:        w.b.String(),
			})
		}

		var buf bytes.Buffer
		if err := b.tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", doc.TargetName, err)
		}
		outputs = append(outputs, Output{Path: path.Join(latexDir, doc.TargetName), Data: buf.Bytes()})
	}
	return outputs, nil
}

// logo copies latex_logo next to the documents. A missing logo is
// reported and left out of the title page.
func (b *LaTeXBuilder) logo() (string, *Output) {
	src := b.opts.Settings.LaTeXLogo
	if src == "" {
		return "", nil
	}
	data, err := os.ReadFile(b.opts.resolve(src))
	if err != nil {
		b.opts.logger().Warn("latex logo not readable", "path", src, "error", err)
		return "", nil
	}
	name := filepath.Base(src)
	return name, &Output{Path: path.Join(latexDir, name), Data: data}
}

type texWriter struct {
	b        strings.Builder
	headings []string
}

func (w *texWriter) blocks(blocks []rst.Block) {
	for _, blk := range blocks {
		w.block(blk)
	}
}

func (w *texWriter) block(blk rst.Block) {
	switch blk.Kind {
	case rst.Heading:
		cmd := w.headings[min(max(blk.Level-1, 1), len(w.headings)-1)]
		fmt.Fprintf(&w.b, "\\%s*{%s}\n\n", cmd, texInline(blk.Text))
	case rst.Paragraph:
		w.b.WriteString(texInline(blk.Text) + "\n\n")
	case rst.Literal:
		w.b.WriteString("\\begin{verbatim}\n" + blk.Text + "\n\\end{verbatim}\n\n")
	case rst.BulletList:
		w.b.WriteString("\\begin{itemize}\n")
		for _, item := range blk.Items {
			w.b.WriteString("\\item ")
			w.blocks(item.Body)
		}
		w.b.WriteString("\\end{itemize}\n\n")
	case rst.DefinitionList:
		w.b.WriteString("\\begin{description}\n")
		for _, item := range blk.Items {
			w.b.WriteString("\\item[{" + texInline(item.Term) + "}] ")
			w.blocks(item.Body)
		}
		w.b.WriteString("\\end{description}\n\n")
	case rst.BlockQuote:
		w.b.WriteString("\\begin{quote}\n")
		w.blocks(blk.Children)
		w.b.WriteString("\\end{quote}\n\n")
	case rst.Admonition:
		w.b.WriteString("\\begin{quote}\n\\textbf{" + escapeTeX(blk.Title) + ":} ")
		w.blocks(blk.Children)
		w.b.WriteString("\\end{quote}\n\n")
	}
}

func texInline(src string) string {
	var b strings.Builder
	for _, span := range rst.ParseInline(src) {
		text := escapeTeX(span.Text)
		switch span.Kind {
		case rst.Emphasis:
			b.WriteString(`\emph{` + text + `}`)
		case rst.Strong:
			b.WriteString(`\textbf{` + text + `}`)
		case rst.Code:
			b.WriteString(`\texttt{` + text + `}`)
		case rst.Reference:
			switch {
			case isExternal(span.Target):
				b.WriteString(`\href{` + escapeURL(span.Target) + `}{` + text + `}`)
			case span.Target != "":
				b.WriteString(`\hyperref[` + span.Target + `]{\emph{` + text + `}}`)
			default:
				b.WriteString(`\hyperref[` + span.Text + `]{\emph{` + text + `}}`)
			}
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
)

func escapeTeX(s string) string {
	return texEscaper.Replace(s)
}

var urlEscaper = strings.NewReplacer(`%`, `\%`, `#`, `\#`)

func escapeURL(s string) string {
	return urlEscaper.Replace(s)
}
