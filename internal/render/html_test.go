package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locationtech/geogig-manpages/internal/rst"
)

func parseHTML(t *testing.T, data []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	require.NoError(t, err)
	return doc
}

func outputMap(outputs []Output) map[string][]byte {
	m := make(map[string][]byte, len(outputs))
	for _, o := range outputs {
		m[o.Path] = o.Data
	}
	return m
}

func TestHTMLInitEntry(t *testing.T) {
	b, err := NewHTML(testOptions(t))
	require.NoError(t, err)
	assert.Equal(t, "default", b.Theme().Name)

	outputs, err := b.RenderPage(Page{Entry: initEntry()})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "html/geogig-init.html", outputs[0].Path)

	doc := parseHTML(t, outputs[0].Data)
	assert.Equal(t, "geogig-init(1) — GeoGig 2.0 Man Pages", doc.Find("title").Text())
	assert.Equal(t, "geogig-init(1)", doc.Find("h1").Text())
	assert.Equal(t, "Create and initialize a new geogig repository", doc.Find("p.description").Text())
	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	assert.Equal(t, "Create and initialize a new geogig repository", desc)
	assert.Contains(t, doc.Find("footer").Text(), "Last updated on Oct 14, 2026.")
	assert.Contains(t, doc.Find("footer").Text(), "OpenGeo <http://opengeo.org>")
}

func TestHTMLBody(t *testing.T) {
	b, err := NewHTML(testOptions(t))
	require.NoError(t, err)

	outputs, err := b.RenderPage(initPage(t))
	require.NoError(t, err)
	doc := parseHTML(t, outputs[0].Data)

	var toc []string
	doc.Find("nav.toc li a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		toc = append(toc, href)
	})
	assert.Equal(t, []string{"#synopsis", "#description", "#options", "#see-also"}, toc)
	assert.Equal(t, 1, doc.Find(`h2#see-also`).Length())

	assert.Equal(t, ".geogig", doc.Find("code.literal").Text())
	assert.Equal(t, "geogig-clone", doc.Find(`a.reference.internal[href="geogig-clone.html"]`).Text())
	assert.Equal(t, "geogig-log(1)", doc.Find(`a.reference.internal[href="geogig-log.html"]`).Text())
	assert.Equal(t, "the wiki", doc.Find(`a.reference.external[href="http://geogig.org"]`).Text())
	assert.Equal(t, "Note", doc.Find("div.admonition.note p.admonition-title").Text())
	assert.Equal(t, "$ geogig init\n.hidden", doc.Find("pre.literal-block").Text())
	assert.Equal(t, "--help", doc.Find("dl.option-list dt").Text())
	assert.Equal(t, 4, doc.Find("div.section-body").Length())
}

func TestHTMLIndexShowsMasterDocument(t *testing.T) {
	opts := testOptions(t)
	master, err := rst.Parse("GeoGig Man Pages\n################\n\nReference pages for *geogig*.\n", rst.Options{})
	require.NoError(t, err)
	opts.Master = master
	b, err := NewHTML(opts)
	require.NoError(t, err)

	outputs, err := b.Finish(testPages(t, opts.Catalog))
	require.NoError(t, err)
	index := parseHTML(t, outputMap(outputs)["html/index.html"])
	assert.Equal(t, "Reference pages for geogig.", index.Find("main p").Not(".description").First().Text())
	assert.Equal(t, "geogig", index.Find("main p em").Text())
}

func TestHTMLFinish(t *testing.T) {
	opts := testOptions(t)
	b, err := NewHTML(opts)
	require.NoError(t, err)

	outputs, err := b.Finish(testPages(t, opts.Catalog))
	require.NoError(t, err)
	files := outputMap(outputs)

	require.Contains(t, files, "html/index.html")
	require.Contains(t, files, "html/genindex.html")
	require.Contains(t, files, "html/_static/geogig.css")
	assert.NotContains(t, files, "html/modindex.html")

	index := parseHTML(t, files["html/index.html"])
	assert.Equal(t, "GeoGig 2.0 Man Pages", index.Find("h1").Text())
	var names []string
	index.Find("div.toctree-wrapper li a").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})
	assert.Equal(t, []string{"geogig-init", "geogig-clone", "geogig-log"}, names)

	genindex := parseHTML(t, files["html/genindex.html"])
	assert.Equal(t, "G", genindex.Find("h2").Text())
	assert.Equal(t, "geogig-clone", genindex.Find("ul.indextable li a").First().Text())
	assert.Equal(t, 1, genindex.Find(`header a[href="genindex.html"]`).Length())
}

func TestHTMLModindex(t *testing.T) {
	opts := testOptions(t)
	opts.Settings.HTMLUseModindex = true
	opts.Settings.HTMLUseIndex = false
	b, err := NewHTML(opts)
	require.NoError(t, err)

	outputs, err := b.Finish(testPages(t, opts.Catalog))
	require.NoError(t, err)
	files := outputMap(outputs)

	assert.NotContains(t, files, "html/genindex.html")
	require.Contains(t, files, "html/modindex.html")
	modindex := parseHTML(t, files["html/modindex.html"])
	assert.Equal(t, "Section 1", modindex.Find("h2").Text())
	assert.Equal(t, 3, modindex.Find("ul.indextable li").Length())
}

func writeTheme(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static", "css"), 0o755))
	layout := `<html><head><title>{{.Title | upper}}</title></head><body>{{.Body}}</body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layout.html"), []byte(layout), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "css", "site.css"), []byte("body{}"), 0o644))
	return dir
}

func TestHTMLThemeFromRelativePath(t *testing.T) {
	opts := testOptions(t)
	themeDir := writeTheme(t, filepath.Join(opts.BaseDir, "themes"), "geogig_docs")
	opts.ThemePath = []string{"themes"}

	b, err := NewHTML(opts)
	require.NoError(t, err)
	assert.Equal(t, themeDir, b.Theme().Dir)

	outputs, err := b.RenderPage(Page{Entry: initEntry()})
	require.NoError(t, err)
	assert.Contains(t, string(outputs[0].Data), "<title>GEOGIG-INIT(1)</title>")

	finished, err := b.Finish(nil)
	require.NoError(t, err)
	files := outputMap(finished)
	assert.Equal(t, []byte("body{}"), files["html/_static/css/site.css"])
}

func TestHTMLThemeFromEnvironmentPath(t *testing.T) {
	opts := testOptions(t)
	extra := t.TempDir()
	themeDir := writeTheme(t, extra, "geogig_docs")
	opts.ThemePath = opts.Settings.EffectiveThemePath(func(string) (string, bool) { return extra, true })

	b, err := NewHTML(opts)
	require.NoError(t, err)
	assert.Equal(t, themeDir, b.Theme().Dir)
}

func TestHTMLBrokenThemeLayout(t *testing.T) {
	opts := testOptions(t)
	dir := filepath.Join(opts.BaseDir, "geogig_docs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layout.html"), []byte("{{.Title"), 0o644))
	opts.ThemePath = []string{opts.BaseDir}

	_, err := NewHTML(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse theme geogig_docs layout")
}
