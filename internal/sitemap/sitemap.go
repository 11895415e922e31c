// Package sitemap writes sitemap XML for the built HTML manual.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/renameio/v2"
)

const (
	maxSitemapURLs = 50000
	sitemapNS      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	// FileName is the sitemap, or sitemap index, written at the HTML root.
	FileName = "sitemap.xml"
)

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	XMLNS    string            `xml:"xmlns,attr"`
	Sitemaps []sitemapIndexRef `xml:"sitemap"`
}

type sitemapIndexRef struct {
	XMLName xml.Name `xml:"sitemap"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

// SitemapGenerator creates sitemap XML files by walking the HTML output.
type SitemapGenerator struct {
	// HTMLDir is the directory holding the built pages.
	HTMLDir string
	// SiteURL is the published location of HTMLDir, e.g.
	// "https://geogig.org/docs/man".
	SiteURL string
	// MaxURLs caps the URLs per file; zero means the protocol limit.
	MaxURLs int
	Logger  *slog.Logger
}

// Generate writes sitemap.xml into HTMLDir and returns the number of
// pages listed. Above MaxURLs the pages are split over numbered files
// and sitemap.xml becomes their index.
func (g *SitemapGenerator) Generate(ctx context.Context) (int, error) {
	urls, err := g.collect(ctx)
	if err != nil {
		return 0, err
	}

	maxURLs := g.MaxURLs
	if maxURLs <= 0 {
		maxURLs = maxSitemapURLs
	}
	chunks := splitURLs(urls, maxURLs)
	if len(chunks) == 1 {
		if err := g.writeSitemap(filepath.Join(g.HTMLDir, FileName), chunks[0]); err != nil {
			return 0, fmt.Errorf("write sitemap: %w", err)
		}
		return len(urls), nil
	}

	now := time.Now().UTC().Format("2006-01-02")
	var refs []sitemapIndexRef
	for i, chunk := range chunks {
		name := fmt.Sprintf("sitemap-%d.xml", i+1)
		if err := g.writeSitemap(filepath.Join(g.HTMLDir, name), chunk); err != nil {
			return 0, fmt.Errorf("write sitemap %s: %w", name, err)
		}
		refs = append(refs, sitemapIndexRef{Loc: g.loc(name), LastMod: now})
	}
	idx := sitemapIndex{XMLNS: sitemapNS, Sitemaps: refs}
	if err := writeXML(filepath.Join(g.HTMLDir, FileName), idx); err != nil {
		return 0, fmt.Errorf("write sitemap index: %w", err)
	}
	if g.Logger != nil {
		g.Logger.Info("sitemap split", "files", len(chunks), "urls", len(urls))
	}
	return len(urls), nil
}

func (g *SitemapGenerator) collect(ctx context.Context) ([]sitemapURL, error) {
	fsys := os.DirFS(g.HTMLDir)
	matches, err := doublestar.Glob(fsys, "**/*.html")
	if err != nil {
		return nil, fmt.Errorf("list html pages: %w", err)
	}
	slices.Sort(matches)

	var urls []sitemapURL
	for _, name := range matches {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if strings.HasPrefix(name, "_") {
			continue
		}
		var lastmod string
		if info, err := fs.Stat(fsys, name); err == nil {
			lastmod = info.ModTime().UTC().Format("2006-01-02")
		}
		loc := g.loc(name)
		if name == "index.html" {
			loc = g.loc("")
		}
		urls = append(urls, sitemapURL{Loc: loc, LastMod: lastmod})
	}
	return urls, nil
}

func (g *SitemapGenerator) loc(name string) string {
	return strings.TrimSuffix(g.SiteURL, "/") + "/" + name
}

func (g *SitemapGenerator) writeSitemap(path string, urls []sitemapURL) error {
	urlset := sitemapURLSet{
		XMLNS: sitemapNS,
		URLs:  urls,
	}
	return writeXML(path, urlset)
}

func writeXML(path string, v any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return renameio.WriteFile(path, buf.Bytes(), 0o644)
}

func splitURLs(urls []sitemapURL, maxPerFile int) [][]sitemapURL {
	if len(urls) <= maxPerFile {
		return [][]sitemapURL{urls}
	}
	var chunks [][]sitemapURL
	for i := 0; i < len(urls); i += maxPerFile {
		end := min(i+maxPerFile, len(urls))
		chunks = append(chunks, urls[i:end])
	}
	return chunks
}
