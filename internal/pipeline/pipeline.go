// Package pipeline runs a documentation build: it loads the page
// sources, renders every builder in parallel, writes the outputs and
// refreshes the search index and sitemap.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/locationtech/geogig-manpages/internal/catalog"
	"github.com/locationtech/geogig-manpages/internal/config"
	"github.com/locationtech/geogig-manpages/internal/logging"
	"github.com/locationtech/geogig-manpages/internal/render"
	"github.com/locationtech/geogig-manpages/internal/rst"
	"github.com/locationtech/geogig-manpages/internal/search"
	"github.com/locationtech/geogig-manpages/internal/sitemap"
	"github.com/locationtech/geogig-manpages/internal/storage"
)

// DefaultBuilders are rendered when Runner.Builders is empty.
var DefaultBuilders = []string{render.BuilderMan, render.BuilderHTML}

// Build stages reported by Status.
const (
	StageIdle      = "idle"
	StageLoading   = "loading"
	StageRendering = "rendering"
	StageWriting   = "writing"
	StageIndexing  = "indexing"
	StageDone      = "done"
	StageError     = "error"
)

// Status is a snapshot of a running or finished build.
type Status struct {
	Stage    string    `json:"stage"`
	Total    int       `json:"total"`
	Done     int       `json:"done"`
	Started  time.Time `json:"started,omitzero"`
	Finished time.Time `json:"finished,omitzero"`
	Error    string    `json:"error,omitempty"`
}

type Runner struct {
	Catalog  *catalog.Catalog
	Settings config.Settings
	// SourceDir holds the page sources. When empty, pages are rendered
	// from catalog metadata alone.
	SourceDir string
	// BaseDir resolves relative theme and logo paths.
	BaseDir   string
	ThemePath []string
	Storage   *storage.FSStorage
	Indexer   search.Indexer
	Linter    *Linter
	Builders  []string
	// Jobs bounds concurrent page renders; zero means one per builder.
	Jobs   int
	Gzip   bool
	Now    func() time.Time
	Logger *slog.Logger

	mu     sync.Mutex
	status Status
}

type rendered struct {
	builder string
	entry   *catalog.Entry
	outputs []render.Output
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary, err := r.run(ctx)
	r.mu.Lock()
	r.status.Finished = r.now()
	if err != nil {
		r.status.Stage = StageError
		r.status.Error = err.Error()
	} else {
		r.status.Stage = StageDone
	}
	r.mu.Unlock()
	return summary, err
}

// Status returns the progress of the current or last build.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Stage == "" {
		return Status{Stage: StageIdle}
	}
	return r.status
}

func (r *Runner) run(ctx context.Context) (Summary, error) {
	var summary Summary
	if r.Catalog == nil || r.Storage == nil {
		return summary, errors.New("pipeline runner missing dependencies")
	}
	start := r.now()
	r.mu.Lock()
	r.status = Status{Stage: StageLoading, Started: start}
	r.mu.Unlock()

	logger := r.logger()
	settings := r.Settings
	if err := settings.Validate(); err != nil {
		return summary, fmt.Errorf("validate settings: %w", err)
	}

	pages, master, err := r.loadPages(ctx, &settings, &summary)
	if err != nil {
		return summary, err
	}
	summary.Pages = len(pages)

	results, err := r.render(ctx, &settings, pages, master, start)
	if err != nil {
		return summary, err
	}

	r.setStage(StageWriting, len(results))
	manPages, htmlPages, err := r.write(ctx, results, &summary)
	if err != nil {
		return summary, err
	}

	if r.Linter != nil && len(manPages) > 0 {
		summary.LintIssues = r.lint(ctx, results)
	}

	r.setStage(StageIndexing, len(pages))
	if r.Indexer != nil {
		n, err := r.index(ctx, pages, manPages, htmlPages, results)
		summary.Indexed = n
		if err != nil {
			return summary, err
		}
	}

	if settings.HTMLBaseURL != "" && len(htmlPages) > 0 {
		gen := &sitemap.SitemapGenerator{
			HTMLDir: r.Storage.Path("html"),
			SiteURL: settings.HTMLBaseURL,
			Logger:  logger,
		}
		n, err := gen.Generate(ctx)
		if err != nil {
			// The manual is usable without a sitemap.
			logger.Error("sitemap generation failed", "error", err)
		}
		summary.SitemapURLs = n
	}

	summary.Duration = r.now().Sub(start)
	logger.Info("build finished",
		"pages", summary.Pages,
		"outputs", summary.Outputs,
		"written", summary.Written,
		"skipped", summary.Skipped,
		"size", humanize.Bytes(uint64(summary.Bytes)),
		"lint_issues", summary.LintIssues,
		"duration", summary.Duration.Round(time.Millisecond))
	return summary, nil
}

func (r *Runner) loadPages(ctx context.Context, s *config.Settings, summary *Summary) ([]render.Page, *rst.Document, error) {
	logger := r.logger()
	var docs map[string]*rst.Document
	if r.SourceDir != "" {
		var err error
		docs, err = LoadSources(ctx, r.SourceDir, r.Catalog, s)
		if err != nil {
			return nil, nil, fmt.Errorf("load sources: %w", err)
		}
		orphans, err := FindOrphans(r.SourceDir, r.Catalog, s)
		if err != nil {
			return nil, nil, err
		}
		for _, name := range orphans {
			logger.Warn("source not referenced by any page", "source", name)
		}
		summary.Orphans = orphans
	}

	entries := r.Catalog.Entries()
	pages := make([]render.Page, 0, len(entries))
	for _, e := range entries {
		pages = append(pages, render.Page{Entry: e, Doc: docs[e.SourceName]})
	}
	return pages, docs[s.MasterDoc], nil
}

// render runs every page through every builder. Nothing is returned
// unless all of them succeed.
func (r *Runner) render(ctx context.Context, s *config.Settings, pages []render.Page, master *rst.Document, now time.Time) ([]rendered, error) {
	names := r.Builders
	if len(names) == 0 {
		names = DefaultBuilders
	}
	opts := render.Options{
		Settings:  *s,
		Catalog:   r.Catalog,
		Now:       now,
		BaseDir:   r.BaseDir,
		ThemePath: r.ThemePath,
		Master:    master,
		Logger:    r.logger(),
	}
	builders := make([]render.Builder, 0, len(names))
	for _, name := range names {
		b, err := render.New(name, opts)
		if err != nil {
			return nil, &RenderError{Builder: name, Err: err}
		}
		builders = append(builders, b)
	}

	r.setStage(StageRendering, len(builders)*(len(pages)+1))
	perBuilder := len(pages) + 1
	results := make([]rendered, len(builders)*perBuilder)

	jobs := r.Jobs
	if jobs <= 0 {
		jobs = len(builders)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for bi, b := range builders {
		for pi := range pages {
			slot := bi*perBuilder + pi
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				entry := pages[pi].Entry
				outputs, err := b.RenderPage(pages[pi])
				if err != nil {
					return &RenderError{Builder: b.Name(), Page: entry.PageName, Err: err}
				}
				results[slot] = rendered{builder: b.Name(), entry: &entry, outputs: outputs}
				r.advance()
				return nil
			})
		}
		slot := bi*perBuilder + len(pages)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs, err := b.Finish(pages)
			if err != nil {
				return &RenderError{Builder: b.Name(), Err: err}
			}
			results[slot] = rendered{builder: b.Name(), outputs: outputs}
			r.advance()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// write stores every output and returns the man and HTML paths written
// per page name.
func (r *Runner) write(ctx context.Context, results []rendered, summary *Summary) (map[string]string, map[string]string, error) {
	logger := r.logger()
	manPages := make(map[string]string)
	htmlPages := make(map[string]string)

	put := func(p string, data []byte) error {
		written, err := r.Storage.Write(ctx, p, data)
		if err != nil {
			return err
		}
		summary.Outputs++
		if written {
			summary.Written++
			summary.Bytes += int64(len(data))
			logger.Debug("wrote output", "path", p, "size", humanize.Bytes(uint64(len(data))))
		} else {
			summary.Skipped++
			logger.Debug("skipping unchanged output", "path", p)
		}
		return nil
	}

	for _, res := range results {
		for _, out := range res.outputs {
			if err := put(out.Path, out.Data); err != nil {
				return nil, nil, err
			}
			if res.entry == nil {
				continue
			}
			switch res.builder {
			case render.BuilderMan:
				manPages[res.entry.PageName] = out.Path
				if r.Gzip {
					gz, err := gzipBytes(out.Path, out.Data)
					if err != nil {
						return nil, nil, err
					}
					if err := put(out.Path+".gz", gz); err != nil {
						return nil, nil, err
					}
				}
			case render.BuilderHTML:
				htmlPages[res.entry.PageName] = out.Path
			}
		}
		r.advance()
	}
	return manPages, htmlPages, nil
}

// lint checks every man page and returns the number of issues found.
// Lint problems never fail the build.
func (r *Runner) lint(ctx context.Context, results []rendered) int {
	logger := r.logger()
	var issues int
	for _, res := range results {
		if res.builder != render.BuilderMan {
			continue
		}
		for _, out := range res.outputs {
			found, err := r.Linter.Lint(ctx, out.Path, out.Data)
			if errors.Is(err, ErrLinterNotFound) {
				logger.Warn("skipping lint", "error", err)
				return issues
			}
			if err != nil {
				logger.Warn("lint failed", "error", &LintError{Err: err})
				continue
			}
			for _, issue := range found {
				logger.Warn("lint", "issue", issue)
			}
			issues += len(found)
		}
	}
	return issues
}

func (r *Runner) index(ctx context.Context, pages []render.Page, manPages, htmlPages map[string]string, results []rendered) (int, error) {
	htmlData := make(map[string][]byte)
	for _, res := range results {
		if res.builder != render.BuilderHTML || res.entry == nil {
			continue
		}
		for _, out := range res.outputs {
			htmlData[res.entry.PageName] = out.Data
		}
	}

	var n int
	for _, p := range pages {
		e := p.Entry
		doc := search.Document{
			Name:        e.PageName,
			Section:     int(e.Section),
			Description: e.Description,
			ManPath:     manPages[e.PageName],
			Content:     e.Description,
		}
		if htmlPath, ok := htmlPages[e.PageName]; ok {
			doc.Path = htmlPath
			text, err := search.ExtractText(htmlData[e.PageName])
			if err != nil {
				return n, fmt.Errorf("extract text of %s: %w", htmlPath, err)
			}
			doc.Content = text
		} else if p.Doc != nil {
			doc.Content = plainText(p.Doc.Blocks)
		}
		if err := r.Indexer.IndexPage(ctx, doc); err != nil {
			return n, err
		}
		n++
		r.advance()
	}
	return n, nil
}

// plainText flattens parsed blocks for indexing when no HTML was built.
func plainText(blocks []rst.Block) string {
	var parts []string
	for _, blk := range blocks {
		if blk.Text != "" {
			parts = append(parts, rst.PlainText(blk.Text))
		}
		for _, item := range blk.Items {
			parts = append(parts, rst.PlainText(item.Term), plainText(item.Body))
		}
		if len(blk.Children) > 0 {
			parts = append(parts, plainText(blk.Children))
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func (r *Runner) setStage(stage string, total int) {
	r.mu.Lock()
	r.status.Stage = stage
	r.status.Total = total
	r.status.Done = 0
	r.mu.Unlock()
}

func (r *Runner) advance() {
	r.mu.Lock()
	r.status.Done++
	r.mu.Unlock()
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}
