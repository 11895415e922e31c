// Package web previews a built manual over HTTP: the HTML pages, the
// raw man pages and a search API backed by the whatis index.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/locationtech/geogig-manpages/internal/catalog"
	"github.com/locationtech/geogig-manpages/internal/pipeline"
	"github.com/locationtech/geogig-manpages/internal/search"
)

//go:embed templates/search.html
var webAssets embed.FS

const shutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	// OutputDir is the build output root holding html/ and man/.
	OutputDir string
	// IndexPath is the whatis database; it defaults to
	// OutputDir/whatis.db.
	IndexPath string
	// SiteURL is the published location of the HTML manual, used in
	// robots.txt.
	SiteURL string
	Project string
	// Status reports build progress on /api/status when set.
	Status func() pipeline.Status
}

type Server struct {
	opts       Options
	logger     *slog.Logger
	searchPage *template.Template

	mu     sync.Mutex
	search *search.SQLiteSearcher
}

type searchView struct {
	Project      string
	Query        string
	Total        uint64
	ResultGroups []searchGroup
	SearchError  bool
}

type searchGroup struct {
	Section int
	Label   string
	Results []searchResultView
}

type searchResultView struct {
	Name        string
	Description string
	Href        string
	Section     int
}

func NewServer(opts Options, logger *slog.Logger) *Server {
	if opts.IndexPath == "" {
		opts.IndexPath = filepath.Join(opts.OutputDir, search.DefaultFile)
	}
	if opts.Project == "" {
		opts.Project = "GeoGig"
	}
	s := &Server{
		opts:       opts,
		logger:     logger,
		searchPage: template.Must(template.ParseFS(webAssets, "templates/search.html")),
	}
	if _, err := s.searcher(); err != nil {
		logger.Warn("search index unavailable", "error", err)
	}
	return s
}

// Handler returns the routes of the preview server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.Compress(5, "text/html", "text/css", "text/plain", "application/json"))

	r.Get("/healthz", s.handleHealth)
	r.Get("/robots.txt", s.handleRobotsTxt)
	r.Get("/llms.txt", s.handleLlmsTxt)
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/whatis/{name}", s.handleWhatis)
	r.Get("/api/status", s.handleStatus)
	r.Get("/search", s.handleSearchPage)
	r.Get("/man/{page}", s.handleManpage)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/html/", http.StatusFound)
	})

	htmlDir := filepath.Join(s.opts.OutputDir, "html")
	files := http.StripPrefix("/html/", http.FileServer(http.Dir(htmlDir)))
	r.Handle("/html/_static/*", staticCacheHandler(files))
	r.Handle("/html/*", s.htmlHandler(files))
	r.NotFound(s.handleNotFound)
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == nil {
		return nil
	}
	err := s.search.Close()
	s.search = nil
	return err
}

// searcher opens the index on first use so a server started before the
// first build picks it up once it exists.
func (s *Server) searcher() (*search.SQLiteSearcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search != nil {
		return s.search, nil
	}
	searcher, err := search.NewSQLiteSearcher(s.opts.IndexPath)
	if err != nil {
		return nil, err
	}
	s.search = searcher
	return searcher, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Status == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no build running"})
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Status())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	searcher, err := s.searcher()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "search index unavailable",
		})
		return
	}

	query := r.URL.Query().Get("q")
	section := parseIntQuery(r, "section", 0)
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	results, err := searcher.Search(r.Context(), query, section, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleWhatis(w http.ResponseWriter, r *http.Request) {
	searcher, err := s.searcher()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "search index unavailable",
		})
		return
	}
	results, err := searcher.Whatis(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(results) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "nothing appropriate"})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	view := searchView{
		Project: s.opts.Project,
		Query:   r.URL.Query().Get("q"),
	}

	if view.Query != "" {
		searcher, err := s.searcher()
		if err != nil {
			view.SearchError = true
		} else {
			results, err := searcher.Search(r.Context(), view.Query, 0, 50, 0)
			if err != nil {
				view.SearchError = true
			} else {
				view.Total = results.Total
				view.ResultGroups = groupSearchResults(results.Results)
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.searchPage.Execute(w, view); err != nil {
		s.logger.Error("render error", "template", "search", "error", err)
	}
}

// groupSearchResults groups results by manual section, keeping the
// order in which each section first appears.
func groupSearchResults(results []search.Result) []searchGroup {
	var order []int
	groups := map[int]*searchGroup{}
	for _, r := range results {
		g, ok := groups[r.Section]
		if !ok {
			g = &searchGroup{Section: r.Section, Label: "Section " + strconv.Itoa(r.Section)}
			groups[r.Section] = g
			order = append(order, r.Section)
		}
		href := "/" + r.Path
		if r.Path == "" {
			href = "/man/" + r.Name + "." + strconv.Itoa(r.Section)
		}
		g.Results = append(g.Results, searchResultView{
			Name:        r.Name,
			Description: r.Description,
			Href:        href,
			Section:     r.Section,
		})
	}

	out := make([]searchGroup, 0, len(order))
	for _, section := range order {
		out = append(out, *groups[section])
	}
	return out
}

// handleManpage serves roff source for "name.section", from the plain
// file or its gzipped sibling.
func (s *Server) handleManpage(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	idx := strings.LastIndex(page, ".")
	if idx <= 0 {
		s.handleNotFound(w, r)
		return
	}
	section, err := catalog.ParseSection(page[idx+1:])
	if err != nil || strings.ContainsAny(page, `/\`) {
		s.handleNotFound(w, r)
		return
	}
	paths := pipeline.PathsFor(page[:idx], int(section))

	for _, rel := range []string{paths.ManPath, paths.GzipPath} {
		reader, cleanup, err := pipeline.OpenMaybeGzipped(filepath.Join(s.opts.OutputDir, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `inline; filename="`+path.Base(paths.ManPath)+`"`)
		_, _ = io.Copy(w, reader)
		_ = cleanup()
		return
	}
	s.handleNotFound(w, r)
}

// htmlHandler serves the built HTML files. "/html/<name>.txt" returns
// the readable text of "<name>.html" instead.
func (s *Server) htmlHandler(files http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/html/")
		if name, ok := strings.CutSuffix(rel, ".txt"); ok {
			s.servePageText(w, r, name)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func (s *Server) servePageText(w http.ResponseWriter, r *http.Request, name string) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		s.handleNotFound(w, r)
		return
	}
	raw, err := os.ReadFile(filepath.Join(s.opts.OutputDir, "html", name+".html"))
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	text, err := search.ExtractText(raw)
	if err != nil {
		http.Error(w, "cannot extract text", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, text+"\n")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	http.Error(w, "404 page not found", http.StatusNotFound)
}

func (s *Server) handleRobotsTxt(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "User-agent: *\nAllow: /\nDisallow: /api/\nDisallow: /healthz\n")
	if s.opts.SiteURL != "" {
		_, _ = fmt.Fprintf(w, "\nSitemap: %s/sitemap.xml\n", strings.TrimSuffix(s.opts.SiteURL, "/"))
	}
}

func (s *Server) handleLlmsTxt(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, `# %[1]s Man Pages

> Reference pages for the %[1]s command line, rendered as HTML and roff.

## Content Structure

- /html/{name}.html: a command page
- /html/{name}.txt: the same page as plain text
- /man/{name}.{section}: the roff source
- /search?q={query}: search across all pages

## API

- GET /api/search?q={query}&section={n}&limit={n}&offset={n}
  Returns JSON with fields: total, results (array of {name, section, description, path, man_path})
- GET /api/whatis/{name}
`, s.opts.Project)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher, delegating to the underlying writer.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", path.Clean(r.URL.Path),
			"status", rw.statusCode,
			"duration", time.Since(start),
		)
	})
}

func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		next.ServeHTTP(w, r)
	})
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
