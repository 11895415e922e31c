// Package render turns catalog entries and their parsed sources into
// man pages, an HTML manual and LaTeX documents.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	strftime "github.com/ncruces/go-strftime"

	"github.com/locationtech/geogig-manpages/internal/catalog"
	"github.com/locationtech/geogig-manpages/internal/config"
	"github.com/locationtech/geogig-manpages/internal/logging"
	"github.com/locationtech/geogig-manpages/internal/rst"
)

// Builder names.
const (
	BuilderMan   = "man"
	BuilderHTML  = "html"
	BuilderLaTeX = "latex"
)

// ErrUnknownBuilder is returned by New for an unsupported builder name.
var ErrUnknownBuilder = errors.New("unknown builder")

// Page is one catalog entry ready for rendering.
type Page struct {
	Entry catalog.Entry
	// Doc is nil when the page is rendered from catalog metadata alone.
	Doc *rst.Document
}

// Output is a rendered file. Path is slash-separated and relative to the
// output root.
type Output struct {
	Path string
	Data []byte
}

// Options are shared by all builders.
type Options struct {
	Settings config.Settings
	Catalog  *catalog.Catalog
	Now      time.Time
	// BaseDir resolves relative theme and logo paths.
	BaseDir string
	// ThemePath is the theme search path, usually
	// Settings.EffectiveThemePath(os.LookupEnv).
	ThemePath []string
	// Master is the parsed master document shown on the HTML index page,
	// or nil.
	Master *rst.Document
	Logger *slog.Logger
}

// Builder renders one output format. RenderPage may be called
// concurrently; Finish is called once after every page is rendered.
type Builder interface {
	Name() string
	RenderPage(page Page) ([]Output, error)
	Finish(pages []Page) ([]Output, error)
}

// New returns the builder called name.
func New(name string, opts Options) (Builder, error) {
	switch name {
	case BuilderMan:
		return NewMan(opts), nil
	case BuilderHTML:
		b, err := NewHTML(opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BuilderLaTeX:
		b, err := NewLaTeX(opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBuilder, name)
	}
}

// Today returns the date printed in page headers: the today setting
// when present, otherwise now formatted with today_fmt.
func Today(s *config.Settings, now time.Time) string {
	if s.Today != "" {
		return s.Today
	}
	return strftime.Format(s.TodayFmt, now)
}

// LastUpdated formats now with html_last_updated_fmt, or returns "" when
// the footer is disabled.
func LastUpdated(s *config.Settings, now time.Time) string {
	if s.HTMLLastUpdatedFmt == "" {
		return ""
	}
	return strftime.Format(s.HTMLLastUpdatedFmt, now)
}

func (o *Options) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || o.BaseDir == "" {
		return path
	}
	return filepath.Join(o.BaseDir, path)
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// authors returns the entry's authors, or the copyright holder when the
// entry names none.
func authors(e catalog.Entry, s *config.Settings) []string {
	if len(e.Authors) > 0 {
		return e.Authors
	}
	if s.Copyright != "" {
		return []string{s.Copyright}
	}
	return nil
}
