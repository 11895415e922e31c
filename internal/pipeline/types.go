package pipeline

import (
	"fmt"
	"time"
)

// SourceError reports a page source that could not be read or parsed.
type SourceError struct {
	Page string
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s for %s: %v", e.Path, e.Page, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// RenderError reports a builder failure for one page, or for the
// builder's index output when Page is empty.
type RenderError struct {
	Builder string
	Page    string
	Err     error
}

func (e *RenderError) Error() string {
	if e.Page == "" {
		return fmt.Sprintf("%s builder: %v", e.Builder, e.Err)
	}
	return fmt.Sprintf("%s builder, page %s: %v", e.Builder, e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// LintError wraps a man page lint failure so callers can treat it as
// non-fatal.
type LintError struct{ Err error }

func (e *LintError) Error() string { return e.Err.Error() }
func (e *LintError) Unwrap() error { return e.Err }

// Summary describes a finished build.
type Summary struct {
	Pages   int
	Outputs int
	Written int
	Skipped int
	// Bytes counts the bytes of written files only.
	Bytes       int64
	Orphans     []string
	LintIssues  int
	Indexed     int
	SitemapURLs int
	Duration    time.Duration
}
