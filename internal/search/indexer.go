// Package search keeps a whatis index of the built pages and answers
// apropos queries against it.
package search

import (
	"context"
	"strconv"
)

// Indexer abstracts search indexing so the pipeline package does not depend
// on a specific search implementation.
type Indexer interface {
	IndexPage(ctx context.Context, doc Document) error
	Close() error
}

// Document is one page to be indexed.
type Document struct {
	Name        string
	Section     int
	Description string
	// Path is the page's HTML path, ManPath its roff path. Either may be
	// empty when that builder did not run.
	Path    string
	ManPath string
	Content string
}

// Title returns name(section).
func (d Document) Title() string {
	return d.Name + "(" + strconv.Itoa(d.Section) + ")"
}
