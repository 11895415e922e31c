package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Catalog is an ordered, validated, read-only set of man page entries.
type Catalog struct {
	entries  []Entry
	byPage   map[string]int
	bySource map[string][]int
}

// New validates entries and builds a catalog. Every problem found is
// reported; the returned error joins one *EntryError per offending entry.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{
		entries:  make([]Entry, 0, len(entries)),
		byPage:   make(map[string]int, len(entries)),
		bySource: make(map[string][]int),
	}

	var errs []error
	for i, raw := range entries {
		e := normalize(raw)
		if err := validateEntry(e); err != nil {
			errs = append(errs, &EntryError{Index: i, PageName: e.PageName, Err: err})
			continue
		}
		if first, ok := c.byPage[e.PageName]; ok {
			errs = append(errs, &EntryError{
				Index:    i,
				PageName: e.PageName,
				Err:      fmt.Errorf("%w: already defined by entry %d", ErrDuplicatePage, first),
			})
			continue
		}
		c.byPage[e.PageName] = i
		c.bySource[e.SourceName] = append(c.bySource[e.SourceName], len(c.entries))
		c.entries = append(c.entries, e)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// byPage stored input indexes for error messages; remap to positions.
	for pos, e := range c.entries {
		c.byPage[e.PageName] = pos
	}
	return c, nil
}

// MustNew is New for compiled-in tables.
func MustNew(entries ...Entry) *Catalog {
	c, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

func normalize(e Entry) Entry {
	e = e.clone()
	e.SourceName = strings.TrimSpace(e.SourceName)
	e.PageName = strings.TrimSpace(e.PageName)
	e.Description = strings.TrimSpace(e.Description)
	authors := e.Authors[:0]
	for _, a := range e.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	e.Authors = authors
	return e
}

func validateEntry(e Entry) error {
	switch {
	case e.PageName == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	case e.SourceName == "":
		return fmt.Errorf("%w: source", ErrMissingField)
	case e.Description == "":
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	if strings.ContainsAny(e.PageName, " \t\r\n/\\") {
		return fmt.Errorf("%w: %q", ErrInvalidPageName, e.PageName)
	}
	if !e.Section.Valid() {
		return fmt.Errorf("%w: %d outside %d..%d", ErrInvalidSection, e.Section, MinSection, MaxSection)
	}
	return nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of the entries in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Lookup returns the entry with the given page name.
func (c *Catalog) Lookup(pageName string) (Entry, bool) {
	pos, ok := c.byPage[pageName]
	if !ok {
		return Entry{}, false
	}
	return c.entries[pos].clone(), true
}

// BySource returns the entries rendered from the given source document.
func (c *Catalog) BySource(sourceName string) []Entry {
	positions := c.bySource[sourceName]
	out := make([]Entry, 0, len(positions))
	for _, pos := range positions {
		out = append(out, c.entries[pos].clone())
	}
	return out
}

// Sources returns the distinct source names in declaration order.
func (c *Catalog) Sources() []string {
	seen := make(map[string]bool, len(c.bySource))
	var out []string
	for _, e := range c.entries {
		if !seen[e.SourceName] {
			seen[e.SourceName] = true
			out = append(out, e.SourceName)
		}
	}
	return out
}
