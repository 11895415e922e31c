package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoGigPageNamesUnique(t *testing.T) {
	c := GeoGig()
	seen := map[string]bool{}
	for _, e := range c.Entries() {
		assert.False(t, seen[e.PageName], "duplicate %s", e.PageName)
		seen[e.PageName] = true
	}
	assert.Equal(t, 37, c.Len())
}

func TestGeoGigSectionsNormalized(t *testing.T) {
	for _, e := range GeoGig().Entries() {
		assert.True(t, e.Section >= 1 && e.Section <= 9, "%s section %d", e.PageName, e.Section)
		assert.Equal(t, Section(1), e.Section, e.PageName)
	}
}

func TestGeoGigAuthorsWellFormed(t *testing.T) {
	for _, e := range GeoGig().Entries() {
		require.NotEmpty(t, e.Authors, e.PageName)
		for _, a := range e.Authors {
			assert.Equal(t, strings.Count(a, "<"), strings.Count(a, ">"), "%s author %q", e.PageName, a)
		}
	}
}

func TestInitEntryTitle(t *testing.T) {
	c, err := New(Entry{
		SourceName:  "init",
		PageName:    "geogig-init",
		Description: "Create and initialize a new geogig repository",
		Authors:     []string{"Boundless"},
		Section:     1,
	})
	require.NoError(t, err)

	e, ok := c.Lookup("geogig-init")
	require.True(t, ok)
	assert.Equal(t, "geogig-init(1)", e.Title())
	assert.Equal(t, "geogig-init.1", e.FileName())
	assert.Equal(t, "Create and initialize a new geogig repository", e.Description)
}

func TestNewRejectsDuplicatePage(t *testing.T) {
	_, err := New(
		Entry{SourceName: "log", PageName: "geogig-log", Description: "Show commit logs", Section: 1},
		Entry{SourceName: "status", PageName: "geogig-status", Description: "Show status", Section: 1},
		Entry{SourceName: "log2", PageName: "geogig-log", Description: "Show commit logs again", Section: 1},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicatePage)

	var ee *EntryError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 2, ee.Index)
	assert.Equal(t, "geogig-log", ee.PageName)
	assert.Contains(t, err.Error(), "catalog entry 2 (geogig-log)")
	assert.Contains(t, err.Error(), "already defined by entry 0")
}

func TestNewReportsEveryBadEntry(t *testing.T) {
	_, err := New(
		Entry{SourceName: "a", PageName: "", Description: "x", Section: 1},
		Entry{SourceName: "b", PageName: "geogig-b", Description: "x", Section: 0},
		Entry{SourceName: "c", PageName: "geogig c", Description: "x", Section: 1},
		Entry{SourceName: "d", PageName: "geogig-d", Description: "", Section: 1},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.ErrorIs(t, err, ErrInvalidSection)
	assert.ErrorIs(t, err, ErrInvalidPageName)

	msg := err.Error()
	for _, want := range []string{"catalog entry 0", "catalog entry 1 (geogig-b)", "catalog entry 2 (geogig c)", "catalog entry 3 (geogig-d)"} {
		assert.Contains(t, msg, want)
	}
}

func TestNewTrimsFields(t *testing.T) {
	c, err := New(Entry{
		SourceName:  " add ",
		PageName:    "geogig-add\n",
		Description: "  Stage changes ",
		Authors:     []string{" OpenGeo ", ""},
		Section:     1,
	})
	require.NoError(t, err)

	e, ok := c.Lookup("geogig-add")
	require.True(t, ok)
	assert.Equal(t, "add", e.SourceName)
	assert.Equal(t, "Stage changes", e.Description)
	assert.Equal(t, []string{"OpenGeo"}, e.Authors)
}

func TestEntriesReturnsCopies(t *testing.T) {
	c := GeoGig()
	entries := c.Entries()
	entries[0].PageName = "mutated"
	entries[0].Authors[0] = "mutated"

	e, ok := c.Lookup("geogig")
	require.True(t, ok)
	assert.Equal(t, DefaultAuthor, e.Authors[0])
	assert.Equal(t, "geogig", c.Entries()[0].PageName)
}

func TestBySourceAndSources(t *testing.T) {
	c := GeoGig()
	got := c.BySource("remoteadd")
	require.Len(t, got, 1)
	assert.Equal(t, "geogig-remote-add", got[0].PageName)
	assert.Empty(t, c.BySource("missing"))

	sources := c.Sources()
	assert.Equal(t, "geogig", sources[0])
	assert.Len(t, sources, c.Len())
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    Section
		wantErr bool
	}{
		{"int", 1, 1, false},
		{"string", "1", 1, false},
		{"padded string", " 8 ", 8, false},
		{"int64", int64(5), 5, false},
		{"integral float", 3.0, 3, false},
		{"section", Section(9), 9, false},
		{"zero", 0, 0, true},
		{"ten", "10", 0, true},
		{"negative", -1, 0, true},
		{"fraction", 1.5, 0, true},
		{"suffix", "3p", 0, true},
		{"empty", "", 0, true},
		{"nil", nil, 0, true},
		{"bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSection(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidSection))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
