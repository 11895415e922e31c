package render

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locationtech/geogig-manpages/internal/catalog"
	"github.com/locationtech/geogig-manpages/internal/config"
	"github.com/locationtech/geogig-manpages/internal/rst"
)

const initSource = `geogig-init documentation
#########################

SYNOPSIS
********

geogig init [<directory>]

DESCRIPTION
***********

Creates a repository in the ` + "``.geogig``" + ` directory. See geogig-log(1).

'Quoted' lines start with a quote.

Example::

    $ geogig init
    .hidden

OPTIONS
*******

--help    Show help for this command.

SEE ALSO
********

* :ref:` + "`geogig-clone`" + `
* ` + "`the wiki <http://geogig.org>`_" + `

.. note:: Repositories are created in place.
`

var buildTime = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

func initEntry() catalog.Entry {
	return catalog.Entry{
		SourceName:  "init",
		PageName:    "geogig-init",
		Description: "Create and initialize a new geogig repository",
		Authors:     []string{"Boundless"},
		Section:     1,
	}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		initEntry(),
		catalog.Entry{SourceName: "clone", PageName: "geogig-clone", Description: "Clone a repository into a new directory", Section: 1},
		catalog.Entry{SourceName: "log", PageName: "geogig-log", Description: "Show commit logs", Section: 1},
	)
	require.NoError(t, err)
	return c
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Settings: config.Defaults(),
		Catalog:  testCatalog(t),
		Now:      buildTime,
		BaseDir:  t.TempDir(),
	}
}

func initPage(t *testing.T) Page {
	t.Helper()
	doc, err := rst.Parse(initSource, rst.Options{})
	require.NoError(t, err)
	return Page{Entry: initEntry(), Doc: doc}
}

func testPages(t *testing.T, c *catalog.Catalog) []Page {
	t.Helper()
	pages := []Page{initPage(t)}
	for _, e := range c.Entries()[1:] {
		pages = append(pages, Page{Entry: e})
	}
	return pages
}

func TestToday(t *testing.T) {
	s := config.Defaults()
	assert.Equal(t, "October 14, 2026", Today(&s, buildTime))

	s.Today = "the first day"
	assert.Equal(t, "the first day", Today(&s, buildTime))
}

func TestLastUpdated(t *testing.T) {
	s := config.Defaults()
	assert.Equal(t, "Oct 14, 2026", LastUpdated(&s, buildTime))

	s.HTMLLastUpdatedFmt = ""
	assert.Empty(t, LastUpdated(&s, buildTime))
}

func TestNewBuilders(t *testing.T) {
	opts := testOptions(t)
	for _, name := range []string{BuilderMan, BuilderHTML, BuilderLaTeX} {
		b, err := New(name, opts)
		require.NoError(t, err, name)
		assert.Equal(t, name, b.Name())
	}

	_, err := New("epub", opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBuilder))
}
