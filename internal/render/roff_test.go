package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locationtech/geogig-manpages/internal/catalog"
)

func TestManInitEntry(t *testing.T) {
	b := NewMan(testOptions(t))

	outputs, err := b.RenderPage(Page{Entry: initEntry()})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "man/man1/geogig-init.1", outputs[0].Path)

	page := string(outputs[0].Data)
	assert.Contains(t, page, `.TH "geogig-init" "1" "October 14, 2026" "2.0" "GeoGig"`+"\n")
	assert.Contains(t, page, ".SH NAME\n"+`geogig\-init \- Create and initialize a new geogig repository`+"\n")
	assert.Contains(t, page, ".SH AUTHOR\nBoundless\n")
	assert.Contains(t, page, ".SH COPYRIGHT\nOpenGeo <http://opengeo.org>\n")
}

func TestManBody(t *testing.T) {
	b := NewMan(testOptions(t))
	page := b.Render(initPage(t))

	for _, want := range []string{
		".SH SYNOPSIS\n.PP\ngeogig init [<directory>]\n",
		".PP\nCreates a repository in the \\fB.geogig\\fP directory. See geogig\\-log(1).\n",
		".PP\n\\&'Quoted' lines start with a quote.\n",
		".PP\nExample:\n.sp\n.nf\n.ft C\n$ geogig init\n\\&.hidden\n.ft P\n.fi\n",
		".SH OPTIONS\n.TP\n\\fB\\-\\-help\\fP\nShow help for this command.\n",
		".SH SEE ALSO\n.IP \\(bu 2\n\\fIgeogig\\-clone\\fP\n",
		".IP \\(bu 2\n\\fIthe wiki\\fP <http://geogig.org>\n",
		".RS 4\n.sp\n\\fBNote:\\fP\nRepositories are created in place.\n.RE\n",
	} {
		assert.Contains(t, page, want)
	}
	assert.NotContains(t, page, "documentation", "document title is not part of a man page")
	assert.True(t, strings.Index(page, ".SH NAME") < strings.Index(page, ".SH SYNOPSIS"))
	assert.True(t, strings.Index(page, ".SH SEE ALSO") < strings.Index(page, ".SH AUTHOR"))
}

func TestManAuthorFallsBackToCopyright(t *testing.T) {
	b := NewMan(testOptions(t))
	entry := catalog.Entry{SourceName: "log", PageName: "geogig-log", Description: "Show commit logs", Section: 1}

	page := b.Render(Page{Entry: entry})
	assert.Contains(t, page, ".SH AUTHOR\nOpenGeo <http://opengeo.org>\n")
}

func TestManNameLineIsNotARequest(t *testing.T) {
	b := NewMan(testOptions(t))

	page := b.Render(Page{Entry: catalog.Entry{SourceName: "rc", PageName: ".geogigrc", Description: "Per-user settings", Section: 5}})
	assert.Contains(t, page, ".SH NAME\n\\&.geogigrc \\- Per\\-user settings\n")

	page = b.Render(Page{Entry: catalog.Entry{SourceName: "log", PageName: "geogig-log", Description: "Show logs\n.so /etc/motd", Section: 1}})
	assert.Contains(t, page, "geogig\\-log \\- Show logs\n\\&.so /etc/motd\n")
	assert.NotContains(t, page, "\n.so ")
}

func TestManSectionPath(t *testing.T) {
	entry := catalog.Entry{SourceName: "cfg", PageName: "geogig.conf", Description: "Settings", Section: 5}
	assert.Equal(t, "man/man5/geogig.conf.5", ManPath(entry))
}

func TestQuoteArg(t *testing.T) {
	assert.Equal(t, `"say \(dqhi\(dq"`, quoteArg(`say "hi"`))
	assert.Equal(t, `"a\eb"`, quoteArg(`a\b`))
}

func TestEscapeRoff(t *testing.T) {
	assert.Equal(t, `\-\-all and C:\ePATH`, escapeRoff(`--all and C:\PATH`))
}
