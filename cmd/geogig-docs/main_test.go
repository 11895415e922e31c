package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/locationtech/geogig-manpages/internal/catalog"
	"github.com/locationtech/geogig-manpages/internal/config"
	"github.com/locationtech/geogig-manpages/internal/search"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&rootOptions{})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	// A settings file that does not exist keeps the defaults.
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestList(t *testing.T) {
	out, err := run(t, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 37)
	assert.Contains(t, out, "geogig-init(1)")
	assert.Contains(t, out, "geogig-init.1")
	assert.Contains(t, out, "Create and initialize a new geogig repository")
}

func TestListYAMLRoundTrip(t *testing.T) {
	out, err := run(t, "list", "--yaml")
	require.NoError(t, err)
	cat, err := catalog.Decode(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, catalog.GeoGig().Entries(), cat.Entries())
}

func TestListCustomCatalog(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "pages.yaml"), `pages:
  - source: init
    name: geogig-init
    description: Create and initialize a new geogig repository
    authors: [Boundless]
    section: 1
`)
	out, err := run(t, "--catalog", path, "list")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))

	bad := writeFile(t, filepath.Join(t.TempDir(), "bad.yaml"), "pages:\n  - name: x\n    section: 12\n")
	_, err = run(t, "--catalog", bad, "list")
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	out, err := run(t, "settings")
	require.NoError(t, err)

	var got config.Settings
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, config.Defaults().Project, got.Project)
	assert.Equal(t, "2.0-SNAPSHOT", got.Release)
	assert.Equal(t, "GeoGigUserManual.tex", got.LaTeXDocuments[0].TargetName)
}

func TestSettingsFromFile(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "conf.yaml"), "project: GeoGig Next\nrelease: 2.1\n")
	out, err := run(t, "--config", path, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "project: GeoGig Next")
	assert.Contains(t, out, "release: \"2.1\"")
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check")
	require.NoError(t, err)
	assert.Equal(t, "ok: 37 pages, release 2.0\n", out)

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "init.rst"), "geogig-init\n===========\n")
	_, err = run(t, "check", "--source", src)
	assert.ErrorContains(t, err, "page geogig")
}

func TestCheckInvalidSettings(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "conf.yaml"), "source_suffix: rst\n")
	_, err := run(t, "--config", path, "check")
	assert.ErrorContains(t, err, "source_suffix")
}

func TestCheckWarnsOnFreeFormRelease(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "conf.yaml"), "release: v2.0-SNAPSHOT\n")
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&rootOptions{})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", path, "check"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "ok: 37 pages, release v2.0\n", stdout.String())
	assert.Contains(t, stderr.String(), "unparsable version")
}

func TestBuildAndApropos(t *testing.T) {
	output := t.TempDir()
	out, err := run(t, "build", "--output", output, "--builder", "man,html", "--gzip")
	require.NoError(t, err)
	assert.Contains(t, out, "built 37 pages into "+output)

	man, err := os.ReadFile(filepath.Join(output, "man", "man1", "geogig-init.1"))
	require.NoError(t, err)
	assert.Contains(t, string(man), `.TH "geogig-init" "1"`)
	assert.FileExists(t, filepath.Join(output, "man", "man1", "geogig-init.1.gz"))
	assert.FileExists(t, filepath.Join(output, "html", "geogig-init.html"))
	assert.FileExists(t, filepath.Join(output, search.DefaultFile))

	out, err = run(t, "build", "--output", output, "--builder", "man,html", "--gzip")
	require.NoError(t, err)
	assert.Contains(t, out, ": 0 written")

	out, err = run(t, "apropos", "--output", output, "initialize")
	require.NoError(t, err)
	assert.Equal(t, "geogig-init(1) - Create and initialize a new geogig repository\n", out)

	_, err = run(t, "apropos", "--output", output, "nonexistentterm")
	assert.ErrorIs(t, err, errNothingAppropriate)
}

func TestBuildFromSources(t *testing.T) {
	src := t.TempDir()
	pages := writeFile(t, filepath.Join(t.TempDir(), "pages.yaml"), `pages:
  - source: init
    name: geogig-init
    description: Create and initialize a new geogig repository
    authors: [Boundless]
    section: 1
`)
	writeFile(t, filepath.Join(src, "init.rst"), "geogig-init\n###########\n\nDESCRIPTION\n***********\n\nCreates a repository.\n")
	output := t.TempDir()

	_, err := run(t, "--catalog", pages, "build", "--source", src, "--output", output, "--builder", "man", "--no-index")
	require.NoError(t, err)
	man, err := os.ReadFile(filepath.Join(output, "man", "man1", "geogig-init.1"))
	require.NoError(t, err)
	assert.Contains(t, string(man), ".SH DESCRIPTION")
	assert.Contains(t, string(man), "Creates a repository.")
	assert.NoFileExists(t, filepath.Join(output, search.DefaultFile))
}

func TestBuildUnknownBuilder(t *testing.T) {
	_, err := run(t, "build", "--output", t.TempDir(), "--builder", "epub", "--no-index")
	assert.ErrorContains(t, err, "unknown builder")
}

func TestAproposWithoutIndex(t *testing.T) {
	_, err := run(t, "apropos", "--output", t.TempDir(), "init")
	assert.Error(t, err)
}

func TestWatchNeedsInputs(t *testing.T) {
	_, err := run(t, "watch", "--output", t.TempDir(), "--no-index")
	assert.ErrorContains(t, err, "nothing to watch")
}
