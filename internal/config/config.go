// Package config holds the build settings of the GeoGig documentation:
// project strings, HTML theme selection, date formats and LaTeX output
// options.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	debversion "pault.ag/go/debian/version"
)

const (
	// ThemePathEnv names the variable whose value is appended to the
	// theme search path.
	ThemePathEnv = "HTML_THEME_PATH"

	// ConfigFileEnv overrides the default settings file location.
	ConfigFileEnv = "GEOGIG_DOCS_CONFIG"

	defaultConfigPath = "conf.yaml"

	snapshotMarker = "SNAPSHOT"
)

// Settings controls a documentation build. Field tags are the keys
// accepted in settings files.
type Settings struct {
	Project          string   `mapstructure:"project" yaml:"project"`
	Manual           string   `mapstructure:"manual" yaml:"manual"`
	Copyright        string   `mapstructure:"copyright" yaml:"copyright"`
	Version          string   `mapstructure:"version" yaml:"version"`
	Release          string   `mapstructure:"release" yaml:"release"`
	MasterDoc        string   `mapstructure:"master_doc" yaml:"master_doc"`
	SourceSuffix     string   `mapstructure:"source_suffix" yaml:"source_suffix"`
	Today            string   `mapstructure:"today" yaml:"today"`
	TodayFmt         string   `mapstructure:"today_fmt" yaml:"today_fmt"`
	ExcludeTrees     []string `mapstructure:"exclude_trees" yaml:"exclude_trees"`
	TodoIncludeTodos bool     `mapstructure:"todo_include_todos" yaml:"todo_include_todos"`

	HTMLTheme          string   `mapstructure:"html_theme" yaml:"html_theme"`
	HTMLThemePath      []string `mapstructure:"html_theme_path" yaml:"html_theme_path"`
	HTMLTitle          string   `mapstructure:"html_title" yaml:"html_title"`
	HTMLLastUpdatedFmt string   `mapstructure:"html_last_updated_fmt" yaml:"html_last_updated_fmt"`
	HTMLUseModindex    bool     `mapstructure:"html_use_modindex" yaml:"html_use_modindex"`
	HTMLUseIndex       bool     `mapstructure:"html_use_index" yaml:"html_use_index"`
	HTMLBaseURL        string   `mapstructure:"html_base_url" yaml:"html_base_url"`
	HTMLHelpBasename   string   `mapstructure:"htmlhelp_basename" yaml:"htmlhelp_basename"`

	LaTeXDocuments []LaTeXDocument `mapstructure:"latex_documents" yaml:"latex_documents"`
	LaTeXLogo      string          `mapstructure:"latex_logo" yaml:"latex_logo"`
	LaTeXElements  LaTeXElements   `mapstructure:"latex_elements" yaml:"latex_elements"`
}

// LaTeXDocument groups the document tree into one LaTeX file.
type LaTeXDocument struct {
	StartDoc   string `mapstructure:"start_doc" yaml:"start_doc"`
	TargetName string `mapstructure:"target_name" yaml:"target_name"`
	Title      string `mapstructure:"title" yaml:"title"`
	Author     string `mapstructure:"author" yaml:"author"`
	DocClass   string `mapstructure:"doc_class" yaml:"doc_class"`
}

// LaTeXElements are snippets inserted verbatim into the LaTeX preamble.
type LaTeXElements struct {
	FontPkg  string `mapstructure:"fontpkg" yaml:"fontpkg"`
	Fncychap string `mapstructure:"fncychap" yaml:"fncychap"`
	Preamble string `mapstructure:"preamble" yaml:"preamble"`
}

// DefaultPath returns the settings file used when no path is given.
func DefaultPath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// Validate reports settings a build cannot proceed with.
func (s *Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Project) == "" {
		errs = append(errs, errors.New("config project is required"))
	}
	if s.SourceSuffix == "" || !strings.HasPrefix(s.SourceSuffix, ".") {
		errs = append(errs, fmt.Errorf("config source_suffix %q must start with a dot", s.SourceSuffix))
	}
	if s.Today == "" && s.TodayFmt == "" {
		errs = append(errs, errors.New("config today or today_fmt is required"))
	}
	if s.HTMLTheme == "" {
		errs = append(errs, errors.New("config html_theme is required"))
	}
	for i, doc := range s.LaTeXDocuments {
		if doc.TargetName == "" || !strings.HasSuffix(doc.TargetName, ".tex") {
			errs = append(errs, fmt.Errorf("config latex_documents[%d] target_name %q must end in .tex", i, doc.TargetName))
		}
		switch doc.DocClass {
		case "manual", "howto":
		default:
			errs = append(errs, fmt.Errorf("config latex_documents[%d] doc_class %q must be manual or howto", i, doc.DocClass))
		}
	}
	return errors.Join(errs...)
}

// DisplayRelease returns the release as shown to readers: a SNAPSHOT
// marker and the separator joining it are removed. Version is used when
// nothing else remains.
func (s *Settings) DisplayRelease() string {
	display := NormalizeRelease(s.Release)
	if display == "" {
		return s.Version
	}
	return display
}

// NormalizeRelease strips the SNAPSHOT marker from release.
func NormalizeRelease(release string) string {
	idx := strings.Index(release, snapshotMarker)
	if idx < 0 {
		return release
	}
	before := strings.TrimRight(release[:idx], "-._ ")
	after := strings.TrimLeft(release[idx+len(snapshotMarker):], "-._ ")
	if before != "" && after != "" {
		return before + "-" + after
	}
	return strings.TrimSpace(before + after)
}

// VersionErrors reports version and display release strings that do not
// parse as version numbers. They are printed as given, so callers treat
// these as warnings.
func (s *Settings) VersionErrors() []error {
	var errs []error
	if _, err := debversion.Parse(s.Version); err != nil {
		errs = append(errs, fmt.Errorf("config version %q: %w", s.Version, err))
	}
	if release := s.DisplayRelease(); release != s.Version {
		if _, err := debversion.Parse(release); err != nil {
			errs = append(errs, fmt.Errorf("config release %q: %w", s.Release, err))
		}
	}
	return errs
}

// ReleaseBehindVersion reports whether the display release sorts before
// the short version, which usually means one of them was not bumped.
func (s *Settings) ReleaseBehindVersion() bool {
	release, err := debversion.Parse(s.DisplayRelease())
	if err != nil {
		return false
	}
	version, err := debversion.Parse(s.Version)
	if err != nil {
		return false
	}
	return debversion.Compare(release, version) < 0
}

// Title returns html_title, or "<project> <release> <manual>" when unset.
func (s *Settings) Title() string {
	if s.HTMLTitle != "" {
		return s.HTMLTitle
	}
	parts := []string{s.Project, s.DisplayRelease(), s.Manual}
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// EffectiveThemePath returns the theme search path with the
// HTML_THEME_PATH entry appended. lookup is usually os.LookupEnv.
func (s *Settings) EffectiveThemePath(lookup func(string) (string, bool)) []string {
	paths := append([]string(nil), s.HTMLThemePath...)
	if lookup == nil {
		return paths
	}
	if extra, ok := lookup(ThemePathEnv); ok && extra != "" {
		paths = append(paths, extra)
	}
	return paths
}
