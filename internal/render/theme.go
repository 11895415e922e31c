package render

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates
var templatesFS embed.FS

const (
	layoutFile = "layout.html"
	staticDir  = "static"
)

// Theme is an HTML layout with its static files.
type Theme struct {
	Name string
	// Dir is the theme directory on disk, or "" for the built-in theme.
	Dir  string
	fsys fs.FS
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	sub, err := fs.Sub(templatesFS, "templates/default")
	if err != nil {
		panic(err)
	}
	return Theme{Name: "default", fsys: sub}
}

// FindTheme looks for <dir>/<name>/layout.html along searchPath and
// returns the first match.
func FindTheme(name string, searchPath []string) (Theme, bool) {
	if name == "" {
		return Theme{}, false
	}
	for _, dir := range searchPath {
		themeDir := filepath.Join(dir, name)
		info, err := os.Stat(filepath.Join(themeDir, layoutFile))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return Theme{Name: name, Dir: themeDir, fsys: os.DirFS(themeDir)}, true
	}
	return Theme{}, false
}

// Layout parses the theme's page template. Templates may use the sprig
// function library.
func (t Theme) Layout() (*template.Template, error) {
	tmpl, err := template.New(layoutFile).Funcs(sprig.FuncMap()).ParseFS(t.fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse theme %s layout: %w", t.Name, err)
	}
	return tmpl, nil
}

// StaticFiles returns the theme's static directory as outputs under
// prefix.
func (t Theme) StaticFiles(prefix string) ([]Output, error) {
	var outputs []Output
	err := fs.WalkDir(t.fsys, staticDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(t.fsys, p)
		if err != nil {
			return err
		}
		outputs = append(outputs, Output{Path: path.Join(prefix, p[len(staticDir)+1:]), Data: data})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read theme %s static files: %w", t.Name, err)
	}
	return outputs, nil
}
