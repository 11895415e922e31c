package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/locationtech/geogig-manpages/internal/catalog"
	"github.com/locationtech/geogig-manpages/internal/config"
	"github.com/locationtech/geogig-manpages/internal/rst"
)

// SourcePath returns the file holding source document name.
func SourcePath(dir, name string, s *config.Settings) string {
	return filepath.Join(dir, filepath.FromSlash(name)+s.SourceSuffix)
}

// LoadSources parses the source of every catalog entry, keyed by source
// name. Sources shared by several entries are parsed once. The master
// document is loaded too when it exists.
func LoadSources(ctx context.Context, dir string, cat *catalog.Catalog, s *config.Settings) (map[string]*rst.Document, error) {
	opts := rst.Options{IncludeTodos: s.TodoIncludeTodos}
	docs := make(map[string]*rst.Document)

	for _, name := range cat.Sources() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := loadSource(dir, name, s, opts)
		if err != nil {
			entries := cat.BySource(name)
			return nil, &SourceError{Page: entries[0].PageName, Path: SourcePath(dir, name, s), Err: err}
		}
		docs[name] = doc
	}

	if _, ok := docs[s.MasterDoc]; !ok && s.MasterDoc != "" {
		doc, err := loadSource(dir, s.MasterDoc, s, opts)
		switch {
		case err == nil:
			docs[s.MasterDoc] = doc
		case !os.IsNotExist(err):
			return nil, &SourceError{Page: s.MasterDoc, Path: SourcePath(dir, s.MasterDoc, s), Err: err}
		}
	}
	return docs, nil
}

func loadSource(dir, name string, s *config.Settings, opts rst.Options) (*rst.Document, error) {
	raw, err := os.ReadFile(SourcePath(dir, name, s))
	if err != nil {
		return nil, err
	}
	return rst.Parse(string(raw), opts)
}

// FindOrphans lists source documents below dir, as slash-separated names
// without the suffix, that no catalog entry references. The master
// document and files under exclude_trees are not reported.
func FindOrphans(dir string, cat *catalog.Catalog, s *config.Settings) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*"+s.SourceSuffix)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	referenced := make(map[string]bool)
	for _, name := range cat.Sources() {
		referenced[name] = true
	}
	referenced[s.MasterDoc] = true

	var orphans []string
	for _, match := range matches {
		if excluded(match, s.ExcludeTrees) {
			continue
		}
		name := strings.TrimSuffix(match, s.SourceSuffix)
		if !referenced[name] {
			orphans = append(orphans, name)
		}
	}
	slices.Sort(orphans)
	return orphans, nil
}

func excluded(rel string, trees []string) bool {
	for _, tree := range trees {
		tree = strings.Trim(path.Clean(filepath.ToSlash(tree)), "/")
		if tree == "" || tree == "." {
			continue
		}
		if rel == tree || strings.HasPrefix(rel, tree+"/") {
			return true
		}
		if ok, _ := doublestar.Match(tree, rel); ok {
			return true
		}
	}
	return false
}
