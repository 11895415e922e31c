package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/drone/envsubst"
	"github.com/spf13/viper"
)

// Load reads a settings file on top of Defaults. ${VAR} references in
// the file are expanded from the environment before parsing. An empty
// path yields the defaults.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded, err := envsubst.EvalEnv(string(raw))
		if err != nil {
			return nil, fmt.Errorf("expand config: %w", err)
		}
		v.SetConfigType(configType(path))
		if err := v.ReadConfig(bytes.NewReader([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	s, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadOptional behaves like Load but treats a missing file as empty.
func LoadOptional(path string) (*Settings, error) {
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	return Load(path)
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("project", d.Project)
	v.SetDefault("manual", d.Manual)
	v.SetDefault("copyright", d.Copyright)
	v.SetDefault("version", d.Version)
	v.SetDefault("release", d.Release)
	v.SetDefault("master_doc", d.MasterDoc)
	v.SetDefault("source_suffix", d.SourceSuffix)
	v.SetDefault("today", d.Today)
	v.SetDefault("today_fmt", d.TodayFmt)
	v.SetDefault("exclude_trees", d.ExcludeTrees)
	v.SetDefault("todo_include_todos", d.TodoIncludeTodos)

	v.SetDefault("html_theme", d.HTMLTheme)
	v.SetDefault("html_theme_path", d.HTMLThemePath)
	v.SetDefault("html_title", d.HTMLTitle)
	v.SetDefault("html_last_updated_fmt", d.HTMLLastUpdatedFmt)
	v.SetDefault("html_use_modindex", d.HTMLUseModindex)
	v.SetDefault("html_use_index", d.HTMLUseIndex)
	v.SetDefault("html_base_url", d.HTMLBaseURL)
	v.SetDefault("htmlhelp_basename", d.HTMLHelpBasename)

	docs := make([]map[string]any, 0, len(d.LaTeXDocuments))
	for _, doc := range d.LaTeXDocuments {
		docs = append(docs, map[string]any{
			"start_doc":   doc.StartDoc,
			"target_name": doc.TargetName,
			"title":       doc.Title,
			"author":      doc.Author,
			"doc_class":   doc.DocClass,
		})
	}
	v.SetDefault("latex_documents", docs)
	v.SetDefault("latex_logo", d.LaTeXLogo)
	v.SetDefault("latex_elements.fontpkg", d.LaTeXElements.FontPkg)
	v.SetDefault("latex_elements.fncychap", d.LaTeXElements.Fncychap)
	v.SetDefault("latex_elements.preamble", d.LaTeXElements.Preamble)
}

func fromViper(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if s.ExcludeTrees == nil {
		s.ExcludeTrees = []string{}
	}
	return &s, nil
}
